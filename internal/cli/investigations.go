package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unneeks/stewardagent/internal/client"
	"github.com/unneeks/stewardagent/internal/derive"
)

func newInvestigationsCmd(a *app) *cobra.Command {
	var wide bool

	cmd := &cobra.Command{
		Use:     "investigations",
		Aliases: []string{"inv"},
		Short:   "List the agent's investigations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := client.New(a.resolvedServerURL(), a.resolvedTimeout())
			ctx, cancel := context.WithTimeout(cmd.Context(), a.resolvedTimeout())
			defer cancel()

			invs, err := c.Investigations(ctx)
			if err != nil {
				return err
			}
			if len(invs) == 0 {
				fmt.Fprintln(a.stdout, "No investigations.")
				return nil
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%sSTART\tFOCUS\tRULE\tRISK\tEVENTS\tSTATE%s\n", ansiBold, ansiReset)
			for _, inv := range invs {
				s := derive.Summarize(inv)
				state := ansiYellow + "Scanning" + ansiReset
				if inv.Recommendation != nil {
					state = ansiGreen + "Actioned" + ansiReset
				}
				rule := s.RuleBreached
				if !wide {
					rule = truncate(rule, 40)
				}
				fmt.Fprintf(w, "%s%s%s\t%s\t%s\t%.2f\t%d\t%s\n",
					ansiGray, inv.StartTime, ansiReset,
					inv.FocusTerm, rule, s.RiskScore, len(inv.Events), state)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&wide, "wide", false, "do not truncate rule names")
	return cmd
}
