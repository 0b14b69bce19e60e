package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unneeks/stewardagent/internal/client"
)

func newApproveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <pr-id>",
		Short: "Approve a recommended fix PR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(a.resolvedServerURL(), a.resolvedTimeout())
			ctx, cancel := context.WithTimeout(cmd.Context(), a.resolvedTimeout())
			defer cancel()

			if err := c.ApprovePR(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%sApproved %s%s\n", ansiGreen, args[0], ansiReset)
			return nil
		},
	}
	return cmd
}
