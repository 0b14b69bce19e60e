package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unneeks/stewardagent/internal/client"
	"github.com/unneeks/stewardagent/internal/model"
)

func newEventsCmd(a *app) *cobra.Command {
	var eventType string
	var entityID string
	var tail int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the raw agent event log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := client.New(a.resolvedServerURL(), a.resolvedTimeout())
			ctx, cancel := context.WithTimeout(cmd.Context(), a.resolvedTimeout())
			defer cancel()

			events, err := c.Events(ctx)
			if err != nil {
				return err
			}
			events = filterEvents(events, eventType, entityID)
			if tail > 0 && len(events) > tail {
				events = events[len(events)-tail:]
			}
			if len(events) == 0 {
				fmt.Fprintln(a.stdout, "No events.")
				return nil
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%sTIMESTAMP\tTYPE\tENTITY\tEXPLANATION%s\n", ansiBold, ansiReset)
			for _, ev := range events {
				fmt.Fprintf(w, "%s%s%s\t%s%s%s\t%s\t%s\n",
					ansiGray, ev.Timestamp, ansiReset,
					eventColor(ev), ev.EventType, ansiReset,
					ev.EntityID, truncate(ev.Explanation, 80))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&eventType, "type", "", "only events of this type")
	cmd.Flags().StringVar(&entityID, "entity", "", "only events for this entity id")
	cmd.Flags().IntVar(&tail, "tail", 0, "only the last N events")
	return cmd
}

func filterEvents(events []model.Event, eventType, entityID string) []model.Event {
	if eventType == "" && entityID == "" {
		return events
	}
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if eventType != "" && ev.EventType != eventType {
			continue
		}
		if entityID != "" && ev.EntityID != entityID {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func eventColor(ev model.Event) string {
	switch ev.Kind() {
	case model.KindRuleBreached, model.KindPolicyGapDetected:
		return ansiRed
	case model.KindRiskAssessed:
		return ansiYellow
	case model.KindRecommendationCreated, model.KindOutcomeMeasured:
		return ansiGreen
	default:
		return ansiCyan
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
