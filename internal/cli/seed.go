package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unneeks/stewardagent/internal/store"
)

func newSeedCmd(a *app) *cobra.Command {
	var dbPath string
	var days int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the event store and fill it from a simulated agent run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfgErr != nil {
				return fmt.Errorf("load config: %w", a.cfgErr)
			}
			if dbPath == "" {
				var err error
				dbPath, err = a.cfg.DBPath()
				if err != nil {
					return err
				}
			}
			st, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := seedStore(cmd.Context(), st, seed, days); err != nil {
				return err
			}
			events, err := st.Events(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Seeded %d events over %d simulated days into %s\n", len(events), days, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (default from config)")
	cmd.Flags().IntVar(&days, "days", 30, "number of simulated days")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for the simulated run")
	return cmd
}
