package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unneeks/stewardagent/internal/logging"
	"github.com/unneeks/stewardagent/internal/server"
	"github.com/unneeks/stewardagent/internal/sim"
	"github.com/unneeks/stewardagent/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var dbPath string
	var repoURL string
	var seedDays int
	var seed int64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the playback service",
		Long:  "Serve the agent event log over HTTP. With --seed-days the store is reset and reseeded from a simulated agent run before serving.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfgErr != nil {
				return fmt.Errorf("load config: %w", a.cfgErr)
			}
			if addr == "" {
				addr = a.cfg.Serve.Addr
			}
			if repoURL == "" {
				repoURL = a.cfg.Serve.RepoURL
			}
			if dbPath == "" {
				var err error
				dbPath, err = a.cfg.DBPath()
				if err != nil {
					return err
				}
			}

			log, err := logging.NewServerLogger(a.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			st, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if seedDays > 0 {
				if err := seedStore(cmd.Context(), st, seed, seedDays); err != nil {
					return err
				}
				log.Info("store seeded", zap.Int("days", seedDays), zap.Int64("seed", seed))
			}

			srv := server.New(st, server.Options{
				Addr:        addr,
				RepoURL:     repoURL,
				CORSOrigins: a.cfg.Serve.CORSOrigins,
				Log:         log,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				log.Info("shutting down", zap.String("signal", sig.String()))
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Stop(ctx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (default from config)")
	cmd.Flags().StringVar(&repoURL, "repo-url", "", "repository URL served from /config")
	cmd.Flags().IntVar(&seedDays, "seed-days", 0, "reset the store and seed this many simulated days before serving")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for the simulated run")
	return cmd
}

func seedStore(ctx context.Context, st store.Store, seed int64, days int) error {
	if err := st.Reset(ctx); err != nil {
		return err
	}
	start := time.Now().AddDate(0, 0, -days-1)
	for _, ev := range sim.New(seed).Run(start, days) {
		if err := st.AppendEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
