package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unneeks/stewardagent/internal/client"
	"github.com/unneeks/stewardagent/internal/logging"
	"github.com/unneeks/stewardagent/internal/ui"
)

func newUICmd(a *app) *cobra.Command {
	var pollInterval time.Duration
	var playbackSpeed time.Duration
	var theme string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the playback dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfgErr != nil {
				return fmt.Errorf("load config: %w", a.cfgErr)
			}
			if pollInterval <= 0 {
				pollInterval = a.cfg.PollIntervalDuration()
			}
			if playbackSpeed <= 0 {
				playbackSpeed = a.cfg.PlaybackSpeedDuration()
			}
			if theme == "" {
				theme = a.cfg.UI.Theme
			}

			// File-only logger: stdout belongs to the dashboard.
			log, err := logging.NewFileLogger(a.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return ui.Run(ui.Options{
				Service:       client.New(a.resolvedServerURL(), a.resolvedTimeout()),
				Log:           log,
				PollInterval:  pollInterval,
				PlaybackSpeed: playbackSpeed,
				Theme:         theme,
			})
		},
	}
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "poll interval (default from config)")
	cmd.Flags().DurationVar(&playbackSpeed, "playback-speed", 0, "playback advance interval (default from config)")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme: ocean|forest|amber")
	return cmd
}
