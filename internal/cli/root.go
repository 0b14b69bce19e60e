package cli

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	scfg "github.com/unneeks/stewardagent/internal/config"
	"github.com/unneeks/stewardagent/internal/version"
)

type app struct {
	serverURL string
	timeout   time.Duration
	cfg       *scfg.Config
	cfgErr    error
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdin, os.Stdout, os.Stderr)
}

func NewRootCommandWithIO(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return newRootCommand(in, out, errOut)
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	cfg, cfgErr := scfg.Load()
	if cfg == nil {
		cfg = scfg.Default()
	}
	a := &app{
		cfg:    cfg,
		cfgErr: cfgErr,
		stdin:  in,
		stdout: out,
		stderr: errOut,
	}

	cmd := &cobra.Command{
		Use:           "stewardagent",
		Short:         "Replay and inspect the governance agent's investigation trail",
		Long:          "stewardagent serves an agent event log over HTTP and replays it as a terminal dashboard: investigation timeline, term health heatmap, learning curve, and per-case reasoning with lineage.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	cmd.PersistentFlags().StringVar(&a.serverURL, "server", "", "override the playback service URL")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "override the request timeout")

	cmd.AddCommand(
		newUICmd(a),
		newServeCmd(a),
		newSeedCmd(a),
		newEventsCmd(a),
		newInvestigationsCmd(a),
		newApproveCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

func (a *app) resolvedServerURL() string {
	if a.serverURL != "" {
		return a.serverURL
	}
	return a.cfg.Server.URL
}

func (a *app) resolvedTimeout() time.Duration {
	if a.timeout > 0 {
		return a.timeout
	}
	return a.cfg.ServerTimeoutDuration()
}
