package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/unneeks/stewardagent/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.stdout, "stewardagent %s (%s) %s/%s\n",
				version.Version, version.Commit, runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
