package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	scfg "github.com/unneeks/stewardagent/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage stewardagent configuration",
	}
	cmd.AddCommand(
		newConfigViewCmd(a),
		newConfigGetCmd(a),
		newConfigSetCmd(a),
		newConfigResetCmd(a),
	)
	return cmd
}

func newConfigViewCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := scfg.Load()
			if err != nil {
				return err
			}
			switch strings.ToLower(strings.TrimSpace(output)) {
			case "", "yaml":
				v, err := cfg.ToYAML()
				if err != nil {
					return err
				}
				fmt.Fprint(a.stdout, v)
				return nil
			case "json":
				v, err := cfg.ToJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, v)
				return nil
			default:
				return fmt.Errorf("unsupported --output %q (supported: yaml, json)", output)
			}
		},
	}
	cmd.Flags().StringVar(&output, "output", "yaml", "output format: yaml|json")
	return cmd
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a config value by key path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scfg.Load()
			if err != nil {
				return err
			}
			v, err := cfg.GetByKey(args[0])
			if err != nil {
				return err
			}
			switch t := v.(type) {
			case []string:
				fmt.Fprintln(a.stdout, strings.Join(t, ","))
			default:
				fmt.Fprintln(a.stdout, t)
			}
			return nil
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value by key path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scfg.Load()
			if err != nil {
				return err
			}
			if err := cfg.SetByKey(args[0], args[1]); err != nil {
				return err
			}
			if err := scfg.Save(cfg); err != nil {
				return err
			}
			a.cfg = cfg
			fmt.Fprintf(a.stdout, "Set %s\n", args[0])
			return nil
		},
	}
}

func newConfigResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := scfg.Default()
			if err := scfg.Save(cfg); err != nil {
				return err
			}
			a.cfg = cfg
			path, err := scfg.FilePath()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Reset %s to defaults\n", path)
			return nil
		},
	}
}
