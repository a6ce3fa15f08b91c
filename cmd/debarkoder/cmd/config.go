package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/debarkoder/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration files",
		Long: `Inspect the resolved configuration or write a default configuration file.

Settings are resolved from flags, DEBARKODER_* environment variables, the
config file and built-in defaults, in that order.`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if used := c.loader.GetConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(out, "# config file: %s\n", used)
			}
			return config.WriteYAML(out, c.cfg)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			if err := config.GenerateDefaultConfigFile(file); err != nil {
				return err
			}
			if file == "" {
				file = config.ConfigFileName + ".yaml"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", file)
			return nil
		},
	}

	paths := &cobra.Command{
		Use:   "paths",
		Short: "Show the config file in use and the search paths",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			c.loader.PrintConfigInfo(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(show, initCmd, paths)
	return cmd
}
