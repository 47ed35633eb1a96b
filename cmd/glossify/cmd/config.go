package cmd

import (
	"fmt"

	"github.com/revyh/glossify/internal/config"
	"github.com/revyh/glossify/internal/failure"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Long: `Print the configuration after merging defaults, the config file and
GLOSSIFY_* environment variables. The OpenAI API key is masked.

With --init a default glossify.yaml is written instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path, _ := cmd.Flags().GetString("init"); path != "" {
				if err := config.GenerateDefaultConfigFile(path); err != nil {
					return failure.Output("config", "cannot write config file", err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return err
			}
			if used := a.loader.GetConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
			}
			return config.WriteYAML(cmd.OutOrStdout(), a.config)
		},
	}
	cmd.Flags().String("init", "", "write a default configuration file to this path")
	return cmd
}
