package cmd

import (
	"fmt"

	"github.com/revyh/glossify/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, commit, date := version.Info()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "glossify version %s\n", v)
			_, _ = fmt.Fprintf(out, "Commit: %s\n", commit)
			_, err := fmt.Fprintf(out, "Date: %s\n", date)
			return err
		},
	}
}
