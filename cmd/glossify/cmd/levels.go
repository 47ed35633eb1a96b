package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/revyh/glossify/internal/cefr"
	"github.com/spf13/cobra"
)

func newLevelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Print the CEFR proficiency scale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, lvl := range cefr.All() {
				if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\n", lvl.Ordinal(), lvl, lvl.Description()); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}
