package cmd

import (
	"fmt"

	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/vocab"
	"github.com/spf13/cobra"
)

func newVocabCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage word-level vocabularies",
	}

	importCmd := &cobra.Command{
		Use:   "import <words.yaml> <vocab.db>",
		Short: "Import a YAML word list into a SQLite vocabulary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := vocab.LoadYAML(args[0])
			if err != nil {
				return failure.Input("vocab", "cannot read word list", err)
			}
			db, err := vocab.OpenSQLite(cmd.Context(), args[1], true)
			if err != nil {
				return failure.Output("vocab", "cannot open vocabulary database", err)
			}
			defer func() { _ = db.Close() }()

			if err := db.Import(cmd.Context(), words.Entries()); err != nil {
				return failure.Output("vocab", "import failed", err)
			}
			total, err := db.Count(cmd.Context())
			if err != nil {
				return failure.Lookup("vocab", "cannot count entries", err)
			}
			a.logger.Info("imported word list", "source", args[0], "database", args[1], "words", words.Len())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words into %s (%d total)\n", words.Len(), args[1], total)
			return err
		},
	}

	builtinCmd := &cobra.Command{
		Use:   "builtin",
		Short: "Print the builtin word list as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return vocab.WriteYAML(cmd.OutOrStdout(), vocab.Builtin().Entries())
		},
	}

	cmd.AddCommand(importCmd, builtinCmd)
	return cmd
}
