package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chronofix/internal/undo"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	undoCmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo ledger utilities",
	}

	undoCmd.AddCommand(newUndoShowCommand(ctx))

	return undoCmd
}

func newUndoShowCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var limit int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show recorded changes for a run kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := validateKind(kind); err != nil {
				return err
			}

			path := cfg.UndoPath(kind)
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "No %s undo ledger recorded yet.\n", kind)
				return nil
			}

			ledger, err := undo.Open(path)
			if err != nil {
				return err
			}
			changes := ledger.Changes()

			fmt.Fprintf(out, "Ledger %s, created %s, %d changes\n", path, ledger.Created(), len(changes))

			shown := changes
			if limit > 0 && len(shown) > limit {
				shown = shown[len(shown)-limit:]
			}
			rows := make([][]string, 0, len(shown))
			for _, change := range shown {
				rows = append(rows, []string{
					change.Timestamp,
					change.File,
					change.NewValue,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"When", "File", "New Value"}, rows))
			if len(shown) < len(changes) {
				fmt.Fprintf(out, "Showing last %d of %d changes\n", len(shown), len(changes))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "apply", "Run kind (apply, fixdates, rename)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum changes to display (0 shows all)")
	return cmd
}
