package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"chronofix/internal/config"
	"chronofix/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Rename history utilities",
	}

	historyCmd.AddCommand(newHistoryImportCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryExportCommand(ctx))

	return historyCmd
}

func newHistoryImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "import <log-file>...",
		Aliases: []string{"parse-logs"},
		Short:   "Parse rename logs into the history database",
		Long: "Import reads free-text rename logs, extracts RENAMED and MOVED\n" +
			"operations, and stores them keyed by source log. Re-importing a log\n" +
			"replaces its prior operations, so imports are safe to repeat.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			total := 0
			for _, arg := range args {
				path, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open log %s: %w", path, err)
				}
				ops, err := history.ParseLog(file)
				file.Close()
				if err != nil {
					return fmt.Errorf("parse log %s: %w", path, err)
				}
				if err := store.ImportOps(cmd.Context(), path, ops); err != nil {
					return err
				}
				fmt.Fprintf(out, "Imported %d operations from %s\n", len(ops), path)
				total += len(ops)
			}

			resolved, err := store.ResolvedMap(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d operations imported, %d filenames resolvable\n", total, len(resolved))
			return nil
		},
	}
}

func newHistoryExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export imported operations to CSV for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			ops, err := store.AllOps(cmd.Context())
			if err != nil {
				return err
			}
			if err := history.ExportCSV(output, ops); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d operations to %s\n", len(ops), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Export CSV destination")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show history database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			resolved, err := store.ResolvedMap(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Database", store.Path()},
				{"Operations", strconv.Itoa(count)},
				{"Resolvable filenames", strconv.Itoa(len(resolved))},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}
}
