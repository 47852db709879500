package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chronofix/internal/config"
	"chronofix/internal/confidence"
	"chronofix/internal/history"
	"chronofix/internal/plan"
	"chronofix/internal/snapshot"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Recovery plan utilities",
	}

	planCmd.AddCommand(newPlanCreateCommand(ctx))
	planCmd.AddCommand(newPlanShowCommand(ctx))
	planCmd.AddCommand(newPlanFilterCommand(ctx))

	return planCmd
}

func newPlanCreateCommand(ctx *commandContext) *cobra.Command {
	var snapshotPath string
	var output string
	var jpegOnly bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build a recovery plan from a snapshot and rename history",
		Long: "Create joins a snapshot against the resolved rename history: every\n" +
			"file whose prior name encodes a date gets a proposed timestamp, graded\n" +
			"by how well the directory year and filesystem dates agree with it.\n" +
			"Nothing on disk is modified.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			snapPath, err := config.ExpandPath(snapshotPath)
			if err != nil {
				return err
			}
			records, err := snapshot.ReadCSV(snapPath, ctx.translations())
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer store.Close()
			resolved, err := store.ResolvedMap(cmd.Context())
			if err != nil {
				return err
			}

			entries, stats := plan.Build(resolved, records, plan.Options{JPEGOnly: jpegOnly})

			if strings.TrimSpace(output) == "" {
				name := fmt.Sprintf("plan_%s.csv", time.Now().Format("20060102_150405"))
				output = filepath.Join(cfg.Paths.RecoveryDir, name)
			}
			if err := plan.WriteCSV(output, entries); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPlanStats(stats, len(entries)))
			fmt.Fprintf(out, "Plan written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "Snapshot CSV to plan against")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Plan CSV destination (default: recovery dir, timestamped)")
	cmd.Flags().BoolVar(&jpegOnly, "jpeg-only", false, "Plan only JPEG files")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func newPlanShowCommand(ctx *commandContext) *cobra.Command {
	var minConfidence string
	var needsUpdateOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "show <plan.csv>",
		Short: "Review plan entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadPlan(ctx, args[0])
			if err != nil {
				return err
			}
			entries, err = filterPlan(entries, minConfidence, needsUpdateOnly, nil)
			if err != nil {
				return err
			}

			shown := entries
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}

			rows := make([][]string, 0, len(shown))
			for _, entry := range shown {
				rows = append(rows, []string{
					entry.CurrentFilename,
					entry.OldFilename,
					entry.ProposedDate.Format("2006-01-02 15:04:05"),
					string(entry.Confidence),
					yesNo(entry.NeedsUpdate),
					entry.UpdateReason,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Old Name", "Proposed", "Confidence", "Update", "Reason"},
				rows))
			if len(shown) < len(entries) {
				fmt.Fprintf(out, "Showing %d of %d entries\n", len(shown), len(entries))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&minConfidence, "confidence", "", "Minimum confidence level (HIGH, MEDIUM, LOW, VERY_LOW)")
	cmd.Flags().BoolVar(&needsUpdateOnly, "needs-update", false, "Show only entries that need updating")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to display (0 shows all)")
	return cmd
}

func newPlanFilterCommand(ctx *commandContext) *cobra.Command {
	var output string
	var minConfidence string
	var needsUpdateOnly bool
	var extensions []string

	cmd := &cobra.Command{
		Use:   "filter <plan.csv>",
		Short: "Write a filtered copy of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadPlan(ctx, args[0])
			if err != nil {
				return err
			}
			total := len(entries)
			entries, err = filterPlan(entries, minConfidence, needsUpdateOnly, extensions)
			if err != nil {
				return err
			}
			if err := plan.WriteCSV(output, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Kept %d of %d entries in %s\n", len(entries), total, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Filtered plan destination")
	cmd.Flags().StringVar(&minConfidence, "confidence", "", "Minimum confidence level (HIGH, MEDIUM, LOW, VERY_LOW)")
	cmd.Flags().BoolVar(&needsUpdateOnly, "needs-update", false, "Keep only entries that need updating")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "Keep only these file extensions (e.g. jpg,png)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func loadPlan(ctx *commandContext, path string) ([]plan.Entry, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return plan.ReadCSV(expanded, ctx.translations())
}

func filterPlan(entries []plan.Entry, minConfidence string, needsUpdateOnly bool, extensions []string) ([]plan.Entry, error) {
	opts := plan.FilterOptions{
		NeedsUpdateOnly: needsUpdateOnly,
		Extensions:      extensions,
	}
	if strings.TrimSpace(minConfidence) != "" {
		level, err := confidence.ParseLevel(minConfidence)
		if err != nil {
			return nil, err
		}
		opts.MinConfidence = level
	}
	return plan.Filter(entries, opts), nil
}

func renderPlanStats(stats plan.Stats, planned int) string {
	rows := [][]string{
		{"Snapshot records", strconv.Itoa(stats.Total)},
		{"Planned", strconv.Itoa(planned)},
		{"No history match", strconv.Itoa(stats.NoHistoryMatch)},
		{"No date in old filename", strconv.Itoa(stats.NoDateInOldFilename)},
		{"Skipped non-JPEG", strconv.Itoa(stats.SkippedNonJPEG)},
		{"Need update", strconv.Itoa(stats.NeedUpdate)},
	}
	for _, level := range []confidence.Level{confidence.High, confidence.Medium, confidence.Low, confidence.VeryLow} {
		rows = append(rows, []string{
			"Confidence " + string(level), strconv.Itoa(stats.ByConfidence[level]),
		})
	}
	return renderTable([]string{"Metric", "Count"}, rows, 1)
}
