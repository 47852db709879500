package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chronofix/internal/apply"
	"chronofix/internal/confidence"
	"chronofix/internal/config"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var floorFlag string
	var limit int
	var assumeYes bool
	var backupDir string

	cmd := &cobra.Command{
		Use:   "apply <plan.csv>",
		Short: "Apply a recovery plan",
		Long: "Apply writes each plan entry's proposed date into the file's embedded\n" +
			"and filesystem metadata, one file at a time. Progress is checkpointed,\n" +
			"every mutation lands in the undo ledger, and an interrupted run\n" +
			"resumes where it stopped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := loadPlan(ctx, args[0])
			if err != nil {
				return err
			}

			floorValue := floorFlag
			if strings.TrimSpace(floorValue) == "" {
				floorValue = cfg.Apply.ConfidenceFloor
			}
			floor, err := confidence.ParseLevel(floorValue)
			if err != nil {
				return err
			}

			if !dryRun {
				prompt := fmt.Sprintf("Apply %s-or-better entries from %s", floor, args[0])
				if err := confirmProceed(cmd, assumeYes, prompt); err != nil {
					return err
				}
			}

			backup := backupDir
			if backup != "" {
				if backup, err = config.ExpandPath(backup); err != nil {
					return err
				}
			}

			components, err := ctx.buildApplier(cfg, "apply")
			if err != nil {
				return err
			}
			defer components.close()

			runCtx, stop := signalContext(cmd)
			defer stop()

			summary, runErr := components.applier.ApplyPlan(runCtx, entries, apply.Options{
				DryRun:          dryRun,
				ConfidenceFloor: floor,
				Limit:           limit,
				BackupDir:       backup,
			})
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify every entry without modifying anything")
	cmd.Flags().StringVar(&floorFlag, "confidence", "", "Minimum confidence to apply (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Process at most this many files (0 means all)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&backupDir, "backup-dir", "", "Copy each file here before modifying it")
	return cmd
}
