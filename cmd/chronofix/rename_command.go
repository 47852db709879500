package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chronofix/internal/apply"
	"chronofix/internal/config"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var recursive bool
	var limit int
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "rename [directory]",
		Short: "Rename media files to their canonical timestamped names",
		Long: "Rename derives each file's capture timestamp from embedded metadata,\n" +
			"falling back to filesystem dates, and renames it to the canonical\n" +
			"IMG_/MOV_ form. Name collisions get a numeric counter; files already\n" +
			"carrying their canonical name are left alone.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := cfg.Paths.LibraryDir
			if len(args) == 1 {
				dir = args[0]
			}
			dir, err = config.ExpandPath(dir)
			if err != nil {
				return err
			}

			if !dryRun {
				prompt := fmt.Sprintf("Rename media files under %s", dir)
				if err := confirmProceed(cmd, assumeYes, prompt); err != nil {
					return err
				}
			}

			components, err := ctx.buildApplier(cfg, "rename")
			if err != nil {
				return err
			}
			defer components.close()

			runCtx, stop := signalContext(cmd)
			defer stop()

			summary, runErr := components.applier.RenameScan(runCtx, dir, recursive, apply.Options{
				DryRun: dryRun,
				Limit:  limit,
			})
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be renamed without modifying anything")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Process at most this many files (0 means all)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
