package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chronofix/internal/apply"
	"chronofix/internal/config"
)

func newFixDatesCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var limit int
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "fix-dates [root]",
		Short: "Set filesystem dates from embedded metadata in year folders",
		Long: "Fix-dates walks the 4-digit year folders under the root and sets each\n" +
			"image's filesystem dates to its embedded DateTimeOriginal. Embedded\n" +
			"metadata is never modified.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Paths.LibraryDir
			if len(args) == 1 {
				root = args[0]
			}
			root, err = config.ExpandPath(root)
			if err != nil {
				return err
			}

			if !dryRun {
				prompt := fmt.Sprintf("Rewrite filesystem dates under %s", root)
				if err := confirmProceed(cmd, assumeYes, prompt); err != nil {
					return err
				}
			}

			components, err := ctx.buildApplier(cfg, "fixdates")
			if err != nil {
				return err
			}
			defer components.close()

			runCtx, stop := signalContext(cmd)
			defer stop()

			summary, runErr := components.applier.FixDates(runCtx, root, apply.Options{
				DryRun: dryRun,
				Limit:  limit,
			})
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without modifying anything")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Process at most this many files (0 means all)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
