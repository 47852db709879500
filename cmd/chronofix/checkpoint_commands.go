package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"chronofix/internal/checkpoint"
)

var runKinds = []string{"apply", "fixdates", "rename"}

func newCheckpointCommand(ctx *commandContext) *cobra.Command {
	checkpointCmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Batch checkpoint utilities",
	}

	checkpointCmd.AddCommand(newCheckpointShowCommand(ctx))
	checkpointCmd.AddCommand(newCheckpointClearCommand(ctx))

	return checkpointCmd
}

func newCheckpointShowCommand(ctx *commandContext) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show checkpoint progress for a run kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := validateKind(kind); err != nil {
				return err
			}

			path := cfg.CheckpointPath(kind)
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "No %s checkpoint; the last run completed cleanly or never started.\n", kind)
				return nil
			}

			cp, err := checkpoint.Open(path, 0)
			if err != nil {
				return err
			}
			defer cp.Close()

			rows := [][]string{
				{"Checkpoint", path},
				{"Created", cp.CreatedAt()},
				{"Processed", strconv.Itoa(cp.Count())},
				{"Planned this run", strconv.Itoa(cp.Total())},
			}
			for result, count := range cp.Stats() {
				rows = append(rows, []string{"Result " + result, strconv.Itoa(count)})
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "apply", "Run kind (apply, fixdates, rename)")
	return cmd
}

func newCheckpointClearCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete a checkpoint so the next run starts fresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := validateKind(kind); err != nil {
				return err
			}

			path := cfg.CheckpointPath(kind)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s checkpoint to clear.\n", kind)
				return nil
			}

			prompt := fmt.Sprintf("Delete the %s checkpoint; the next run will reprocess everything", kind)
			if err := confirmProceed(cmd, assumeYes, prompt); err != nil {
				return err
			}

			cp, err := checkpoint.Open(path, 0)
			if err != nil {
				return err
			}
			defer cp.Close()
			if err := cp.Delete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "apply", "Run kind (apply, fixdates, rename)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func validateKind(kind string) error {
	for _, known := range runKinds {
		if kind == known {
			return nil
		}
	}
	return fmt.Errorf("unknown run kind %q (expected apply, fixdates, or rename)", kind)
}
