package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chronofix/internal/config"
	"chronofix/internal/evidence"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var skipMetadata bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show every timestamp signal found for one file",
		Long: "Inspect runs the evidence extractor against a single file and lists\n" +
			"what each source (filename, directory, filesystem, embedded metadata)\n" +
			"proposes. Useful for understanding why a plan graded a file the way\n" +
			"it did.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			path = ctx.translations().Translate(path)

			var prober evidence.Prober
			if !skipMetadata {
				client, err := ctx.exiftoolClient()
				if err != nil {
					return err
				}
				prober = client
			}

			runCtx, stop := signalContext(cmd)
			defer stop()

			record := evidence.NewExtractor(prober).Extract(runCtx, path)
			signals := record.Signals()
			if len(signals) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No timestamp evidence found for %s\n", path)
				return nil
			}

			rows := make([][]string, 0, len(signals))
			for _, signal := range signals {
				rows = append(rows, []string{
					string(signal.Source),
					signal.Time.Format("2006-01-02 15:04:05"),
					signal.Pattern,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Source", "Timestamp", "Pattern"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMetadata, "skip-metadata", false, "Skip embedded metadata probing")
	return cmd
}
