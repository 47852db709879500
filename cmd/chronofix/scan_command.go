package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chronofix/internal/config"
	"chronofix/internal/snapshot"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var output string
	var recursive bool
	var includeThumbnails bool
	var skipMetadata bool

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Capture a snapshot of the library's current state",
		Long: "Scan walks the library and records one row per media file: paths,\n" +
			"sizes, filesystem dates, and embedded metadata dates. The snapshot CSV\n" +
			"is the input to plan creation and the baseline undo refers back to.",
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

			var reader snapshot.MetadataReader
			if !skipMetadata {
				client, err := ctx.exiftoolClient()
				if err != nil {
					return err
				}
				reader = client
			}

			runCtx, stop := signalContext(cmd)
			defer stop()

			capturer := snapshot.NewCapturer(reader, snapshot.Options{
				Recursive:         recursive,
				IncludeThumbnails: includeThumbnails,
			})
			records, err := capturer.Capture(runCtx, root)
			if err != nil {
				return err
			}

			if strings.TrimSpace(output) == "" {
				name := fmt.Sprintf("snapshot_%s.csv", time.Now().Format("20060102_150405"))
				output = filepath.Join(cfg.Paths.RecoveryDir, name)
			}
			if err := snapshot.WriteCSV(output, records); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Captured %d media files from %s\n", len(records), root)
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot CSV destination (default: recovery dir, timestamped)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Descend into subdirectories")
	cmd.Flags().BoolVar(&includeThumbnails, "include-thumbnails", false, "Include @eaDir trees and generated thumbnails")
	cmd.Flags().BoolVar(&skipMetadata, "skip-metadata", false, "Skip embedded metadata probing (filesystem columns only)")
	return cmd
}
