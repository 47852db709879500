package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"chronofix/internal/apply"
	"chronofix/internal/checkpoint"
	"chronofix/internal/config"
	"chronofix/internal/deps"
	"chronofix/internal/undo"
)

// confirmProceed asks the operator before a mutating run. Non-interactive
// sessions must pass --yes explicitly; a cron job should never inherit an
// implicit "y".
func confirmProceed(cmd *cobra.Command, assumeYes bool, prompt string) error {
	if assumeYes {
		return nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("refusing to modify files without --yes in a non-interactive session")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer != "y" && answer != "yes" {
		return fmt.Errorf("aborted")
	}
	return nil
}

func renderSummary(summary apply.Summary) string {
	rows := [][]string{
		{"Total", strconv.Itoa(summary.Total)},
		{"Updated", strconv.Itoa(summary.Updated)},
		{"Renamed", strconv.Itoa(summary.Renamed)},
		{"Already correct", strconv.Itoa(summary.AlreadyCorrect)},
		{"Skipped (no signal)", strconv.Itoa(summary.SkippedNoSignal)},
		{"Skipped (problematic)", strconv.Itoa(summary.SkippedProblematic)},
		{"Errors", strconv.Itoa(summary.Errors)},
	}
	return renderTable([]string{"Outcome", "Count"}, rows, 1)
}

// runComponents bundles the stateful pieces one mutating run needs.
type runComponents struct {
	applier *apply.Applier
	cp      *checkpoint.Manager
}

func (r *runComponents) close() {
	if r.cp != nil {
		_ = r.cp.Close()
	}
}

// buildApplier wires the external tool, checkpoint, undo ledger, and problem
// ledger for a named run kind. Each kind keeps its own checkpoint and undo
// files so an apply run and a rename run never share state. A missing tool
// fails here, before any run state is created, rather than once per file.
func (c *commandContext) buildApplier(cfg *config.Config, kind string) (*runComponents, error) {
	if missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
		return nil, fmt.Errorf("%s unavailable: %s (run `chronofix deps`)", missing[0].Name, missing[0].Detail)
	}
	client, err := c.exiftoolClient()
	if err != nil {
		return nil, err
	}
	cp, err := checkpoint.Open(cfg.CheckpointPath(kind), cfg.Apply.CheckpointInterval)
	if err != nil {
		return nil, err
	}
	ledger, err := undo.Open(cfg.UndoPath(kind))
	if err != nil {
		_ = cp.Close()
		return nil, err
	}
	problems := apply.NewProblemLedger(cfg.ProblemLogPath())
	applier := apply.New(client, cp, ledger, problems, c.translations(), c.logger())
	return &runComponents{applier: applier, cp: cp}, nil
}
