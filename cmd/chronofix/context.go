package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"chronofix/internal/config"
	"chronofix/internal/logging"
	"chronofix/internal/pathmap"
	"chronofix/internal/services/exiftool"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger returns the process logger, tagged with a run identifier so
// interleaved log files from resumed batches stay attributable.
func (c *commandContext) logger() *slog.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		outputs := []string{"stderr"}
		if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
			outputs = append(outputs, filepath.Join(dir, "chronofix.log"))
		}
		log, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		c.log = log.With(logging.String("run_id", uuid.NewString()))
	})
	return c.log
}

func (c *commandContext) exiftoolClient() (*exiftool.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return exiftool.New(cfg.Exiftool.Binary, cfg.Exiftool.ProbeTimeout, cfg.Exiftool.WriteTimeout)
}

func (c *commandContext) translations() pathmap.Table {
	cfg, err := c.ensureConfig()
	if err != nil {
		return pathmap.Table{}
	}
	return pathmap.FromConfig(cfg)
}

// signalContext derives a context cancelled by SIGINT or SIGTERM, which is
// how an operator interrupt turns into a checkpoint flush instead of a
// mid-write kill.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
