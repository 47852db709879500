package config

import (
	"fmt"
	"strings"
)

var validConfidenceFloors = map[string]struct{}{
	"HIGH":     {},
	"MEDIUM":   {},
	"LOW":      {},
	"VERY_LOW": {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return fmt.Errorf("config: library_dir is required")
	}
	if strings.TrimSpace(c.Paths.RecoveryDir) == "" {
		return fmt.Errorf("config: recovery_dir is required")
	}
	if _, ok := validConfidenceFloors[c.Apply.ConfidenceFloor]; !ok {
		return fmt.Errorf("config: confidence_floor %q is not one of HIGH, MEDIUM, LOW, VERY_LOW", c.Apply.ConfidenceFloor)
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("config: log format %q is not one of console, json", c.Logging.Format)
	}
	for _, tr := range c.PathMap {
		if !strings.HasSuffix(tr.From, "/") || !strings.HasSuffix(tr.To, "/") {
			return fmt.Errorf("config: path_map entry %q -> %q must map directory prefixes ending in '/'", tr.From, tr.To)
		}
	}
	return nil
}
