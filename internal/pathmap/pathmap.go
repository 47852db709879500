// Package pathmap translates file paths between host naming conventions, so
// a plan captured against one mount point applies against another. The
// translation is a pure prefix rewrite: deterministic, stable, and
// idempotent, which keeps checkpoint keys unique per physical file.
package pathmap

import (
	"strings"

	"chronofix/internal/config"
)

// Table holds ordered prefix translations. The first matching rule wins.
type Table struct {
	rules []config.Translation
}

// FromConfig builds a table from the configured translations.
func FromConfig(cfg *config.Config) Table {
	if cfg == nil {
		return Table{}
	}
	rules := make([]config.Translation, len(cfg.PathMap))
	copy(rules, cfg.PathMap)
	return Table{rules: rules}
}

// New builds a table from explicit rules, primarily for tests.
func New(rules ...config.Translation) Table {
	return Table{rules: rules}
}

// Translate rewrites the first matching prefix. A path that already uses the
// target convention passes through unchanged, so applying the table twice is
// a no-op.
func (t Table) Translate(path string) string {
	for _, rule := range t.rules {
		if strings.HasPrefix(path, rule.From) {
			return rule.To + strings.TrimPrefix(path, rule.From)
		}
	}
	return path
}
