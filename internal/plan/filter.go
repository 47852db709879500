package plan

import (
	"strings"

	"chronofix/internal/confidence"
)

// FilterOptions narrows a plan before review or apply.
type FilterOptions struct {
	MinConfidence   confidence.Level
	NeedsUpdateOnly bool
	Extensions      []string
}

// Filter returns the entries satisfying every requested condition,
// preserving order.
func Filter(entries []Entry, opts FilterOptions) []Entry {
	extSet := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[ext] = struct{}{}
	}

	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if opts.MinConfidence != "" && !e.Confidence.Meets(opts.MinConfidence) {
			continue
		}
		if opts.NeedsUpdateOnly && !e.NeedsUpdate {
			continue
		}
		if len(extSet) > 0 {
			if _, ok := extSet[strings.ToLower(e.FileExtension)]; !ok {
				continue
			}
		}
		filtered = append(filtered, e)
	}
	return filtered
}
