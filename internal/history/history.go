// Package history reconstructs prior filenames from free-text rename logs.
// The logs are the only surviving record of what each file used to be
// called, and the old names are what encode the original capture dates.
package history

// Actions recorded in rename logs.
const (
	ActionRenamed = "RENAMED"
	ActionMoved   = "MOVED"
)

// Op is one rename or move operation recovered from a log.
type Op struct {
	Timestamp   string // "2006-01-02 15:04:05", empty when the log had none
	OldName     string
	NewName     string
	Directory   string
	Destination string // set for moves only
	Action      string
}

// Resolve maps each current (new) filename to the operation that most
// recently produced it. When a name appears multiple times the entry with
// the lexicographically greatest timestamp wins; operations with no
// timestamp always lose to ones that have one. Ties keep the first
// occurrence in log order.
func Resolve(ops []Op) map[string]Op {
	resolved := make(map[string]Op, len(ops))
	for _, op := range ops {
		best, ok := resolved[op.NewName]
		if !ok || op.Timestamp > best.Timestamp {
			resolved[op.NewName] = op
		}
	}
	return resolved
}
