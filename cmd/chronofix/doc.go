// Command chronofix recovers lost media timestamps. It captures library
// snapshots, reconstructs prior filenames from rename logs, builds reviewable
// recovery plans, and applies them in resumable, undo-logged batches.
package main
