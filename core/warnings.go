package core

import "fmt"

// Warnings is an ordered warning collector. A message is kept once, at the
// position it was first reported.
type Warnings struct {
	list []string
	seen map[string]bool
}

// Addf formats and records a warning.
func (w *Warnings) Addf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.seen == nil {
		w.seen = make(map[string]bool)
	}
	if w.seen[msg] {
		return
	}
	w.seen[msg] = true
	w.list = append(w.list, msg)
}

// List returns a copy of the recorded warnings.
func (w *Warnings) List() []string {
	out := make([]string, len(w.list))
	copy(out, w.list)
	return out
}

// Len returns the number of distinct warnings.
func (w *Warnings) Len() int {
	return len(w.list)
}
