package report

import "io"

// Sink is where rendered reports go: the interactive output and, when
// configured, an append-only log file. Both receive the same bytes.
type Sink struct {
	w io.Writer
}

// NewSink combines the given writers into one report destination. Nil
// writers are dropped; a sink with no writers discards output.
func NewSink(writers ...io.Writer) *Sink {
	kept := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return &Sink{w: io.Discard}
	}
	return &Sink{w: io.MultiWriter(kept...)}
}

// Write renders the table to every destination.
func (s *Sink) Write(t *Table) error {
	return t.Render(s.w)
}
