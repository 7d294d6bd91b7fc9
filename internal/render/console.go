package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/frstrtr/mongotron/internal/model"
)

// ConsoleSink renders decoded events as text blocks on a writer.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// PutEvent writes one rendered event. Writes are serialized so blocks from
// concurrent sessions do not interleave.
func (s *ConsoleSink) PutEvent(_ context.Context, ev *model.DecodedEvent) error {
	lines := Lines(ev)
	if len(lines) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	_, err := fmt.Fprintln(s.w)
	return err
}
