package storage

import (
	"context"

	"github.com/frstrtr/mongotron/internal/model"
)

// Sink consumes decoded events. Implementations must tolerate concurrent
// calls from multiple sessions.
type Sink interface {
	PutEvent(ctx context.Context, ev *model.DecodedEvent) error
}

// MultiSink fans one event out to several sinks. The first error stops the
// fan-out and is returned.
type MultiSink []Sink

func (m MultiSink) PutEvent(ctx context.Context, ev *model.DecodedEvent) error {
	for _, sink := range m {
		if err := sink.PutEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
