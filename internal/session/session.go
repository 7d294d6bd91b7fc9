package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/frstrtr/mongotron/internal/event"
	"github.com/frstrtr/mongotron/internal/stats"
	"github.com/frstrtr/mongotron/internal/storage"
)

// State is the lifecycle state of a subscription session.
type State int32

const (
	StateCreated State = iota
	StatePending
	StateStreaming
	StateClosing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePending:
		return "pending"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// deleteTimeout bounds the best-effort server-side subscription deletion
// performed during teardown, after the session context is already gone.
const deleteTimeout = 10 * time.Second

// Transport is the upstream subscription API collaborator. It owns its own
// connect/read timeouts; the session adds none.
type Transport interface {
	CreateSubscription(ctx context.Context, address string, filters map[string]interface{}) (string, error)
	DeleteSubscription(ctx context.Context, subscriptionID string) error
	Stream(ctx context.Context, subscriptionID string) (MessageStream, error)
}

// MessageStream yields raw JSON frames for one subscription, in order.
type MessageStream interface {
	// Next blocks until the next frame, a stream error, or Close.
	Next() ([]byte, error)
	Close() error
}

// Session owns one subscription lifecycle: create, stream, delete. There is
// no automatic reconnect; a transport error is terminal for the session.
type Session struct {
	key     Key
	filters map[string]interface{}

	transport Transport
	decoder   *event.Decoder
	sink      storage.Sink
	logger    *zap.Logger
	stats     *stats.Accumulator

	state atomic.Int32

	mu             sync.Mutex
	subscriptionID string
	startedAt      time.Time
	cancel         context.CancelFunc

	done chan struct{}
	err  error
}

// New builds a session in the Created state. The sink receives every decoded,
// non-suppressed event; a nil sink discards them.
func New(key Key, filters map[string]interface{}, transport Transport, decoder *event.Decoder, sink storage.Sink, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		key:       key,
		filters:   filters,
		transport: transport,
		decoder:   decoder,
		sink:      sink,
		logger: logger.With(
			zap.Int64("owner", key.Owner),
			zap.String("target", key.Target),
			zap.String("mode", string(key.Mode)),
		),
		done: make(chan struct{}),
	}
}

// Start launches the session lifecycle on its own goroutine. The session
// stops when Stop is called, the parent context is cancelled, or the stream
// fails.
func (s *Session) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.cancel = cancel
	s.startedAt = time.Now()
	s.stats = stats.NewAccumulator(s.startedAt)
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		if err := s.run(ctx); err != nil {
			s.err = err
		}
		cancel()
	}()
}

// Stop requests cooperative cancellation and waits for the session to reach
// a terminal state. A message mid-decode completes before teardown begins.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the terminal error, if the session failed.
func (s *Session) Err() error { return s.err }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Key returns the (owner, target, mode) identity of this session.
func (s *Session) Key() Key { return s.key }

// SubscriptionID returns the server-assigned subscription id, once known.
func (s *Session) SubscriptionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptionID
}

// Summary snapshots the session for listing.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	subID := s.subscriptionID
	startedAt := s.startedAt
	acc := s.stats
	s.mu.Unlock()

	summary := Summary{
		Owner:          s.key.Owner,
		Target:         s.key.Target,
		Mode:           s.key.Mode,
		SubscriptionID: subID,
		State:          s.State().String(),
		StartedAt:      startedAt,
	}
	if acc != nil {
		summary.Events = acc.Events()
	}
	return summary
}

// Stats returns the session's accumulator, or nil before Start.
func (s *Session) Stats() *stats.Accumulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) run(ctx context.Context) error {
	s.state.Store(int32(StatePending))

	subID, err := s.transport.CreateSubscription(ctx, s.key.Target, s.filters)
	if err != nil {
		s.state.Store(int32(StateFailed))
		return fmt.Errorf("create subscription: %w", err)
	}
	s.mu.Lock()
	s.subscriptionID = subID
	s.mu.Unlock()
	s.logger.Info("subscription created", zap.String("subscription_id", subID))

	stream, err := s.transport.Stream(ctx, subID)
	if err != nil {
		s.deleteSubscription(subID)
		s.state.Store(int32(StateFailed))
		return fmt.Errorf("open stream: %w", err)
	}

	s.state.Store(int32(StateStreaming))
	streamErr := s.streamLoop(ctx, stream)

	if streamErr != nil {
		// transport errors are terminal for this session; cleanup stays
		// best-effort
		s.state.Store(int32(StateFailed))
	} else {
		s.state.Store(int32(StateClosing))
	}
	if err := stream.Close(); err != nil {
		s.logger.Debug("stream close", zap.Error(err))
	}
	s.deleteSubscription(subID)

	if streamErr != nil {
		return streamErr
	}
	s.state.Store(int32(StateClosed))
	return nil
}

// streamLoop reads, decodes, and forwards messages until cancellation or a
// stream error. Cancellation is checked at message boundaries only, so an
// in-flight decode always completes.
func (s *Session) streamLoop(ctx context.Context, stream MessageStream) error {
	frames := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		for {
			frame, err := stream.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				// reader unblocked by our own teardown
				return nil
			}
			return fmt.Errorf("stream: %w", err)
		case frame := <-frames:
			s.handleFrame(ctx, frame)
		}
	}
}

func (s *Session) handleFrame(ctx context.Context, frame []byte) {
	ev, err := s.decoder.Decode(frame)
	if err != nil {
		// one bad message never drops the connection
		s.logger.Warn("malformed payload skipped", zap.Error(err))
		return
	}
	if ev == nil {
		s.logger.Debug("non-event frame ignored")
		return
	}

	s.stats.Add(ev)
	if ev.Suppressed {
		s.logger.Debug("event suppressed by filter", zap.String("tx_id", ev.TxID))
		return
	}
	if s.sink == nil {
		return
	}
	// A slow sink stalls the read loop; messages are never dropped.
	if err := s.sink.PutEvent(ctx, ev); err != nil {
		s.logger.Warn("sink rejected event", zap.String("tx_id", ev.TxID), zap.Error(err))
	}
}

// deleteSubscription is best-effort: the session context may already be
// cancelled, so deletion runs on its own bounded context and failures are
// logged, never escalated.
func (s *Session) deleteSubscription(subID string) {
	if subID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	if err := s.transport.DeleteSubscription(ctx, subID); err != nil {
		s.logger.Warn("delete subscription failed", zap.String("subscription_id", subID), zap.Error(err))
		return
	}
	s.logger.Info("subscription deleted", zap.String("subscription_id", subID))
}
