package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrDuplicateSession reports a start for a key that is already live.
	ErrDuplicateSession = errors.New("session already active for this key")
	// ErrSessionNotFound reports a stop for a key with no live session.
	ErrSessionNotFound = errors.New("no active session for this key")
)

// Mode selects which decoded events a session forwards.
type Mode string

const (
	// ModePlain forwards every decoded event.
	ModePlain Mode = "plain"
	// ModeSmart forwards smart-contract interactions only.
	ModeSmart Mode = "smart"
)

// Key identifies one live monitoring relationship.
type Key struct {
	Owner  int64
	Target string
	Mode   Mode
}

// Summary is a listing snapshot of one session.
type Summary struct {
	Owner          int64     `json:"owner"`
	Target         string    `json:"target"`
	Mode           Mode      `json:"mode"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	State          string    `json:"state"`
	StartedAt      time.Time `json:"started_at"`
	Events         uint64    `json:"events"`
}

// Factory builds a session for a key. The registry owns lifecycle; the
// factory owns wiring (transport, decoder, sink).
type Factory func(key Key) *Session

// ownerSessions keeps an owner's sessions in insertion order: operators
// reason about which they started first.
type ownerSessions struct {
	order []Key
	byKey map[Key]*Session
}

// Registry tracks live sessions per (owner, target, mode) key. A single
// coarse lock makes start/stop/list linearizable across callers.
type Registry struct {
	mu      sync.Mutex
	owners  map[int64]*ownerSessions
	factory Factory
	logger  *zap.Logger
}

func NewRegistry(factory Factory, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		owners:  make(map[int64]*ownerSessions),
		factory: factory,
		logger:  logger,
	}
}

// Start creates and launches a session for the key. A live session with the
// same key is rejected, never merged.
func (r *Registry) Start(ctx context.Context, key Key) (*Session, error) {
	r.mu.Lock()
	owner := r.owners[key.Owner]
	if owner != nil {
		if _, exists := owner.byKey[key]; exists {
			r.mu.Unlock()
			return nil, ErrDuplicateSession
		}
	} else {
		owner = &ownerSessions{byKey: make(map[Key]*Session)}
		r.owners[key.Owner] = owner
	}

	sess := r.factory(key)
	owner.byKey[key] = sess
	owner.order = append(owner.order, key)
	r.mu.Unlock()

	sess.Start(ctx)
	r.logger.Info("session started",
		zap.Int64("owner", key.Owner),
		zap.String("target", key.Target),
		zap.String("mode", string(key.Mode)),
	)

	// self-cleanup once the session reaches a terminal state on its own
	go func() {
		<-sess.Done()
		r.remove(key, sess)
	}()

	return sess, nil
}

// Stop cancels the keyed session, awaits its terminal state, and removes it.
func (r *Registry) Stop(ctx context.Context, key Key) error {
	r.mu.Lock()
	sess := r.lookup(key)
	r.mu.Unlock()
	if sess == nil {
		return ErrSessionNotFound
	}

	if err := sess.Stop(ctx); err != nil {
		return err
	}
	r.remove(key, sess)
	return nil
}

// StopAll cancels every session owned by the owner and returns how many it
// stopped. The owner's map entry is removed entirely once empty.
func (r *Registry) StopAll(ctx context.Context, ownerID int64) int {
	r.mu.Lock()
	owner := r.owners[ownerID]
	var sessions []*Session
	if owner != nil {
		for _, key := range owner.order {
			if sess, ok := owner.byKey[key]; ok {
				sessions = append(sessions, sess)
			}
		}
	}
	r.mu.Unlock()

	for _, sess := range sessions {
		if err := sess.Stop(ctx); err != nil {
			r.logger.Warn("session stop interrupted",
				zap.Int64("owner", ownerID),
				zap.String("target", sess.Key().Target),
				zap.Error(err),
			)
		}
		r.remove(sess.Key(), sess)
	}
	return len(sessions)
}

// List returns summaries of the owner's live sessions in insertion order.
func (r *Registry) List(ownerID int64) []Summary {
	r.mu.Lock()
	owner := r.owners[ownerID]
	var sessions []*Session
	if owner != nil {
		for _, key := range owner.order {
			if sess, ok := owner.byKey[key]; ok {
				sessions = append(sessions, sess)
			}
		}
	}
	r.mu.Unlock()

	summaries := make([]Summary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, sess.Summary())
	}
	return summaries
}

// remove drops the key only if it still maps to the same session, so a
// restart under the same key is never clobbered by a stale cleanup.
func (r *Registry) remove(key Key, sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner := r.owners[key.Owner]
	if owner == nil {
		return
	}
	current, ok := owner.byKey[key]
	if !ok || current != sess {
		return
	}

	delete(owner.byKey, key)
	for i, k := range owner.order {
		if k == key {
			owner.order = append(owner.order[:i], owner.order[i+1:]...)
			break
		}
	}
	if len(owner.byKey) == 0 {
		delete(r.owners, key.Owner)
	}
}

// lookup must be called with the lock held.
func (r *Registry) lookup(key Key) *Session {
	owner := r.owners[key.Owner]
	if owner == nil {
		return nil
	}
	return owner.byKey[key]
}
