// Package session wraps the registry's change-session protocol in a handle
// with a guaranteed terminal state. Every opened session reaches Activated
// or Discarded before the owning workflow returns; an abandoned open session
// is a leaked remote resource that blocks other actors.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/osb-tools/osbctl/internal/metrics"
	"github.com/osb-tools/osbctl/internal/osb"
)

// State is the lifecycle state of a session handle.
type State string

const (
	StateOpen      State = "open"
	StateActivated State = "activated"
	StateDiscarded State = "discarded"
)

// ErrNoMutations reports an Activate call on a session that accumulated no
// mutations. Such sessions must be discarded instead, to avoid producing
// empty change-history entries.
var ErrNoMutations = errors.New("session has no mutations to activate")

var errTerminal = errors.New("session already reached a terminal state")

// Session is one logical change against the registry. Handles are never
// reused; a new attempt opens a new session.
type Session struct {
	mgr       osb.SessionManager
	name      string
	state     State
	mutations int
	logger    *slog.Logger
}

// Open creates a remote session named after the owner and the current time,
// globally unique per attempt.
func Open(ctx context.Context, mgr osb.SessionManager, owner string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	name := owner + "_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	logger.Info("creating session", "session", name)
	if err := mgr.Create(ctx, name); err != nil {
		return nil, fmt.Errorf("create session %s: %w", name, err)
	}
	return &Session{mgr: mgr, name: name, state: StateOpen, logger: logger}, nil
}

// Name returns the remote session name.
func (s *Session) Name() string { return s.name }

// State returns the handle's lifecycle state.
func (s *Session) State() State { return s.state }

// Mutate runs one mutation against the open session. The mutation is counted
// only when fn succeeds; on error the caller's guard discards the session.
func (s *Session) Mutate(fn func(session string) error) error {
	if s.state != StateOpen {
		return errTerminal
	}
	if err := fn(s.name); err != nil {
		return err
	}
	s.mutations++
	return nil
}

// Mutations reports how many mutations succeeded in this session.
func (s *Session) Mutations() int { return s.mutations }

// Activate commits the session with the given change comment and blocks
// until the change has propagated.
func (s *Session) Activate(ctx context.Context, comment string) error {
	if s.state != StateOpen {
		return errTerminal
	}
	if s.mutations == 0 {
		return ErrNoMutations
	}
	s.logger.Info("activating session", "session", s.name, "comment", comment)
	if err := s.mgr.Activate(ctx, s.name, comment); err != nil {
		return fmt.Errorf("activate session %s: %w", s.name, err)
	}
	s.state = StateActivated
	metrics.SessionsTotal.WithLabelValues(string(StateActivated)).Inc()
	return nil
}

// Discard abandons the session. Safe to call after a terminal transition.
func (s *Session) Discard(ctx context.Context) error {
	if s.state != StateOpen {
		return nil
	}
	// The remote side may have expired the session; only discard what still
	// exists, as a discard of a missing session is itself an error.
	exists, err := s.mgr.Exists(ctx, s.name)
	if err != nil {
		return fmt.Errorf("check session %s: %w", s.name, err)
	}
	if exists {
		if err := s.mgr.Discard(ctx, s.name); err != nil {
			return fmt.Errorf("discard session %s: %w", s.name, err)
		}
		s.logger.Info("session discarded", "session", s.name)
	}
	s.state = StateDiscarded
	metrics.SessionsTotal.WithLabelValues(string(StateDiscarded)).Inc()
	return nil
}

// Close is the deferred guard: a session still open when the workflow exits
// is discarded. Errors are logged, not returned, so Close is safe in defer.
func (s *Session) Close(ctx context.Context) {
	if s.state != StateOpen {
		return
	}
	if err := s.Discard(ctx); err != nil {
		s.logger.Error("discarding session on exit failed", "session", s.name, "err", err)
	}
}
