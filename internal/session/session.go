// Package session adapts the storefront session source for the widget.
//
// An Observer exposes the most recent session snapshot, or nil while no
// session information has loaded. Source keeps that snapshot current by
// polling the storefront (Refresh) and by listening for
// orgwidget.session.changed events (Watch).
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alfredjeanlab/orgwidget/internal/events"
	"github.com/alfredjeanlab/orgwidget/internal/model"
)

// Observer supplies the current session snapshot.
type Observer interface {
	// CurrentSnapshot returns nil when no session information has loaded yet.
	CurrentSnapshot() *model.SessionSnapshot
}

// IsAuthenticated derives the authentication boolean from a snapshot.
// Only the exact claim "true" counts.
func IsAuthenticated(snap *model.SessionSnapshot) bool {
	return snap.AuthClaim() == model.AuthenticatedClaim
}

// Fetcher loads a session snapshot by ID.
type Fetcher interface {
	GetSession(ctx context.Context, id string) (*model.SessionSnapshot, error)
}

// Static is an Observer over a fixed snapshot.
type Static struct {
	Snapshot *model.SessionSnapshot
}

func (s Static) CurrentSnapshot() *model.SessionSnapshot { return s.Snapshot }

// Source is an Observer backed by the storefront session API.
type Source struct {
	fetcher Fetcher
	id      string
	logger  *slog.Logger

	mu   sync.RWMutex
	snap *model.SessionSnapshot
}

// NewSource returns a Source for session id. Nothing is loaded until
// Refresh or Set is called.
func NewSource(f Fetcher, id string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{fetcher: f, id: id, logger: logger}
}

// ID returns the session ID this source follows.
func (s *Source) ID() string { return s.id }

// CurrentSnapshot returns the last loaded snapshot.
func (s *Source) CurrentSnapshot() *model.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh loads the session from the storefront. On failure the previous
// snapshot is kept, so a source that never loaded stays nil.
func (s *Source) Refresh(ctx context.Context) (*model.SessionSnapshot, error) {
	snap, err := s.fetcher.GetSession(ctx, s.id)
	if err != nil {
		s.logger.Debug("session refresh failed", "session_id", s.id, "err", err)
		return s.CurrentSnapshot(), fmt.Errorf("loading session %s: %w", s.id, err)
	}
	s.Set(snap)
	return snap, nil
}

// Set installs a snapshot. Nil snapshots and snapshots for other sessions
// are ignored; it reports whether the snapshot was installed.
func (s *Source) Set(snap *model.SessionSnapshot) bool {
	if snap == nil || snap.ID != s.id {
		return false
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return true
}

// Watch subscribes to session change events and installs every snapshot
// for this session, calling notify after each. It blocks until ctx is done
// or the subscription closes.
func (s *Source) Watch(ctx context.Context, sub events.Subscriber, notify func()) error {
	ch, cancel, err := sub.Subscribe(events.TopicSessionChanged)
	if err != nil {
		return fmt.Errorf("subscribing to session events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			evt, err := events.DecodeSessionChanged(data)
			if err != nil {
				s.logger.Debug("ignoring malformed session event", "err", err)
				continue
			}
			if !s.Set(evt.Session) {
				continue
			}
			s.logger.Debug("session changed", "session_id", s.id, "reason", evt.Reason)
			if notify != nil {
				notify()
			}
		}
	}
}
