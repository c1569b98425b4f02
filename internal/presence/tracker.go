// Package presence tracks which storefront sessions are active.
//
// The server records an Activity every time a session is read, updated or
// used for a storefront lookup. A background reaper marks sessions idle
// longer than the configured threshold as expired and hands them to an
// OnExpired callback, which the server uses to log the session out.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry is a single session's live presence state.
type Entry struct {
	SessionID    string    `json:"session_id"`
	Email        string    `json:"email,omitempty"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
	LastAction   string    `json:"last_action"` // e.g. "session.get", "lookup.organization", "widget.render"
	IdleSecs     float64   `json:"idle_secs"`
	RequestCount int64     `json:"request_count"`
	Expired      bool      `json:"expired,omitempty"`
	ExpiredAt    time.Time `json:"expired_at,omitempty"`
}

// Activity is what the server knows about a request made on behalf of a session.
type Activity struct {
	SessionID string
	Email     string
	Action    string
}

// ReaperConfig configures the background idle-session reaper.
type ReaperConfig struct {
	// IdleTimeout is how long a session must be idle before it expires.
	// Default: 30 minutes.
	IdleTimeout time.Duration

	// EvictAfter is how long after expiring a session is dropped from the roster.
	// Default: 30 minutes.
	EvictAfter time.Duration

	// SweepInterval is how often the reaper scans. Default: 60 seconds.
	SweepInterval time.Duration

	// OnExpired is called for each newly expired session, outside the lock.
	OnExpired func(sessionID string)

	Logger *slog.Logger
}

// Tracker maintains an in-memory roster of active sessions.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type sessionState struct {
	email        string
	firstSeen    time.Time
	lastSeen     time.Time
	lastAction   string
	requestCount int64
	expired      bool
	expiredAt    time.Time
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{sessions: make(map[string]*sessionState)}
}

// Record updates presence state for the session named in a.
func (t *Tracker) Record(a Activity) {
	if a.SessionID == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.sessions[a.SessionID]
	if !ok {
		state = &sessionState{firstSeen: now}
		t.sessions[a.SessionID] = state
	}
	if state.expired {
		state.expired = false
		state.expiredAt = time.Time{}
	}
	state.lastSeen = now
	state.lastAction = a.Action
	state.requestCount++
	if a.Email != "" {
		state.email = a.Email
	}
}

// Forget removes a session from the roster.
func (t *Tracker) Forget(sessionID string) {
	t.mu.Lock()
	delete(t.sessions, sessionID)
	t.mu.Unlock()
}

// Roster returns all tracked sessions, most recently active first.
// Sessions idle longer than staleThreshold are excluded; 0 includes everything.
func (t *Tracker) Roster(staleThreshold time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.sessions))
	for id, state := range t.sessions {
		idle := now.Sub(state.lastSeen)
		if staleThreshold > 0 && idle > staleThreshold {
			continue
		}
		entries = append(entries, Entry{
			SessionID:    id,
			Email:        state.email,
			FirstSeen:    state.firstSeen,
			LastSeen:     state.lastSeen,
			LastAction:   state.lastAction,
			IdleSecs:     idle.Seconds(),
			RequestCount: state.requestCount,
			Expired:      state.expired,
			ExpiredAt:    state.expiredAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})
	return entries
}

// StartReaper launches the background reaper. Call Stop to shut it down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})

	go t.reapLoop(cfg)
	cfg.Logger.Info("presence: reaper started",
		"idle_timeout", cfg.IdleTimeout,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg *ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg, time.Now())
		}
	}
}

func (t *Tracker) sweep(cfg *ReaperConfig, now time.Time) {
	var expired []string

	t.mu.Lock()
	for id, state := range t.sessions {
		if state.expired {
			if now.Sub(state.expiredAt) > cfg.EvictAfter {
				delete(t.sessions, id)
			}
			continue
		}
		if now.Sub(state.lastSeen) > cfg.IdleTimeout {
			state.expired = true
			state.expiredAt = now
			expired = append(expired, id)
		}
	}
	t.mu.Unlock()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, id := range expired {
		logger.Info("presence: session expired",
			"session_id", id,
			"idle_timeout", cfg.IdleTimeout)
		if cfg.OnExpired != nil {
			cfg.OnExpired(id)
		}
	}
}
