package presence

import (
	"testing"
	"time"
)

func TestRecord_BasicTracking(t *testing.T) {
	tr := New()

	tr.Record(Activity{SessionID: "sess-1", Email: "buyer@acme.test", Action: "session.get"})

	roster := tr.Roster(0)
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(roster))
	}
	e := roster[0]
	if e.SessionID != "sess-1" {
		t.Errorf("expected session sess-1, got %s", e.SessionID)
	}
	if e.Email != "buyer@acme.test" {
		t.Errorf("expected email buyer@acme.test, got %s", e.Email)
	}
	if e.LastAction != "session.get" {
		t.Errorf("expected last_action session.get, got %s", e.LastAction)
	}
	if e.RequestCount != 1 {
		t.Errorf("expected request_count 1, got %d", e.RequestCount)
	}
}

func TestRecord_UpdatesExistingSession(t *testing.T) {
	tr := New()

	tr.Record(Activity{SessionID: "s", Email: "a@b.test", Action: "session.get"})
	tr.Record(Activity{SessionID: "s", Action: "lookup.organization"})
	tr.Record(Activity{SessionID: "s", Action: "lookup.cost-center"})

	e := tr.Roster(0)[0]
	if e.RequestCount != 3 {
		t.Errorf("expected 3 requests, got %d", e.RequestCount)
	}
	if e.LastAction != "lookup.cost-center" {
		t.Errorf("expected last action lookup.cost-center, got %s", e.LastAction)
	}
	if e.Email != "a@b.test" {
		t.Errorf("email should be kept when later activity omits it, got %q", e.Email)
	}
}

func TestRecord_IgnoresEmptySession(t *testing.T) {
	tr := New()
	tr.Record(Activity{Action: "widget.render"})
	if n := len(tr.Roster(0)); n != 0 {
		t.Fatalf("expected 0 entries, got %d", n)
	}
}

func TestForget(t *testing.T) {
	tr := New()
	tr.Record(Activity{SessionID: "s"})
	tr.Forget("s")
	if n := len(tr.Roster(0)); n != 0 {
		t.Fatalf("expected 0 entries after Forget, got %d", n)
	}
}

func TestRoster_StaleThresholdAndOrder(t *testing.T) {
	tr := New()

	tr.Record(Activity{SessionID: "old"})
	tr.Record(Activity{SessionID: "mid"})
	tr.Record(Activity{SessionID: "new"})

	now := time.Now()
	tr.mu.Lock()
	tr.sessions["old"].lastSeen = now.Add(-20 * time.Minute)
	tr.sessions["mid"].lastSeen = now.Add(-time.Minute)
	tr.mu.Unlock()

	roster := tr.Roster(10 * time.Minute)
	if len(roster) != 2 {
		t.Fatalf("expected 2 entries with threshold, got %d", len(roster))
	}
	if roster[0].SessionID != "new" || roster[1].SessionID != "mid" {
		t.Errorf("unexpected order: %s, %s", roster[0].SessionID, roster[1].SessionID)
	}
	if all := tr.Roster(0); len(all) != 3 {
		t.Fatalf("expected 3 entries without threshold, got %d", len(all))
	}
}

func TestSweep_ExpiresIdleSessions(t *testing.T) {
	tr := New()
	tr.Record(Activity{SessionID: "idle"})
	tr.Record(Activity{SessionID: "busy"})

	now := time.Now()
	tr.mu.Lock()
	tr.sessions["idle"].lastSeen = now.Add(-45 * time.Minute)
	tr.mu.Unlock()

	var expired []string
	cfg := &ReaperConfig{
		IdleTimeout: 30 * time.Minute,
		EvictAfter:  30 * time.Minute,
		OnExpired:   func(id string) { expired = append(expired, id) },
	}
	tr.sweep(cfg, now)

	if len(expired) != 1 || expired[0] != "idle" {
		t.Fatalf("expected idle to expire, got %v", expired)
	}

	// A second sweep does not report it again.
	tr.sweep(cfg, now.Add(time.Second))
	if len(expired) != 1 {
		t.Errorf("expired reported twice: %v", expired)
	}

	for _, e := range tr.Roster(0) {
		if e.SessionID == "idle" && !e.Expired {
			t.Error("expected idle to have expired=true")
		}
		if e.SessionID == "busy" && e.Expired {
			t.Error("busy session should not expire")
		}
	}
}

func TestSweep_RevivedSession(t *testing.T) {
	tr := New()
	tr.Record(Activity{SessionID: "s"})

	now := time.Now()
	tr.mu.Lock()
	tr.sessions["s"].lastSeen = now.Add(-time.Hour)
	tr.mu.Unlock()
	tr.sweep(&ReaperConfig{IdleTimeout: 30 * time.Minute, EvictAfter: time.Hour}, now)

	tr.Record(Activity{SessionID: "s", Action: "session.get"})

	e := tr.Roster(0)[0]
	if e.Expired {
		t.Error("expected session to be revived")
	}
	if e.RequestCount != 2 {
		t.Errorf("expected 2 requests, got %d", e.RequestCount)
	}
}

func TestSweep_EvictsExpiredSessions(t *testing.T) {
	tr := New()
	tr.Record(Activity{SessionID: "gone"})

	now := time.Now()
	tr.mu.Lock()
	st := tr.sessions["gone"]
	st.expired = true
	st.expiredAt = now.Add(-time.Hour)
	tr.mu.Unlock()

	tr.sweep(&ReaperConfig{IdleTimeout: 30 * time.Minute, EvictAfter: 30 * time.Minute}, now)

	tr.mu.RLock()
	_, exists := tr.sessions["gone"]
	tr.mu.RUnlock()
	if exists {
		t.Error("expected expired session to be evicted")
	}
}

func TestStartReaper_StopsCleanly(t *testing.T) {
	tr := New()
	tr.StartReaper(&ReaperConfig{SweepInterval: 50 * time.Millisecond})
	time.Sleep(120 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		tr.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return within 2 seconds")
	}
}
