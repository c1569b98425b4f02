package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/model"
)

func snapshot(id, claim string) *model.SessionSnapshot {
	return &model.SessionSnapshot{
		ID: id,
		Namespaces: map[string]map[string]model.SessionValue{
			model.NamespaceProfile: {model.KeyIsAuthenticated: {Value: claim}},
		},
	}
}

func TestIsAuthenticated(t *testing.T) {
	for _, tc := range []struct {
		name string
		snap *model.SessionSnapshot
		want bool
	}{
		{"Nil", nil, false},
		{"Empty", &model.SessionSnapshot{}, false},
		{"True", snapshot("s", "true"), true},
		{"False", snapshot("s", "false"), false},
		{"Uppercase", snapshot("s", "TRUE"), false},
		{"Garbage", snapshot("s", "yes"), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAuthenticated(tc.snap); got != tc.want {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tc.want)
			}
		})
	}
}

type fakeFetcher struct {
	snap *model.SessionSnapshot
	err  error
	ids  []string
}

func (f *fakeFetcher) GetSession(_ context.Context, id string) (*model.SessionSnapshot, error) {
	f.ids = append(f.ids, id)
	return f.snap, f.err
}

func TestSource_Refresh(t *testing.T) {
	f := &fakeFetcher{snap: snapshot("sess-1", "true")}
	src := NewSource(f, "sess-1", nil)

	if src.CurrentSnapshot() != nil {
		t.Fatal("new source should have no snapshot")
	}
	if _, err := src.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !IsAuthenticated(src.CurrentSnapshot()) {
		t.Error("expected authenticated snapshot after refresh")
	}
	if len(f.ids) != 1 || f.ids[0] != "sess-1" {
		t.Errorf("fetched ids = %v", f.ids)
	}

	// A failed refresh keeps the previous snapshot.
	f.snap, f.err = nil, errors.New("unavailable")
	if _, err := src.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if !IsAuthenticated(src.CurrentSnapshot()) {
		t.Error("failed refresh dropped the previous snapshot")
	}
}

func TestSource_RefreshFailureBeforeLoad(t *testing.T) {
	src := NewSource(&fakeFetcher{err: errors.New("down")}, "sess-1", nil)
	snap, err := src.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if snap != nil || src.CurrentSnapshot() != nil {
		t.Error("snapshot should stay nil")
	}
}

func TestSource_Set(t *testing.T) {
	src := NewSource(&fakeFetcher{}, "sess-1", nil)
	if src.Set(nil) {
		t.Error("Set(nil) should be ignored")
	}
	if src.Set(snapshot("other", "true")) {
		t.Error("Set for another session should be ignored")
	}
	if !src.Set(snapshot("sess-1", "false")) {
		t.Error("Set for this session should be installed")
	}
	if src.CurrentSnapshot().AuthClaim() != "false" {
		t.Errorf("claim = %q", src.CurrentSnapshot().AuthClaim())
	}
}

// chanSubscriber is an events.Subscriber fed by the test.
type chanSubscriber struct {
	ch     chan []byte
	topic  string
	once   sync.Once
	closed chan struct{}
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{ch: make(chan []byte, 8), closed: make(chan struct{})}
}

func (c *chanSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	c.topic = topic
	return c.ch, func() { c.once.Do(func() { close(c.closed) }) }, nil
}

func (c *chanSubscriber) Close() error { return nil }

func TestSource_Watch(t *testing.T) {
	sub := newChanSubscriber()
	src := NewSource(&fakeFetcher{}, "sess-1", nil)

	notified := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, sub, func() { notified <- struct{}{} })
	}()

	sub.ch <- []byte(`garbage`)
	sub.ch <- []byte(`{"session":{"id":"other","namespaces":{"profile":{"isAuthenticated":{"value":"true"}}}}}`)
	sub.ch <- []byte(`{"session":{"id":"sess-1","namespaces":{"profile":{"isAuthenticated":{"value":"true"}}}},"reason":"login"}`)

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notify")
	}
	if !IsAuthenticated(src.CurrentSnapshot()) {
		t.Error("expected authenticated snapshot from event")
	}
	if sub.topic != "orgwidget.session.changed" {
		t.Errorf("subscribed topic = %q", sub.topic)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Watch returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	select {
	case <-sub.closed:
	default:
		t.Error("subscription not cancelled")
	}
	if len(notified) != 0 {
		t.Errorf("unexpected extra notifications: %d", len(notified))
	}
}

func TestSource_WatchClosedChannel(t *testing.T) {
	sub := newChanSubscriber()
	close(sub.ch)
	src := NewSource(&fakeFetcher{}, "sess-1", nil)
	if err := src.Watch(context.Background(), sub, nil); err != nil {
		t.Fatalf("Watch = %v, want nil on closed subscription", err)
	}
}

func TestStatic(t *testing.T) {
	var o Observer = Static{}
	if o.CurrentSnapshot() != nil {
		t.Error("zero Static should return nil")
	}
	o = Static{Snapshot: snapshot("s", "true")}
	if !IsAuthenticated(o.CurrentSnapshot()) {
		t.Error("Static should return its snapshot")
	}
}
