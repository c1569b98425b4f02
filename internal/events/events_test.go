package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/nats-io/nats.go"
)

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = &NoopPublisher{}
	if err := pub.Publish(context.Background(), TopicSessionChanged, SessionChanged{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNATSPublisher_ImplementsPublisher(t *testing.T) {
	var _ Publisher = (*NATSPublisher)(nil)
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(TopicOrganizationUpdated, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	event := OrganizationUpdated{Organization: &model.Organization{ID: "org-1", Name: "Acme", Status: model.OrganizationOnHold}}
	if err := pub.Publish(context.Background(), TopicOrganizationUpdated, event); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		var got OrganizationUpdated
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Organization.ID != "org-1" || got.Organization.Status != model.OrganizationOnHold {
			t.Errorf("got organization %+v", got.Organization)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNATSPublisher_PublishMultipleTopics(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe(TopicAll, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	sess := &model.Session{ID: "sess-1", Authenticated: true}
	for _, tc := range []struct {
		topic string
		event any
	}{
		{TopicSessionChanged, SessionChanged{Session: sess.Snapshot(), Reason: "login"}},
		{TopicOrganizationUpdated, OrganizationUpdated{Organization: &model.Organization{ID: "org-1"}}},
		{TopicCostCenterCreated, CostCenterCreated{CostCenter: &model.CostCenter{ID: "cc-1"}}},
		{TopicUserUpdated, UserUpdated{User: &model.User{ID: "usr-1"}}},
	} {
		if err := pub.Publish(context.Background(), tc.topic, tc.event); err != nil {
			t.Fatalf("Publish(%s): %v", tc.topic, err)
		}
	}
	pub.conn.Flush()

	for i := 0; i < 4; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestNATSPublisher_Close(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := pub.Publish(context.Background(), TopicSessionChanged, SessionChanged{}); err == nil {
		t.Error("expected error publishing after close")
	}
}

func TestDecodeSessionChanged(t *testing.T) {
	sess := &model.Session{ID: "sess-9", Email: "a@b.test", Authenticated: true}
	data, _ := json.Marshal(SessionChanged{Session: sess.Snapshot(), Reason: "login"})

	evt, err := DecodeSessionChanged(data)
	if err != nil {
		t.Fatalf("DecodeSessionChanged: %v", err)
	}
	if evt.Session.ID != "sess-9" || evt.Session.AuthClaim() != "true" {
		t.Errorf("got %+v", evt.Session)
	}

	for _, bad := range []string{`not json`, `{}`, `{"session":null}`} {
		if _, err := DecodeSessionChanged([]byte(bad)); err == nil {
			t.Errorf("DecodeSessionChanged(%q) expected error", bad)
		}
	}
}

func TestValidateTopic(t *testing.T) {
	for _, topic := range []string{TopicSessionChanged, TopicOrganizationUpdated, TopicCostCenterCreated, TopicUserUpdated, TopicAll} {
		if err := ValidateTopic(topic); err != nil {
			t.Errorf("ValidateTopic(%q) = %v", topic, err)
		}
	}
	for _, topic := range []string{"", "orgwidget.", "orgwidget", "billing.invoice.created", "orgwidget..changed", ">"} {
		if err := ValidateTopic(topic); !errors.Is(err, ErrForeignTopic) {
			t.Errorf("ValidateTopic(%q) = %v, want ErrForeignTopic", topic, err)
		}
	}
}

func TestNATS_RejectsForeignTopics(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()
	if err := pub.Publish(context.Background(), "other.session.changed", SessionChanged{}); !errors.Is(err, ErrForeignTopic) {
		t.Errorf("Publish = %v, want ErrForeignTopic", err)
	}

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()
	ch, cancel, err := sub.Subscribe(">")
	if !errors.Is(err, ErrForeignTopic) {
		t.Errorf("Subscribe = %v, want ErrForeignTopic", err)
	}
	if ch != nil || cancel != nil {
		t.Error("Subscribe returned a channel for a rejected topic")
	}
}
