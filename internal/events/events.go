package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/orgwidget/internal/model"
)

// Event topic constants
const (
	TopicSessionChanged      = "orgwidget.session.changed"
	TopicOrganizationUpdated = "orgwidget.organization.updated"
	TopicCostCenterCreated   = "orgwidget.costcenter.created"
	TopicUserUpdated         = "orgwidget.user.updated"

	// TopicAll matches every orgwidget topic.
	TopicAll = "orgwidget.>"

	// TopicPrefix is shared by every topic this service publishes or reads.
	TopicPrefix = "orgwidget."
)

// ErrForeignTopic is returned for topics outside TopicPrefix.
var ErrForeignTopic = errors.New("topic outside the orgwidget namespace")

// ValidateTopic rejects topics that do not start with TopicPrefix or that
// have empty tokens.
func ValidateTopic(topic string) error {
	rest, ok := strings.CutPrefix(topic, TopicPrefix)
	if !ok || rest == "" {
		return fmt.Errorf("%w: %q", ErrForeignTopic, topic)
	}
	for _, tok := range strings.Split(rest, ".") {
		if tok == "" {
			return fmt.Errorf("%w: %q has an empty token", ErrForeignTopic, topic)
		}
	}
	return nil
}

// Event types

// SessionChanged is emitted when a session logs in, logs out or expires.
type SessionChanged struct {
	Session *model.SessionSnapshot `json:"session"`
	Reason  string                 `json:"reason,omitempty"` // "login", "logout", "expired"
}

type OrganizationUpdated struct {
	Organization *model.Organization `json:"organization"`
}

type CostCenterCreated struct {
	CostCenter *model.CostCenter `json:"cost_center"`
}

type UserUpdated struct {
	User *model.User `json:"user"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// DecodeSessionChanged parses a raw SessionChanged payload.
func DecodeSessionChanged(data []byte) (*SessionChanged, error) {
	var evt SessionChanged
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("decoding session event: %w", err)
	}
	if evt.Session == nil {
		return nil, fmt.Errorf("decoding session event: missing session")
	}
	return &evt, nil
}
