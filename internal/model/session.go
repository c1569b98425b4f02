package model

import "time"

// Session namespaces and keys read by the widget.
const (
	NamespaceProfile    = "profile"
	KeyIsAuthenticated  = "isAuthenticated"
	KeyEmail            = "email"
	AuthenticatedClaim  = "true"
	unauthenticatedText = "false"
)

// SessionValue is a single session item. Values are always strings.
type SessionValue struct {
	Value string `json:"value"`
}

// SessionSnapshot is the client-visible view of a storefront session:
// namespaces of string-valued items, e.g.
//
//	{"id": "...", "namespaces": {"profile": {"isAuthenticated": {"value": "true"}}}}
type SessionSnapshot struct {
	ID         string                             `json:"id"`
	Namespaces map[string]map[string]SessionValue `json:"namespaces"`
}

// Claim returns the value stored under namespace/key, or "" if it is missing.
// It is safe to call on a nil snapshot.
func (s *SessionSnapshot) Claim(namespace, key string) string {
	if s == nil || s.Namespaces == nil {
		return ""
	}
	ns, ok := s.Namespaces[namespace]
	if !ok {
		return ""
	}
	return ns[key].Value
}

// AuthClaim returns profile.isAuthenticated.
func (s *SessionSnapshot) AuthClaim() string {
	return s.Claim(NamespaceProfile, KeyIsAuthenticated)
}

// Email returns profile.email.
func (s *SessionSnapshot) Email() string {
	return s.Claim(NamespaceProfile, KeyEmail)
}

// Session is the service-side session record.
type Session struct {
	ID            string    `json:"id"`
	Email         string    `json:"email,omitempty"`
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot converts the session into the namespaced form the storefront sees.
func (s *Session) Snapshot() *SessionSnapshot {
	claim := unauthenticatedText
	if s.Authenticated {
		claim = AuthenticatedClaim
	}
	profile := map[string]SessionValue{
		KeyIsAuthenticated: {Value: claim},
	}
	if s.Email != "" {
		profile[KeyEmail] = SessionValue{Value: s.Email}
	}
	return &SessionSnapshot{
		ID:         s.ID,
		Namespaces: map[string]map[string]SessionValue{NamespaceProfile: profile},
	}
}
