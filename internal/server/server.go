package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/events"
	"github.com/alfredjeanlab/orgwidget/internal/i18n"
	"github.com/alfredjeanlab/orgwidget/internal/idgen"
	"github.com/alfredjeanlab/orgwidget/internal/metrics"
	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/presence"
	"github.com/alfredjeanlab/orgwidget/internal/store"
)

// Server implements the storefront service behind both the HTTP and gRPC
// transports. Handlers decode their transport's request, call one of the
// core methods below and map the returned error.
type Server struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
	Presence  *presence.Tracker

	metrics *metrics.Metrics
	bundle  *i18n.Bundle
	widget  WidgetConfig
	logger  *slog.Logger
}

// WidgetConfig configures the server-rendered widget fragment.
type WidgetConfig struct {
	// Namespace prefixes the auth flag cookie name.
	Namespace string
	// RootPath is used when the request has no ?root= parameter.
	RootPath string
	// SecureCookies marks the flag cookie Secure.
	SecureCookies bool
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records HTTP and widget metrics and serves GET /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithBundle sets the message catalog used by GET /widget.
func WithBundle(b *i18n.Bundle) Option {
	return func(s *Server) { s.bundle = b }
}

// WithWidgetConfig configures GET /widget.
func WithWidgetConfig(c WidgetConfig) Option {
	return func(s *Server) { s.widget = c }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer returns a new Server backed by the given store and publisher.
func NewServer(st store.Store, p events.Publisher, opts ...Option) *Server {
	s := &Server{
		store:     st,
		publisher: p,
		sseHub:    newSSEHub(),
		Presence:  presence.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = &events.NoopPublisher{}
	}
	return s
}

// StartReaper starts the presence reaper. Authenticated sessions that go
// idle past cfg.IdleTimeout are logged out.
func (s *Server) StartReaper(cfg presence.ReaperConfig) {
	cfg.OnExpired = s.expireSession
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	s.Presence.StartReaper(&cfg)
}

// Stop stops background work started by the server.
func (s *Server) Stop() {
	s.Presence.Stop()
}

// publish sends an event to NATS and fans it out to SSE clients.
// Failures are logged but do not block the caller.
func (s *Server) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
	s.broadcastEvent(topic, event)
}

func (s *Server) touch(sessionID, email, action string) {
	s.Presence.Record(presence.Activity{SessionID: sessionID, Email: email, Action: action})
	if s.metrics != nil {
		s.metrics.SetActiveSessions(len(s.Presence.Roster(0)))
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// errUnauthenticated is returned by storefront lookups for a session whose
// shopper is not logged in. Transport layers map it to 401 / Unauthenticated.
var errUnauthenticated = errors.New("session is not authenticated")

// notFound wraps sql.ErrNoRows with the missing record's description.
func notFound(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, sql.ErrNoRows)...)
}

// found describes a store lookup error, turning a miss into a not-found
// error that names the record.
func found(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("%s %s", what, id)
	}
	if err != nil {
		return fmt.Errorf("get %s %s: %w", what, id, err)
	}
	return nil
}

func requireOrganization(ctx context.Context, st store.Store, id string) error {
	_, err := st.GetOrganization(ctx, id)
	return found(err, "organization", id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- Sessions ---

func (s *Server) createSession(ctx context.Context) (*model.SessionSnapshot, error) {
	id, err := idgen.Session()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &model.Session{ID: id, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	s.touch(id, "", "session.create")
	return sess.Snapshot(), nil
}

func (s *Server) getSession(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	if id == "" {
		return nil, inputError("session id is required")
	}
	sess, err := s.store.GetSession(ctx, id)
	if err = found(err, "session", id); err != nil {
		return nil, err
	}
	s.touch(id, sess.Email, "session.get")
	return sess.Snapshot(), nil
}

type updateProfileInput struct {
	Email         string `json:"email"`
	Authenticated bool   `json:"authenticated"`
}

// updateSessionProfile sets the profile claims of a session and announces
// the change on orgwidget.session.changed.
func (s *Server) updateSessionProfile(ctx context.Context, id string, in updateProfileInput) (*model.SessionSnapshot, error) {
	if id == "" {
		return nil, inputError("session id is required")
	}
	email := normalizeEmail(in.Email)
	if in.Authenticated && email == "" {
		return nil, inputError("email is required to authenticate a session")
	}

	sess, err := s.store.GetSession(ctx, id)
	if err = found(err, "session", id); err != nil {
		return nil, err
	}
	if email != "" {
		sess.Email = email
	}
	sess.Authenticated = in.Authenticated
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session %s: %w", id, err)
	}

	reason := "logout"
	if sess.Authenticated {
		reason = "login"
	}
	snap := sess.Snapshot()
	s.touch(id, sess.Email, "session.profile")
	s.publish(ctx, events.TopicSessionChanged, events.SessionChanged{Session: snap, Reason: reason})
	return snap, nil
}

// expireSession logs out a session the presence reaper found idle.
func (s *Server) expireSession(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		s.logger.Warn("expire session: lookup failed", "session_id", id, "error", err)
		return
	}
	if !sess.Authenticated {
		return
	}
	sess.Authenticated = false
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		s.logger.Warn("expire session: update failed", "session_id", id, "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementSessionsExpired()
	}
	s.publish(ctx, events.TopicSessionChanged, events.SessionChanged{Session: sess.Snapshot(), Reason: "expired"})
}

// --- Storefront lookups ---

// sessionUser resolves the directory binding of the shopper logged in on
// sessionID.
func (s *Server) sessionUser(ctx context.Context, sessionID, action string) (*model.User, error) {
	if sessionID == "" {
		return nil, notFound("no session")
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err = found(err, "session", sessionID); err != nil {
		return nil, err
	}
	s.touch(sessionID, sess.Email, action)
	if !sess.Authenticated || sess.Email == "" {
		return nil, errUnauthenticated
	}
	u, err := s.store.GetUserByEmail(ctx, sess.Email)
	if err = found(err, "organization binding for", sess.Email); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Server) checkUserPermission(ctx context.Context, sessionID string) (*model.Permission, error) {
	u, err := s.sessionUser(ctx, sessionID, "lookup.permission")
	if err != nil {
		return nil, err
	}
	role, err := s.store.GetRole(ctx, u.RoleID)
	if err = found(err, "role", u.RoleID); err != nil {
		return nil, err
	}
	return model.PermissionFor(role), nil
}

func (s *Server) storefrontOrganization(ctx context.Context, sessionID string) (*model.Organization, error) {
	u, err := s.sessionUser(ctx, sessionID, "lookup.organization")
	if err != nil {
		return nil, err
	}
	org, err := s.store.GetOrganization(ctx, u.OrganizationID)
	if err = found(err, "organization", u.OrganizationID); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Server) storefrontCostCenter(ctx context.Context, sessionID string) (*model.CostCenter, error) {
	u, err := s.sessionUser(ctx, sessionID, "lookup.cost_center")
	if err != nil {
		return nil, err
	}
	cc, err := s.store.GetCostCenter(ctx, u.CostCenterID)
	if err = found(err, "cost center", u.CostCenterID); err != nil {
		return nil, err
	}
	return cc, nil
}

// --- Directory ---

type createOrganizationInput struct {
	Name   string                   `json:"name"`
	Status model.OrganizationStatus `json:"status"`
}

func (s *Server) createOrganization(ctx context.Context, in createOrganizationInput) (*model.Organization, error) {
	if in.Status == "" {
		in.Status = model.OrganizationActive
	}
	now := time.Now().UTC()
	org := &model.Organization{
		Name:      strings.TrimSpace(in.Name),
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := model.ValidateOrganization(org); err != nil {
		return nil, err
	}
	id, err := idgen.Generate(idgen.PrefixOrganization)
	if err != nil {
		return nil, err
	}
	org.ID = id
	if err := s.store.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicOrganizationUpdated, events.OrganizationUpdated{Organization: org})
	return org, nil
}

func (s *Server) updateOrganizationStatus(ctx context.Context, id string, status model.OrganizationStatus) (*model.Organization, error) {
	if !status.IsValid() {
		return nil, inputError(fmt.Sprintf("invalid status %q", status))
	}
	org, err := s.store.UpdateOrganizationStatus(ctx, id, status)
	if err = found(err, "organization", id); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicOrganizationUpdated, events.OrganizationUpdated{Organization: org})
	return org, nil
}

func (s *Server) createCostCenter(ctx context.Context, organizationID, name string) (*model.CostCenter, error) {
	cc := &model.CostCenter{
		OrganizationID: organizationID,
		Name:           strings.TrimSpace(name),
		CreatedAt:      time.Now().UTC(),
	}
	if err := model.ValidateCostCenter(cc); err != nil {
		return nil, err
	}
	id, err := idgen.Generate(idgen.PrefixCostCenter)
	if err != nil {
		return nil, err
	}
	cc.ID = id

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := requireOrganization(ctx, tx, organizationID); err != nil {
			return err
		}
		return tx.CreateCostCenter(ctx, cc)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicCostCenterCreated, events.CostCenterCreated{CostCenter: cc})
	return cc, nil
}

func (s *Server) listCostCenters(ctx context.Context, organizationID string) ([]*model.CostCenter, error) {
	if err := requireOrganization(ctx, s.store, organizationID); err != nil {
		return nil, err
	}
	return s.store.ListCostCenters(ctx, organizationID)
}

type setUserInput struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
	CostCenterID   string `json:"cost_center_id"`
	RoleID         string `json:"role_id"`
}

// setUser binds an email to an organization, one of its cost centers and a
// role, replacing any previous binding for the same email.
func (s *Server) setUser(ctx context.Context, in setUserInput) (*model.User, error) {
	u := &model.User{
		Email:          normalizeEmail(in.Email),
		Name:           strings.TrimSpace(in.Name),
		OrganizationID: in.OrganizationID,
		CostCenterID:   in.CostCenterID,
		RoleID:         in.RoleID,
	}
	if err := model.ValidateUser(u); err != nil {
		return nil, err
	}
	id, err := idgen.Generate(idgen.PrefixUser)
	if err != nil {
		return nil, err
	}
	u.ID = id

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := requireOrganization(ctx, tx, u.OrganizationID); err != nil {
			return err
		}
		cc, err := tx.GetCostCenter(ctx, u.CostCenterID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && cc.OrganizationID != u.OrganizationID) {
			return inputError(fmt.Sprintf("cost center %s does not belong to organization %s", u.CostCenterID, u.OrganizationID))
		}
		if err != nil {
			return fmt.Errorf("get cost center %s: %w", u.CostCenterID, err)
		}
		if _, err := tx.GetRole(ctx, u.RoleID); errors.Is(err, sql.ErrNoRows) {
			return inputError(fmt.Sprintf("unknown role %q", u.RoleID))
		} else if err != nil {
			return fmt.Errorf("get role %s: %w", u.RoleID, err)
		}
		return tx.UpsertUser(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicUserUpdated, events.UserUpdated{User: u})
	return u, nil
}

// broadcastEvent fans out an event to SSE clients.
func (s *Server) broadcastEvent(topic string, event any) {
	if s.sseHub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal event for SSE broadcast", "topic", topic, "error", err)
		return
	}
	var key string
	if sc, ok := event.(events.SessionChanged); ok && sc.Session != nil {
		key = sc.Session.ID
	}
	s.sseHub.broadcast(topic, key, payload)
}
