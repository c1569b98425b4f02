package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/orgwidget/internal/authflag"
	"github.com/alfredjeanlab/orgwidget/internal/i18n"
	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/render"
	"github.com/alfredjeanlab/orgwidget/internal/session"
	"github.com/alfredjeanlab/orgwidget/internal/ui"
	"github.com/alfredjeanlab/orgwidget/internal/widget"
)

// SessionCookie carries the storefront session for GET /widget when the
// request has no X-Session-ID header.
const SessionCookie = "orgwidget_session"

// handleWidget handles GET /widget. It renders the organization widget for
// the requesting shopper as an HTML fragment. The auth flag is kept in a
// cookie, so a shopper whose session cannot be read still gets the widget
// their last response decided on.
func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	id := sessionID(r)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}

	var snap *model.SessionSnapshot
	if id != "" {
		var err error
		snap, err = s.getSession(ctx, id)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("widget: session unavailable", "session_id", id, "error", err)
		}
	}

	root := s.widget.RootPath
	if q.Has("root") {
		root = q.Get("root")
	}

	opts := []widget.Option{widget.WithLogger(s.logger)}
	if s.metrics != nil {
		opts = append(opts, widget.WithMetrics(s.metrics))
	}
	flag := authflag.New(authflag.NewCookieStorage(w, r, s.widget.SecureCookies), s.widget.Namespace, s.logger)
	view := widget.New(flag, session.Static{Snapshot: snap}, s.localFetchers(id), root, opts...).Evaluate(ctx)

	var loc *i18n.Localizer
	if s.bundle != nil {
		loc = s.bundle.Localizer(q.Get("lang"), r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", loc.Tag().String())
	}

	renderer, _ := render.New(render.FormatHTML, ui.Plain)
	var buf bytes.Buffer
	if err := renderer.Render(&buf, view, loc); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Add("Vary", "Cookie, Accept-Language")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// localFetchers serves the widget lookups straight from the core methods.
// A missing record becomes a nil value, any other failure an error.
func (s *Server) localFetchers(sessionID string) widget.Fetchers {
	return widget.Fetchers{
		Permission: func(ctx context.Context) (*model.Permission, error) {
			return missingAsNil(s.checkUserPermission(ctx, sessionID))
		},
		Organization: func(ctx context.Context) (*model.Organization, error) {
			return missingAsNil(s.storefrontOrganization(ctx, sessionID))
		},
		CostCenter: func(ctx context.Context) (*model.CostCenter, error) {
			return missingAsNil(s.storefrontCostCenter(ctx, sessionID))
		},
	}
}

func missingAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}
