// Package widget implements the organization status widget: an
// authentication-gated aggregation of three storefront lookups reduced to
// a single View that is either Hidden or Shown.
//
// A render cycle reads the session snapshot, writes the derived auth flag
// (only when a snapshot exists), reads the flag back, gates the lookups on
// it and hands everything to Decide. Evaluate runs one blocking cycle; Run
// drives cycles from triggers without blocking on lookups.
package widget

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/authflag"
	"github.com/alfredjeanlab/orgwidget/internal/session"
)

// Lookup names used in logs and metrics.
const (
	LookupPermission   = "permission"
	LookupOrganization = "organization"
	LookupCostCenter   = "cost_center"
)

// Metrics receives widget telemetry.
type Metrics interface {
	ObserveEvaluation(state State)
	ObserveLookup(name, outcome string, d time.Duration)
	ObserveStaleResult(name string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveEvaluation(State)                     {}
func (noopMetrics) ObserveLookup(string, string, time.Duration) {}
func (noopMetrics) ObserveStaleResult(string)                   {}

// Widget wires the flag store, session observer and lookups together.
type Widget struct {
	flag     *authflag.Store
	observer session.Observer
	fetchers Fetchers
	rootPath string
	logger   *slog.Logger
	metrics  Metrics
}

// Option configures a Widget.
type Option func(*Widget)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) { w.logger = l }
}

// WithMetrics sets the telemetry sink.
func WithMetrics(m Metrics) Option {
	return func(w *Widget) { w.metrics = m }
}

// New creates a Widget. rootPath prefixes the manage link and may be empty.
func New(flag *authflag.Store, observer session.Observer, fetchers Fetchers, rootPath string, opts ...Option) *Widget {
	w := &Widget{
		flag:     flag,
		observer: observer,
		fetchers: fetchers,
		rootPath: rootPath,
		logger:   slog.Default(),
		metrics:  noopMetrics{},
	}
	for _, o := range opts {
		o(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.metrics == nil {
		w.metrics = noopMetrics{}
	}
	return w
}

// RootPath returns the storefront root path.
func (w *Widget) RootPath() string { return w.rootPath }

// syncFlag records the current session's claim, if a snapshot has loaded,
// and returns the flag. A missing snapshot never overwrites the flag.
func (w *Widget) syncFlag() bool {
	if snap := w.observer.CurrentSnapshot(); snap != nil {
		w.flag.Write(session.IsAuthenticated(snap))
	}
	return w.flag.Read()
}

// Evaluate runs one render cycle, waiting for the lookups.
func (w *Widget) Evaluate(ctx context.Context) View {
	auth := w.syncFlag()
	r := Resolve(ctx, !auth, w.instrumented())
	v := Decide(InputsFrom(auth, r), w.rootPath)
	w.metrics.ObserveEvaluation(v.State)
	w.logger.Debug("widget evaluated",
		"authenticated", auth,
		"state", v.State,
		"permission", r.Permission.State,
		"organization", r.Organization.State,
		"cost_center", r.CostCenter.State)
	return v
}

// instrumented wraps the lookups with timing and logging.
func (w *Widget) instrumented() Fetchers {
	return Fetchers{
		Permission:   timed(w, LookupPermission, w.fetchers.Permission),
		Organization: timed(w, LookupOrganization, w.fetchers.Organization),
		CostCenter:   timed(w, LookupCostCenter, w.fetchers.CostCenter),
	}
}

func timed[T any](w *Widget, name string, l Lookup[T]) Lookup[T] {
	if l == nil {
		return nil
	}
	return func(ctx context.Context) (*T, error) {
		start := time.Now()
		v, err := l(ctx)
		outcome := "ok"
		switch {
		case errors.Is(err, context.Canceled):
			outcome = "canceled"
		case err != nil:
			outcome = "error"
			w.logger.Debug("widget lookup failed", "lookup", name, "err", err)
		case v == nil:
			outcome = "not_found"
		}
		w.metrics.ObserveLookup(name, outcome, time.Since(start))
		return v, err
	}
}
