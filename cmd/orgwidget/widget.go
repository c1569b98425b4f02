package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/authflag"
	"github.com/alfredjeanlab/orgwidget/internal/config"
	"github.com/alfredjeanlab/orgwidget/internal/i18n"
	"github.com/alfredjeanlab/orgwidget/internal/render"
	"github.com/alfredjeanlab/orgwidget/internal/session"
	"github.com/alfredjeanlab/orgwidget/internal/ui"
	"github.com/alfredjeanlab/orgwidget/internal/widget"
	"github.com/spf13/cobra"
)

// flagTTL bounds how long a shared redis flag outlives its last write.
const flagTTL = 24 * time.Hour

// widgetRun is everything a show or watch invocation needs.
type widgetRun struct {
	widget    *widget.Widget
	source    *session.Source
	flag      *authflag.Store
	renderer  render.Renderer
	localizer widget.Localizer
	closers   []func() error
}

func (r *widgetRun) render(w io.Writer, v widget.View) error {
	return r.renderer.Render(w, v, r.localizer)
}

func (r *widgetRun) Close() {
	for _, c := range r.closers {
		if err := c(); err != nil {
			logger.Debug("close failed", "err", err)
		}
	}
}

// addWidgetFlags registers the flags shared by show and watch.
func addWidgetFlags(cmd *cobra.Command) {
	cmd.Flags().String("session", "", "storefront session ID (default $ORGWIDGET_SESSION_ID; a new one is created when empty)")
	cmd.Flags().String("format", render.FormatText, "output format: text, html or json")
	cmd.Flags().String("root", "", "storefront root path (default $ORGWIDGET_ROOT_PATH)")
	cmd.Flags().String("lang", "", "display language (default $ORGWIDGET_LOCALE)")
}

// newWidgetRun resolves the session, opens the flag storage and builds the
// widget. The session snapshot is loaded once; a failed load leaves it
// unset so the cached flag decides.
func newWidgetRun(ctx context.Context, cmd *cobra.Command) (*widgetRun, error) {
	cfg := *widgetCfg
	if v, _ := cmd.Flags().GetString("session"); v != "" {
		cfg.SessionID = v
	}
	if v, _ := cmd.Flags().GetString("root"); v != "" {
		cfg.RootPath = v
	}
	if v, _ := cmd.Flags().GetString("lang"); v != "" {
		cfg.Locale = v
	}
	format, _ := cmd.Flags().GetString("format")
	if jsonOutput {
		format = render.FormatJSON
	}

	renderer, err := render.New(format, ui.NewStyler(os.Stdout, noColor))
	if err != nil {
		return nil, err
	}
	bundle, err := i18n.NewBundle()
	if err != nil {
		return nil, err
	}

	sessionID, err := resolveSession(ctx, cfg.SessionID)
	if err != nil {
		return nil, err
	}

	storage, closer, err := openFlagStorage(ctx, &cfg, sessionID)
	if err != nil {
		return nil, err
	}
	run := &widgetRun{
		renderer:  renderer,
		localizer: bundle.Localizer(cfg.Locale),
	}
	if closer != nil {
		run.closers = append(run.closers, closer)
	}

	run.flag = authflag.New(storage, cfg.Namespace, logger)
	run.source = session.NewSource(storefront, sessionID, logger)
	if _, err := run.source.Refresh(ctx); err != nil {
		logger.Warn("session not loaded, using cached auth flag", "session_id", sessionID, "err", err)
	}
	run.widget = widget.New(run.flag, run.source, widget.NewFetchers(storefront, sessionID), cfg.RootPath, widget.WithLogger(logger))
	return run, nil
}

// resolveSession returns id, or creates a new anonymous session when id is empty.
func resolveSession(ctx context.Context, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	snap, err := storefront.CreateSession(ctx)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	logger.Info("created session", "session_id", snap.ID)
	fmt.Fprintf(os.Stderr, "Using new session %s (set ORGWIDGET_SESSION_ID to reuse it)\n", snap.ID)
	return snap.ID, nil
}

// openFlagStorage returns the key/value storage backing the auth flag and
// an optional close function.
func openFlagStorage(ctx context.Context, cfg *config.Widget, sessionID string) (authflag.Storage, func() error, error) {
	switch cfg.FlagStore {
	case config.FlagStoreMemory:
		return authflag.NewMemoryStorage(), nil, nil
	case config.FlagStoreRedis:
		rc, err := authflag.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		storage := authflag.NewRedisStorage(rc,
			authflag.WithPrefix("orgwidget:"+sessionID+":"),
			authflag.WithTTL(flagTTL))
		return storage, rc.Close, nil
	default:
		path := cfg.FlagFile
		if path == "" {
			p, err := authflag.DefaultFilePath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		return authflag.NewFileStorage(path), nil, nil
	}
}
