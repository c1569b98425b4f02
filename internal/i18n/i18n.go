// Package i18n resolves widget message identifiers to localized text using
// go-i18n bundles loaded from the embedded TOML catalogs.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	goi18n "github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// DefaultLanguage is used when nothing better matches.
var DefaultLanguage = language.English

// Bundle holds every loaded catalog.
type Bundle struct {
	bundle    *goi18n.Bundle
	supported []language.Tag
	matcher   language.Matcher
}

// NewBundle loads the embedded catalogs.
func NewBundle() (*Bundle, error) {
	bundle := goi18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("listing catalogs: %w", err)
	}
	for _, file := range files {
		data, err := locales.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", file, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(file)); err != nil {
			return nil, fmt.Errorf("parsing catalog %s: %w", file, err)
		}
	}

	// The default language must come first so the matcher falls back to it.
	supported := []language.Tag{DefaultLanguage}
	for _, tag := range bundle.LanguageTags() {
		if tag != DefaultLanguage {
			supported = append(supported, tag)
		}
	}
	return &Bundle{
		bundle:    bundle,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// Languages returns the catalog languages, default first.
func (b *Bundle) Languages() []language.Tag {
	return append([]language.Tag(nil), b.supported...)
}

// Match picks the best supported language for the given preferences,
// each either a BCP 47 tag or an Accept-Language header value.
func (b *Bundle) Match(prefs ...string) language.Tag {
	var candidates []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		candidates = append(candidates, tags...)
	}
	if len(candidates) == 0 {
		return DefaultLanguage
	}
	_, idx, _ := b.matcher.Match(candidates...)
	return b.supported[idx]
}

// Localizer returns a Localizer for the best match of prefs.
func (b *Bundle) Localizer(prefs ...string) *Localizer {
	tag := b.Match(prefs...)
	return &Localizer{
		localizer: goi18n.NewLocalizer(b.bundle, tag.String()),
		tag:       tag,
	}
}

// Localizer resolves message identifiers for one language.
type Localizer struct {
	localizer *goi18n.Localizer
	tag       language.Tag
}

// Tag returns the language this localizer resolves to.
func (l *Localizer) Tag() language.Tag { return l.tag }

// Localize returns the message text, or "" when the id is unknown.
func (l *Localizer) Localize(messageID string) string {
	if l == nil || messageID == "" {
		return ""
	}
	msg, err := l.localizer.Localize(&goi18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return ""
	}
	return msg
}
