package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/alfredjeanlab/orgwidget/internal/ui"
	"github.com/alfredjeanlab/orgwidget/internal/widget"
)

// Text renders the widget as a few terminal lines.
type Text struct {
	Styler ui.Styler
}

func (Text) ContentType() string { return "text/plain; charset=utf-8" }

func (t Text) Render(w io.Writer, v widget.View, l widget.Localizer) error {
	m := Localize(v, l)
	if !m.Visible {
		return nil
	}
	s := t.Styler

	var b strings.Builder
	org := s.Bold(m.Organization.Text())
	if st := m.Organization.Status; st != nil && st.Label != "" {
		org += " " + s.Tone(st.Tone, "["+st.Label+"]")
	}
	b.WriteString(org + "\n")
	b.WriteString(m.CostCenter.Text() + "\n")
	b.WriteString(m.Role.Text() + "\n")
	fmt.Fprintf(&b, "%s %s\n", s.Accent(m.Action.Label), s.Muted("("+m.Action.Path+")"))

	_, err := io.WriteString(w, b.String())
	return err
}
