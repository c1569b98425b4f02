// Package render turns a widget.View into terminal text, an HTML fragment
// or JSON. A Hidden view renders as nothing (or {"visible":false} in JSON).
package render

import (
	"fmt"
	"io"

	"github.com/alfredjeanlab/orgwidget/internal/ui"
	"github.com/alfredjeanlab/orgwidget/internal/widget"
)

// Renderer writes a view.
type Renderer interface {
	Render(w io.Writer, v widget.View, l widget.Localizer) error
	ContentType() string
}

// Formats accepted by New.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
)

// New returns the renderer for format. styler only affects text output.
func New(format string, styler ui.Styler) (Renderer, error) {
	switch format {
	case "", FormatText:
		return Text{Styler: styler}, nil
	case FormatHTML:
		return HTML{}, nil
	case FormatJSON:
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, html or json)", format)
	}
}

// Model is the localized, presentation-ready form of a Shown view.
type Model struct {
	Visible      bool    `json:"visible"`
	Organization *Item   `json:"organization,omitempty"`
	CostCenter   *Item   `json:"cost_center,omitempty"`
	Role         *Item   `json:"role,omitempty"`
	Action       *Action `json:"action,omitempty"`
}

// Item is one labelled entry of the widget.
type Item struct {
	Label  string  `json:"label"`
	Name   string  `json:"name"`
	Status *Status `json:"status,omitempty"`
}

// Text returns "<label> <name>".
func (i *Item) Text() string {
	if i.Label == "" {
		return i.Name
	}
	return i.Label + " " + i.Name
}

// Status is the organization status tag.
type Status struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Tone   string `json:"tone"`
}

// Action is the manage-organization link.
type Action struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Localize builds the presentation model for v.
func Localize(v widget.View, l widget.Localizer) Model {
	if !v.Visible() {
		return Model{}
	}
	c := v.Content
	tr := func(id string) string {
		if l == nil {
			return ""
		}
		return l.Localize(id)
	}

	org := &Item{Label: tr(widget.MsgOrganization), Name: c.OrganizationName}
	if c.Status.Tagged() {
		org.Status = &Status{
			Status: string(c.Status.Status),
			Label:  c.Status.Label(l),
			Tone:   string(c.Status.Tone),
		}
	}
	return Model{
		Visible:      true,
		Organization: org,
		CostCenter:   &Item{Label: tr(widget.MsgCostCenter), Name: c.CostCenterName},
		Role:         &Item{Label: tr(widget.MsgRole), Name: c.RoleName},
		Action:       &Action{Label: tr(c.Action.MessageID), Path: c.Action.Path},
	}
}
