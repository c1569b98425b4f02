package render

import (
	"html/template"
	"io"

	"github.com/alfredjeanlab/orgwidget/internal/widget"
)

// CSS handles carried by the fragment so storefront themes can style it.
const (
	HandleContainer = "userWidgetContainer"
	HandleItem      = "userWidgetItem"
	HandleButton    = "userWidgetButton"
)

var fragment = template.Must(template.New("widget").Parse(`{{if .Visible -}}
<div class="` + HandleContainer + `">
  <div class="` + HandleItem + `">{{.Organization.Text}}{{with .Organization.Status}}{{if .Label}} <span class="userWidgetTag userWidgetTag--{{.Tone}}">{{.Label}}</span>{{end}}{{end}}</div>
  <div class="` + HandleItem + `">{{.CostCenter.Text}}</div>
  <div class="` + HandleItem + `">{{.Role.Text}}</div>
  <div class="` + HandleButton + `"><a href="{{.Action.Path}}">{{.Action.Label}}</a></div>
</div>
{{end}}`))

// HTML renders the widget as an HTML fragment for server-side embedding.
type HTML struct{}

func (HTML) ContentType() string { return "text/html; charset=utf-8" }

func (HTML) Render(w io.Writer, v widget.View, l widget.Localizer) error {
	return fragment.Execute(w, Localize(v, l))
}
