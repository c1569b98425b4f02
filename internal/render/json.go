package render

import (
	"encoding/json"
	"io"

	"github.com/alfredjeanlab/orgwidget/internal/widget"
)

// JSON renders the localized model as a single JSON document.
type JSON struct{}

func (JSON) ContentType() string { return "application/json" }

func (JSON) Render(w io.Writer, v widget.View, l widget.Localizer) error {
	return json.NewEncoder(w).Encode(Localize(v, l))
}
