package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"reportnotifier/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTemplate is the email body template used by the dispatcher.
const DefaultTemplate = "notification.html"

// bodyData is the context passed into the email body template. Table is
// template.HTML because the fragment was already escaped cell-by-cell when
// it was built; re-escaping would mangle the markup.
type bodyData struct {
	Caption  string
	Body     string
	Addendum *string
	Table    template.HTML
}

// Renderer renders email bodies from the embedded template set. Templates
// are parsed once at construction; a Renderer is read-only afterwards and
// safe to reuse across the lifetime of a worker instance.
//
// Construction failure leaves the dispatcher without a renderer, in which
// case every render degrades to an absent body rather than aborting the
// dispatch.
type Renderer struct {
	templates *template.Template
	logger    types.Logger
}

// NewRenderer parses the embedded templates and returns a Renderer.
func NewRenderer(logger types.Logger) (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to parse templates: %w", err)
	}
	return &Renderer{templates: t, logger: logger}, nil
}

// Render executes the named template with the process text and the table
// fragment. An empty tableHTML renders a body without a table section.
//
// Returns ErrCodeTemplateNotFound for an unknown template name and
// ErrCodeTemplateRender for execution failures; callers treat both as an
// absent body.
func (r *Renderer) Render(name string, process *types.Process, tableHTML string) (string, error) {
	tmpl := r.templates.Lookup(name)
	if tmpl == nil {
		return "", types.NewAppError(types.ErrCodeTemplateNotFound,
			fmt.Sprintf("template %q not found", name), nil)
	}

	data := bodyData{
		Caption:  process.EmailSubject,
		Body:     process.EmailBody,
		Addendum: process.EmailAddendum,
		Table:    template.HTML(tableHTML),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", types.NewAppError(types.ErrCodeTemplateRender,
			fmt.Sprintf("failed to render template %q", name), err)
	}

	return buf.String(), nil
}
