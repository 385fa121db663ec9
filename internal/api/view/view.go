package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/edvin/clustertemplates/internal/api/request"
	"github.com/edvin/clustertemplates/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Form is the cluster form page, optionally decorated with the errors of
// a rejected submission.
type Form struct {
	Form     request.ClusterForm
	Errors   []string
	Editions []model.Edition
}

// Result is the page shown after a template has been uploaded.
type Result struct {
	TemplateURL string
}

func RenderForm(w io.Writer, f Form) error {
	if f.Editions == nil {
		f.Editions = model.Editions
	}
	return pages.ExecuteTemplate(w, "index.html", f)
}

func RenderResult(w io.Writer, r Result) error {
	return pages.ExecuteTemplate(w, "result.html", r)
}
