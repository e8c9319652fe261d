package dashboard

import (
	"embed"
	"fmt"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html templates/**/*.html
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded templates rooted at the templates directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(fmt.Errorf("dashboard: failed to prepare embedded templates: %w", err))
	}
	return sub
}

// NewTemplateRenderer creates a go-template renderer backed by the embedded
// templates. It does not touch the working directory.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(TemplatesFS()),
		template.WithExtension(".html"),
	)
}
