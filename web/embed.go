// Package web embeds the label form page and its static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/index.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// PageData is rendered into the form page
type PageData struct {
	// APIBase is the path prefix of the lookup endpoints, e.g. /api
	APIBase string
	// PostalURLTemplate is the postal lookup URL with {cep} in place of the code
	PostalURLTemplate string
}

// IndexTemplate parses the form page
func IndexTemplate() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/index.html")
}

// Static returns the files served under /static
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
