// Package web holds the HTML templates and stylesheet compiled into the
// binary. A TEMPLATES_PATH or STATIC_PATH on disk overrides them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the page templates from dir, or from the embedded copy
// when dir is empty.
func Templates(dir string, funcs template.FuncMap) (*template.Template, error) {
	tmpl := template.New("").Funcs(funcs)
	if dir != "" {
		parsed, err := tmpl.ParseGlob(dir + "/*.html")
		if err != nil {
			return nil, fmt.Errorf("parse templates in %s: %w", dir, err)
		}
		return parsed, nil
	}

	parsed, err := tmpl.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}
	return parsed, nil
}

// Static returns the stylesheet directory. A path that does not exist falls
// back to the embedded assets.
func Static(dir string) http.FileSystem {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return http.Dir(dir)
		}
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
