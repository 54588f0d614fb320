package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var viewsFS embed.FS

var welcomeTmpl *template.Template

// loadTemplatesFromFS parses the page templates found under dir.
// Tests use it to feed broken filesystems.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	if tmpl.Lookup("welcome.html") == nil {
		return errors.New("welcome.html template missing")
	}
	welcomeTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call it once at startup and do
// not serve if it fails.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// WelcomeData is the view model for the landing page.
type WelcomeData struct {
	Title  string
	Routes []string
}

func RenderWelcome(w io.Writer, data WelcomeData) error {
	if welcomeTmpl == nil {
		return errors.New("welcome template not loaded: call views.LoadTemplates during startup")
	}
	return welcomeTmpl.ExecuteTemplate(w, "welcome.html", data)
}
