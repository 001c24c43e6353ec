package template

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

const (
	templateDir string = "tmpl"
	partialDir  string = "tmpl/partials"
	baseName    string = "base.html"
)

// Data is what every page receives. Page holds the page specific view.
type Data struct {
	PageTitle string
	User      any
	Flashes   any
	CSRFField template.HTML
	CSRFToken string
	Page      any
}

// Renderer holds one parsed template set per page, each combined with the
// base layout and the shared partials.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"day": func(t time.Time) string {
		return t.Local().Format("Monday, January 2, 2006")
	},
	"clock": func(t time.Time) string {
		return t.Local().Format("3:04 PM")
	},
	"initial": func(s string) string {
		for _, r := range s {
			return strings.ToUpper(string(r))
		}
		return "?"
	},
}

func New(fsys fs.FS) (*Renderer, error) {
	partials, err := fs.Glob(fsys, partialDir+"/*.html")
	if err != nil {
		return nil, err
	}

	pages, err := fs.Glob(fsys, templateDir+"/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, p := range pages {
		name := path.Base(p)
		if name == baseName {
			continue
		}

		// the page goes last so its blocks override the layout defaults
		files := append([]string{templateDir + "/" + baseName}, partials...)
		files = append(files, p)
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}

	return r, nil
}

// Render writes page tmpl with status. Output is buffered so a template
// error never leaves a half written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, tmpl string, td any) error {
	t, ok := r.pages[tmpl]
	if !ok {
		return fmt.Errorf("unknown template %q", tmpl)
	}

	buf := &bytes.Buffer{}

	err := t.ExecuteTemplate(buf, baseName, td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// Partial executes a named block from the partials without the layout.
func (r *Renderer) Partial(w io.Writer, block string, data any) error {
	for _, t := range r.pages {
		if t.Lookup(block) == nil {
			return fmt.Errorf("unknown partial %q", block)
		}

		buf := &bytes.Buffer{}
		if err := t.ExecuteTemplate(buf, block, data); err != nil {
			return err
		}
		_, err := buf.WriteTo(w)
		return err
	}
	return fmt.Errorf("no templates loaded")
}
