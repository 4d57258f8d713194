// Package views renders the server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"todo-web/app/models"

	"github.com/yuin/goldmark"
)

//go:embed templates
var templateFS embed.FS

// TimeLayout is how creation times are shown.
const TimeLayout = "2006-01-02 15:04:05"

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"formatTime": func(t time.Time) string {
		return t.Local().Format(TimeLayout)
	},
}

// IndexPage is the list page with the create form.
type IndexPage struct {
	Title string
	Todos []models.Todo
}

// UpdatePage is the edit form for one item.
type UpdatePage struct {
	Title string
	Todo  *models.Todo
}

// AboutPage carries the pre-rendered about body.
type AboutPage struct {
	Title string
	Body  template.HTML
}

// ErrorPage is shown for 404 and 500 responses.
type ErrorPage struct {
	Title   string
	Status  int
	Message string
}

// Renderer holds the parsed page templates. It is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
	about template.HTML
}

// New parses every page template and renders the about page markdown.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, name := range []string{"index", "update", "about", "error"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	src, err := templateFS.ReadFile("templates/about.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read about page: %w", err)
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("failed to render about page: %w", err)
	}
	r.about = template.HTML(buf.String())

	return r, nil
}

// Index renders the list page.
func (r *Renderer) Index(w io.Writer, todos []models.Todo) error {
	return r.render(w, "index", IndexPage{Title: "Home", Todos: todos})
}

// Update renders the edit form.
func (r *Renderer) Update(w io.Writer, todo *models.Todo) error {
	return r.render(w, "update", UpdatePage{Title: "Update", Todo: todo})
}

// About renders the about page.
func (r *Renderer) About(w io.Writer) error {
	return r.render(w, "about", AboutPage{Title: "About", Body: r.about})
}

// Error renders an error page for status.
func (r *Renderer) Error(w io.Writer, status int, title, message string) error {
	return r.render(w, "error", ErrorPage{Title: title, Status: status, Message: message})
}

// render executes into a buffer first so a template failure never leaves
// a half-written page.
func (r *Renderer) render(w io.Writer, page string, data any) error {
	var buf bytes.Buffer
	if err := r.pages[page].ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
