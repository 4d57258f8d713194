package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"todo-web/app/services"
	"todo-web/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TodoController handles HTTP requests for to-do items.
type TodoController struct {
	Store  services.TodoStore
	Views  *views.Renderer
	Logger *zap.Logger
}

// NewTodoController creates a new TodoController.
func NewTodoController(store services.TodoStore, renderer *views.Renderer, logger *zap.Logger) *TodoController {
	return &TodoController{Store: store, Views: renderer, Logger: logger}
}

// Index handles GET and POST /. A POST with both title and desc inserts one
// item and redirects; a POST missing either falls through to the list.
func (c *TodoController) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			c.renderError(w, http.StatusBadRequest, "Bad Request", "The submitted form could not be read.")
			return
		}

		title := r.PostForm.Get("title")
		desc := r.PostForm.Get("desc")
		if title != "" && desc != "" {
			todo, err := c.Store.Create(r.Context(), title, desc)
			if err != nil {
				c.internalError(w, err)
				return
			}
			c.Logger.Debug("Created todo", zap.Uint("sno", todo.SNo))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	todos, err := c.Store.List(r.Context())
	if err != nil {
		c.internalError(w, err)
		return
	}
	c.page(w, func(w io.Writer) error { return c.Views.Index(w, todos) })
}

// Update handles GET and POST /update/{sno}.
func (c *TodoController) Update(w http.ResponseWriter, r *http.Request) {
	sno, ok := c.serialNumber(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			c.renderError(w, http.StatusBadRequest, "Bad Request", "The submitted form could not be read.")
			return
		}

		var changes services.TodoChanges
		if values, present := r.PostForm["title"]; present {
			changes.Title = &values[0]
		}
		if values, present := r.PostForm["desc"]; present {
			changes.Desc = &values[0]
		}

		if _, err := c.Store.Update(r.Context(), sno, changes); err != nil {
			c.storeError(w, err)
			return
		}
		c.Logger.Debug("Updated todo", zap.Uint("sno", sno))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	todo, err := c.Store.Get(r.Context(), sno)
	if err != nil {
		c.storeError(w, err)
		return
	}
	c.page(w, func(w io.Writer) error { return c.Views.Update(w, todo) })
}

// Delete handles GET /delete/{sno}.
func (c *TodoController) Delete(w http.ResponseWriter, r *http.Request) {
	sno, ok := c.serialNumber(w, r)
	if !ok {
		return
	}

	if err := c.Store.Delete(r.Context(), sno); err != nil {
		c.storeError(w, err)
		return
	}
	c.Logger.Debug("Deleted todo", zap.Uint("sno", sno))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// About handles GET /about.
func (c *TodoController) About(w http.ResponseWriter, r *http.Request) {
	c.page(w, c.Views.About)
}

// NotFound renders the not-found page for unmatched routes.
func (c *TodoController) NotFound(w http.ResponseWriter, r *http.Request) {
	c.renderError(w, http.StatusNotFound, "Not Found", "The page you asked for does not exist.")
}

// Health handles GET /healthz.
func (c *TodoController) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := c.Store.Ping(r.Context()); err != nil {
		c.Logger.Warn("Health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(err.Error()))
		return
	}
	w.Write([]byte("ok"))
}

func (c *TodoController) serialNumber(w http.ResponseWriter, r *http.Request) (uint, bool) {
	sno, err := strconv.ParseUint(mux.Vars(r)["sno"], 10, 64)
	if err != nil {
		c.NotFound(w, r)
		return 0, false
	}
	return uint(sno), true
}

func (c *TodoController) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrNotFound) {
		c.renderError(w, http.StatusNotFound, "Not Found", "That todo does not exist.")
		return
	}
	c.internalError(w, err)
}

func (c *TodoController) internalError(w http.ResponseWriter, err error) {
	c.Logger.Error("Request failed", zap.Error(err))
	c.renderError(w, http.StatusInternalServerError, "Internal Server Error", "Something went wrong. Please try again.")
}

func (c *TodoController) renderError(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Views.Error(w, status, title, message); err != nil {
		c.Logger.Error("Failed to render error page", zap.Error(err))
	}
}

// page renders a full page. Views write nothing on failure, so the
// error page can still be sent.
func (c *TodoController) page(w http.ResponseWriter, render func(io.Writer) error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render(w); err != nil {
		c.internalError(w, err)
	}
}
