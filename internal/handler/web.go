package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
	"github.com/BuzzLyutic/taskboard/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// listLimit caps the HTML list page.
const listLimit = 100

var pages = parsePages("list", "detail", "form", "confirm_delete", "not_found")

func parsePages(names ...string) map[string]*template.Template {
	funcs := template.FuncMap{
		"statusLabel": func(s model.Status) string { return s.Label() },
	}

	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.New("base.html").Funcs(funcs).
			ParseFS(templateFS, "templates/base.html", "templates/"+name+".html"))
	}
	return out
}

// WebHandler serves the server-rendered task pages.
type WebHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewWebHandler(srv *service.TaskService, logger *zap.Logger) *WebHandler {
	return &WebHandler{
		service: srv,
		logger:  logger,
	}
}

type formPage struct {
	Heading  string
	Action   string
	Fields   model.TaskFields
	Errors   map[string]string
	Statuses []model.Status
}

func (h *WebHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context(), model.TaskFilter{}, listLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "list", tasks)
}

func (h *WebHandler) Detail(w http.ResponseWriter, r *http.Request) {
	task, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "detail", task)
}

func (h *WebHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "form", formPage{
		Heading:  "Create Task",
		Action:   "/create/",
		Fields:   model.TaskFields{Status: string(model.StatusPending)},
		Statuses: model.Statuses,
	})
}

func (h *WebHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.readForm(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Create(r.Context(), fields, ""); err != nil {
		h.formError(w, r, err, formPage{Heading: "Create Task", Action: "/create/", Fields: fields})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	task, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "form", formPage{
		Heading:  "Update Task",
		Action:   fmt.Sprintf("/%d/update/", task.ID),
		Fields:   model.TaskPatch{}.Apply(task),
		Statuses: model.Statuses,
	})
}

func (h *WebHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	fields, ok := h.readForm(w, r)
	if !ok {
		return
	}

	task, err := h.service.Update(r.Context(), id, fields.Patch())
	if err != nil {
		h.formError(w, r, err, formPage{Heading: "Update Task", Action: fmt.Sprintf("/%d/update/", id), Fields: fields})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/%d/", task.ID), http.StatusSeeOther)
}

func (h *WebHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	task, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "confirm_delete", task)
}

func (h *WebHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) readForm(w http.ResponseWriter, r *http.Request) (model.TaskFields, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return model.TaskFields{}, false
	}
	return model.TaskFields{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		DueDate:     r.PostForm.Get("due_date"),
		Status:      r.PostForm.Get("status"),
	}, true
}

// formError re-renders the form with field messages, or fails the request
// when err is not a validation problem.
func (h *WebHandler) formError(w http.ResponseWriter, r *http.Request, err error, page formPage) {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		h.fail(w, r, err)
		return
	}
	page.Errors = verr.Fields
	page.Statuses = model.Statuses
	h.render(w, http.StatusOK, "form", page)
}

func (h *WebHandler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func (h *WebHandler) load(w http.ResponseWriter, r *http.Request) (model.Task, bool) {
	id, ok := h.id(w, r)
	if !ok {
		return model.Task{}, false
	}
	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return model.Task{}, false
	}
	return task, true
}

func (h *WebHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "not_found", r.URL.Path)
}

func (h *WebHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repo.ErrorNotFound) {
		h.NotFound(w, r)
		return
	}
	h.logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// render buffers the page; a template error is answered with 500 instead.
func (h *WebHandler) render(w http.ResponseWriter, code int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages[name].Execute(&buf, data); err != nil {
		h.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w)
}
