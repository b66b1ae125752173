package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/pkg/respond"
)

// NewRouter mounts the JSON API under /api and the HTML pages at the root.
// Trailing slashes are optional on every route.
func NewRouter(logger *zap.Logger, tasks *TaskHandler, imports *ImportHandler, web *WebHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.List)
			r.Post("/", tasks.Create)
			r.Get("/{id}", tasks.Get)
			r.Patch("/{id}", tasks.Update)
			r.Put("/{id}", tasks.Replace)
			r.Delete("/{id}", tasks.Delete)
		})
		r.Get("/stats", tasks.Stats)

		r.Post("/imports", imports.Submit)
		r.Get("/imports/{id}", imports.Get)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			respond.Error(w, r, http.StatusNotFound, "not found")
		})
	})

	// HTML
	r.Get("/", web.List)
	r.Get("/create", web.CreateForm)
	r.Post("/create", web.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", web.Detail)
		r.Get("/update", web.UpdateForm)
		r.Post("/update", web.Update)
		r.Get("/delete", web.DeleteForm)
		r.Post("/delete", web.Delete)
	})
	r.NotFound(web.NotFound)

	return r
}
