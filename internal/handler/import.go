package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/service"
	"github.com/BuzzLyutic/taskboard/pkg/respond"
)

type ImportHandler struct {
	service *service.ImportService
	logger  *zap.Logger
}

func NewImportHandler(srv *service.ImportService, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{
		service: srv,
		logger:  logger,
	}
}

type importRequest struct {
	URL string `json:"url"`
}

// Submit queues an import and answers 202; the job runs in the worker pool.
func (h *ImportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decode(w, r, h.logger, &req) {
		return
	}

	job, err := h.service.Submit(r.Context(), req.URL)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/imports/%s", job.ID))
	respond.JSON(w, r, http.StatusAccepted, job)
}

func (h *ImportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return
	}

	job, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, job)
}
