package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/domain/model"
)

// TaskService is the task API the handlers depend on; implemented by service.TaskService.
type TaskService interface {
	List(ctx context.Context, id *domainauth.Identity) ([]model.Task, error)
	Create(ctx context.Context, id *domainauth.Identity, req model.CreateTaskRequest) (model.Task, error)
	Update(ctx context.Context, id *domainauth.Identity, taskID int64, fields map[string]any) (model.Task, error)
	Delete(ctx context.Context, id *domainauth.Identity, taskID int64) error
}

// TaskHandlers serves /api/tasks.
type TaskHandlers struct {
	Svc    TaskService
	Logger *slog.Logger
}

func (h *TaskHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List handles GET /api/tasks.
func (h *TaskHandlers) List(w http.ResponseWriter, r *http.Request) {
	id, err := requestIdentity(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	tasks, err := h.Svc.List(r.Context(), id)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	WriteSuccess(w, http.StatusOK, "", Envelope{"tasks": tasks})
}

// Create handles POST /api/tasks.
func (h *TaskHandlers) Create(w http.ResponseWriter, r *http.Request) {
	id, err := requestIdentity(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	var req model.CreateTaskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	task, err := h.Svc.Create(r.Context(), id, req)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	WriteSuccess(w, http.StatusOK, "Task created successfully", Envelope{"task": task})
}

// Update handles PUT /api/tasks/{id}. The body is loosely typed; unusable fields are ignored.
func (h *TaskHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := requestIdentity(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	var fields map[string]any
	if !DecodeJSON(w, r, &fields) {
		return
	}
	task, err := h.Svc.Update(r.Context(), id, taskID, fields)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	WriteSuccess(w, http.StatusOK, "Task updated successfully", Envelope{"task": task})
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := requestIdentity(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	if err := h.Svc.Delete(r.Context(), id, taskID); err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	WriteSuccess(w, http.StatusOK, "Task deleted successfully", nil)
}
