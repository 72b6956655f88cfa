package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/domain/model"
)

// CourseService is the course API the handlers depend on; implemented by service.CourseService.
type CourseService interface {
	List(ctx context.Context, id *domainauth.Identity) ([]model.Course, error)
	Create(ctx context.Context, id *domainauth.Identity, req model.CreateCourseRequest) (model.Course, error)
	Update(ctx context.Context, id *domainauth.Identity, courseID int64, req model.UpdateCourseRequest) (model.Course, error)
	Delete(ctx context.Context, id *domainauth.Identity, courseID int64) error
}

// CourseHandlers serves /api/courses.
type CourseHandlers struct {
	Svc    CourseService
	Logger *slog.Logger
}

func (h *CourseHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List handles GET /api/courses.
func (h *CourseHandlers) List(w http.ResponseWriter, r *http.Request) {
	id, err := requestIdentity(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	courses, err := h.Svc.List(r.Context(), id)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	WriteSuccess(w, http.StatusOK, "", Envelope{"courses": courses})
}

// Create handles POST /api/courses.
func (h *CourseHandlers) Create(w http.ResponseWriter, r *http.Request) {
	id, err := requestIdentity(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	var req model.CreateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	course, err := h.Svc.Create(r.Context(), id, req)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	WriteSuccess(w, http.StatusOK, "Course created successfully", Envelope{"course": course})
}

// Update handles PUT /api/courses/{id}.
func (h *CourseHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := requestIdentity(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	courseID, err := pathID(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	var req model.UpdateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	course, err := h.Svc.Update(r.Context(), id, courseID, req)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	WriteSuccess(w, http.StatusOK, "Course updated successfully", Envelope{"course": course})
}

// Delete handles DELETE /api/courses/{id}.
func (h *CourseHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := requestIdentity(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	courseID, err := pathID(r)
	if err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	if err := h.Svc.Delete(r.Context(), id, courseID); err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}
	WriteSuccess(w, http.StatusOK, "Course deleted successfully", nil)
}
