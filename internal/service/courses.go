package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/domain/model"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/ports"
)

// ResourceServiceOptions groups dependencies for CourseService and TaskService.
type ResourceServiceOptions struct {
	Store   ports.ResourceStore
	Clock   Clock
	Timeout time.Duration // bounds each operation's store calls; default DefaultCallTimeout
	Logger  *slog.Logger
}

func callTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultCallTimeout
	}
	return d
}

// CourseService provides course operations bound to the calling identity.
type CourseService struct {
	store   ports.ResourceStore
	clock   Clock
	timeout time.Duration
	logger  *slog.Logger
}

// NewCourseService constructs a new CourseService.
func NewCourseService(opts ResourceServiceOptions) *CourseService {
	if opts.Store == nil {
		panic("ResourceStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseService{
		store:   opts.Store,
		clock:   clockOrSystem(opts.Clock),
		timeout: callTimeout(opts.Timeout),
		logger:  logger,
	}
}

// scoped binds the store to id, rejecting anonymous callers.
func scoped(store ports.ResourceStore, id *domainauth.Identity) (ports.ScopedResources, error) {
	if id == nil || id.ID == "" {
		return nil, apperrors.AuthenticationRequired("Authentication required")
	}
	return store.As(id.ID), nil
}

// List returns the caller's courses.
func (s *CourseService) List(ctx context.Context, id *domainauth.Identity) ([]model.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := scoped(s.store, id)
	if err != nil {
		return nil, err
	}
	courses, err := rs.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Create creates a course owned by the caller.
func (s *CourseService) Create(ctx context.Context, id *domainauth.Identity, req model.CreateCourseRequest) (model.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := scoped(s.store, id)
	if err != nil {
		return model.Course{}, err
	}
	if err := req.Validate(); err != nil {
		return model.Course{}, apperrors.Validation(err.Error())
	}

	course, err := rs.CreateCourse(ctx, req.Insert(id.ID))
	if err != nil {
		return model.Course{}, fmt.Errorf("create course: %w", err)
	}
	s.logger.InfoContext(ctx, "course created", "course_id", course.ID, "principal_id", id.ID)
	return course, nil
}

// Update applies a partial update to one of the caller's courses.
func (s *CourseService) Update(
	ctx context.Context,
	id *domainauth.Identity,
	courseID int64,
	req model.UpdateCourseRequest,
) (model.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := scoped(s.store, id)
	if err != nil {
		return model.Course{}, err
	}
	if err := req.Validate(); err != nil {
		return model.Course{}, apperrors.Validation(err.Error())
	}
	if err := s.requireOwned(ctx, rs, id, courseID); err != nil {
		return model.Course{}, err
	}

	course, err := rs.UpdateCourse(ctx, courseID, req.Patch(s.clock.Now()))
	if err != nil {
		return model.Course{}, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

// Delete removes one of the caller's courses.
func (s *CourseService) Delete(ctx context.Context, id *domainauth.Identity, courseID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := scoped(s.store, id)
	if err != nil {
		return err
	}
	if err := s.requireOwned(ctx, rs, id, courseID); err != nil {
		return err
	}
	if err := rs.DeleteCourse(ctx, courseID); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	s.logger.InfoContext(ctx, "course deleted", "course_id", courseID, "principal_id", id.ID)
	return nil
}

// requireOwned reports NotFound unless the course is visible to and owned by the caller.
func (s *CourseService) requireOwned(ctx context.Context, rs ports.ScopedResources, id *domainauth.Identity, courseID int64) error {
	course, err := rs.GetCourse(ctx, courseID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("Course not found")
		}
		return fmt.Errorf("get course: %w", err)
	}
	if course.OwnerID != id.ID {
		return apperrors.NotFound("Course not found")
	}
	return nil
}
