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

// TaskService provides task operations bound to the calling identity.
type TaskService struct {
	store   ports.ResourceStore
	clock   Clock
	timeout time.Duration
	logger  *slog.Logger
}

// NewTaskService constructs a new TaskService.
func NewTaskService(opts ResourceServiceOptions) *TaskService {
	if opts.Store == nil {
		panic("ResourceStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		store:   opts.Store,
		clock:   clockOrSystem(opts.Clock),
		timeout: callTimeout(opts.Timeout),
		logger:  logger,
	}
}

// List returns the caller's tasks, each labelled with its course name.
func (s *TaskService) List(ctx context.Context, id *domainauth.Identity) ([]model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := scoped(s.store, id)
	if err != nil {
		return nil, err
	}
	tasks, err := rs.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for i := range tasks {
		if tasks[i].CourseName == "" {
			tasks[i].CourseName = model.UnknownCourseName
		}
	}
	return tasks, nil
}

// Create creates a task under one of the caller's courses.
func (s *TaskService) Create(ctx context.Context, id *domainauth.Identity, req model.CreateTaskRequest) (model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := scoped(s.store, id)
	if err != nil {
		return model.Task{}, err
	}
	if err := req.Validate(); err != nil {
		return model.Task{}, apperrors.Validation(err.Error())
	}

	owned, err := rs.CourseOwnedBy(ctx, int64(req.CourseID), id.ID)
	if err != nil {
		return model.Task{}, fmt.Errorf("check course ownership: %w", err)
	}
	if !owned {
		s.logger.WarnContext(ctx, "task create for foreign course",
			"course_id", int64(req.CourseID), "principal_id", id.ID)
		return model.Task{}, apperrors.Forbidden("You can only create tasks for your own courses")
	}

	task, err := rs.CreateTask(ctx, req.Insert(s.clock.Now()))
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update applies a loosely typed partial update to one of the caller's tasks.
// Fields that fail validation are ignored.
func (s *TaskService) Update(
	ctx context.Context,
	id *domainauth.Identity,
	taskID int64,
	fields map[string]any,
) (model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := scoped(s.store, id)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.requireOwned(ctx, rs, id, taskID); err != nil {
		return model.Task{}, err
	}

	patch := model.TaskPatchFromFields(fields, s.clock.Now())
	if patch.IsEmpty() {
		return model.Task{}, apperrors.Validation(model.ErrNoUpdates.Error())
	}

	task, err := rs.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes one of the caller's tasks.
func (s *TaskService) Delete(ctx context.Context, id *domainauth.Identity, taskID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := scoped(s.store, id)
	if err != nil {
		return err
	}
	if err := s.requireOwned(ctx, rs, id, taskID); err != nil {
		return err
	}
	if err := rs.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// requireOwned reports NotFound unless the task's course belongs to the caller.
func (s *TaskService) requireOwned(ctx context.Context, rs ports.ScopedResources, id *domainauth.Identity, taskID int64) error {
	task, err := rs.GetTask(ctx, taskID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("Task not found")
		}
		return fmt.Errorf("get task: %w", err)
	}
	owned, err := rs.CourseOwnedBy(ctx, task.CourseID, id.ID)
	if err != nil {
		return fmt.Errorf("check course ownership: %w", err)
	}
	if !owned {
		return apperrors.NotFound("Task not found")
	}
	return nil
}
