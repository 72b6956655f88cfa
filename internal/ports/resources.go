package ports

import (
	"context"

	"github.com/target/coursedesk/internal/domain/model"
)

// ResourceStore hands out stores bound to one principal.
type ResourceStore interface {
	// As binds every subsequent operation to principalID for row-level policy evaluation.
	As(principalID string) ScopedResources
	Ping(ctx context.Context) error
}

// ScopedResources is the course and task store as seen by a single principal.
// Rows the principal does not own are invisible; lookups of them return not_found.
type ScopedResources interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	GetCourse(ctx context.Context, id int64) (model.Course, error)
	CourseOwnedBy(ctx context.Context, courseID int64, ownerID string) (bool, error)
	CreateCourse(ctx context.Context, in model.CourseInsert) (model.Course, error)
	UpdateCourse(ctx context.Context, id int64, patch model.CoursePatch) (model.Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInsert) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}
