package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/target/coursedesk/internal/data/database"
	"github.com/target/coursedesk/internal/domain/model"
	apperrors "github.com/target/coursedesk/internal/errors"
)

const taskNotFound = "Task not found"

var taskColumns = []string{
	"id", "course_id", "title", "notes", "due_date", "priority", "status", "created_at", "updated_at",
}

// Courses hidden by row-level policies join as NULL and come back with an empty name.
const listTasksSQL = `
	SELECT t.id, t.course_id, t.title, t.notes, t.due_date, t.priority, t.status, t.created_at, t.updated_at,
	       COALESCE(c.name, '')
	FROM tasks t
	LEFT JOIN courses c ON c.id = t.course_id
	ORDER BY t.due_date NULLS LAST, t.id`

const insertTaskSQL = `
	INSERT INTO tasks (course_id, title, notes, due_date, priority, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, course_id, title, notes, due_date, priority, status, created_at, updated_at`

const deleteTaskSQL = `DELETE FROM tasks WHERE id = $1`

func scanTask(row pgx.Row, extra ...any) (model.Task, error) {
	var (
		t         model.Task
		due       *time.Time
		priority  string
		status    string
		updatedAt *time.Time
	)
	dest := append([]any{&t.ID, &t.CourseID, &t.Title, &t.Notes, &due, &priority, &status, &t.CreatedAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Task{}, err
	}
	if due != nil {
		d := model.NewDate(*due)
		t.DueDate = &d
	}
	t.Priority = model.Priority(priority)
	t.Status = model.TaskStatus(status)
	t.UpdatedAt = updatedAt
	return t, nil
}

// ListTasks returns the tasks visible to the principal with their course names.
func (s *scopedStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	err := s.read(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, listTasksSQL)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		defer rows.Close()

		out = make([]model.Task, 0)
		for rows.Next() {
			var courseName string
			t, scanErr := scanTask(rows, &courseName)
			if scanErr != nil {
				return fmt.Errorf("scan task: %w", scanErr)
			}
			t.CourseName = courseName
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask returns a visible task or not_found.
func (s *scopedStore) GetTask(ctx context.Context, id int64) (model.Task, error) {
	query, args := database.BuildListQuery(database.NewListQueryOptions("tasks",
		database.WithColumns(taskColumns...),
		database.WithCondition(database.WhereCond("id", database.Equal, id)),
	))

	var out model.Task
	err := s.read(ctx, func(tx pgx.Tx) error {
		t, err := scanTask(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return notFoundOr(err, taskNotFound)
		}
		out = t
		return nil
	})
	return out, err
}

// CreateTask inserts a task. A course the principal does not own fails the row-level check.
func (s *scopedStore) CreateTask(ctx context.Context, in model.TaskInsert) (model.Task, error) {
	var out model.Task
	err := s.write(ctx, func(tx pgx.Tx) error {
		t, err := scanTask(tx.QueryRow(ctx, insertTaskSQL,
			in.CourseID, in.Title, in.Notes, in.DueDate.Time, string(in.Priority), string(in.Status)))
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		out = t
		return nil
	})
	return out, err
}

func taskAssignments(p model.TaskPatch) []database.Assignment {
	set := make([]database.Assignment, 0, 6)
	if p.Title != nil {
		set = append(set, database.Assignment{Column: "title", Value: *p.Title})
	}
	if p.Notes != nil {
		set = append(set, database.Assignment{Column: "notes", Value: *p.Notes})
	}
	if p.DueDate != nil {
		set = append(set, database.Assignment{Column: "due_date", Value: p.DueDate.Time})
	}
	if p.Priority != nil {
		set = append(set, database.Assignment{Column: "priority", Value: string(*p.Priority)})
	}
	if p.Status != nil {
		set = append(set, database.Assignment{Column: "status", Value: string(*p.Status)})
	}
	return set
}

// UpdateTask applies the non-nil fields of patch and always bumps updated_at.
func (s *scopedStore) UpdateTask(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	if patch.IsEmpty() {
		return model.Task{}, apperrors.Validation(model.ErrNoUpdates.Error())
	}
	set := append(taskAssignments(patch), database.Assignment{Column: "updated_at", Value: patch.UpdatedAt})

	query, args := database.BuildUpdateQuery(&database.UpdateQueryOptions{
		Table:      "tasks",
		Set:        set,
		Conditions: []database.Condition{database.WhereCond("id", database.Equal, id)},
		Returning:  taskColumns,
	})

	var out model.Task
	err := s.write(ctx, func(tx pgx.Tx) error {
		t, err := scanTask(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return notFoundOr(err, taskNotFound)
		}
		out = t
		return nil
	})
	return out, err
}

// DeleteTask removes a task.
func (s *scopedStore) DeleteTask(ctx context.Context, id int64) error {
	return s.write(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deleteTaskSQL, id)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound(taskNotFound)
		}
		return nil
	})
}
