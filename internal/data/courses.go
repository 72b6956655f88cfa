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

const courseNotFound = "Course not found"

var courseColumns = []string{"id", "user_id", "name", "description", "created_at", "updated_at"}

const insertCourseSQL = `
	INSERT INTO courses (user_id, name, description)
	VALUES ($1, $2, $3)
	RETURNING id, user_id, name, description, created_at, updated_at`

const courseOwnedBySQL = `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1 AND user_id = $2)`

const deleteCourseSQL = `DELETE FROM courses WHERE id = $1`

func scanCourse(row pgx.Row) (model.Course, error) {
	var (
		c         model.Course
		updatedAt *time.Time
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt, &updatedAt); err != nil {
		return model.Course{}, err
	}
	c.UpdatedAt = updatedAt
	return c, nil
}

// ListCourses returns the courses visible to the principal, oldest first.
func (s *scopedStore) ListCourses(ctx context.Context) ([]model.Course, error) {
	query, args := database.BuildListQuery(database.NewListQueryOptions("courses",
		database.WithColumns(courseColumns...),
		database.WithOrderBy("id", "ASC"),
	))

	var out []model.Course
	err := s.read(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		defer rows.Close()

		out = make([]model.Course, 0)
		for rows.Next() {
			c, scanErr := scanCourse(rows)
			if scanErr != nil {
				return fmt.Errorf("scan course: %w", scanErr)
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCourse returns a visible course or not_found.
func (s *scopedStore) GetCourse(ctx context.Context, id int64) (model.Course, error) {
	query, args := database.BuildListQuery(database.NewListQueryOptions("courses",
		database.WithColumns(courseColumns...),
		database.WithCondition(database.WhereCond("id", database.Equal, id)),
	))

	var out model.Course
	err := s.read(ctx, func(tx pgx.Tx) error {
		c, err := scanCourse(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return notFoundOr(err, courseNotFound)
		}
		out = c
		return nil
	})
	return out, err
}

// CourseOwnedBy reports whether courseID exists and belongs to ownerID.
func (s *scopedStore) CourseOwnedBy(ctx context.Context, courseID int64, ownerID string) (bool, error) {
	var owned bool
	err := s.read(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, courseOwnedBySQL, courseID, ownerID).Scan(&owned)
	})
	return owned, err
}

// CreateCourse inserts a course. Row-level policies reject rows whose owner is not the principal.
func (s *scopedStore) CreateCourse(ctx context.Context, in model.CourseInsert) (model.Course, error) {
	var out model.Course
	err := s.write(ctx, func(tx pgx.Tx) error {
		c, err := scanCourse(tx.QueryRow(ctx, insertCourseSQL, in.OwnerID, in.Name, in.Description))
		if err != nil {
			return fmt.Errorf("insert course: %w", err)
		}
		out = c
		return nil
	})
	return out, err
}

// UpdateCourse applies the non-nil fields of patch.
func (s *scopedStore) UpdateCourse(ctx context.Context, id int64, patch model.CoursePatch) (model.Course, error) {
	set := make([]database.Assignment, 0, 3)
	if patch.Name != nil {
		set = append(set, database.Assignment{Column: "name", Value: *patch.Name})
	}
	if patch.Description != nil {
		set = append(set, database.Assignment{Column: "description", Value: *patch.Description})
	}
	if len(set) == 0 {
		return model.Course{}, apperrors.Validation(model.ErrNoUpdates.Error())
	}
	set = append(set, database.Assignment{Column: "updated_at", Value: patch.UpdatedAt})

	query, args := database.BuildUpdateQuery(&database.UpdateQueryOptions{
		Table:      "courses",
		Set:        set,
		Conditions: []database.Condition{database.WhereCond("id", database.Equal, id)},
		Returning:  courseColumns,
	})

	var out model.Course
	err := s.write(ctx, func(tx pgx.Tx) error {
		c, err := scanCourse(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return notFoundOr(err, courseNotFound)
		}
		out = c
		return nil
	})
	return out, err
}

// DeleteCourse removes a course; its tasks cascade.
func (s *scopedStore) DeleteCourse(ctx context.Context, id int64) error {
	return s.write(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deleteCourseSQL, id)
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound(courseNotFound)
		}
		return nil
	})
}
