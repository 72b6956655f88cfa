package errors

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column from a unique violation detail: "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// constraintRule describes how a named schema constraint surfaces to clients.
type constraintRule struct {
	field   string
	message string
}

// schemaConstraints covers the named constraints of the courses and tasks tables.
// Postgres names column CHECK constraints <table>_<column>_check.
var schemaConstraints = map[string]constraintRule{
	"courses_name_check":   {field: "name", message: "Course name must be between 1 and 255 characters"},
	"tasks_title_check":    {field: "title", message: "Task title is required"},
	"tasks_priority_check": {field: "priority", message: "Priority must be one of low, medium, high"},
	"tasks_status_check":   {field: "status", message: "Status must be one of Not Started, In Progress, Completed"},
	"tasks_course_id_fkey": {field: "course_id", message: "Course not found"},
}

// MapDBError maps database errors to AppError instances:
//   - pgx.ErrNoRows → NotFound
//   - unique violations → Conflict
//   - foreign key violations → ForeignKey
//   - check and NOT NULL violations → Validation
//   - row-level security rejections → Forbidden
//   - context timeouts/cancellations → Timeout/Canceled
//   - connection failures → ProviderUnavailable
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	// The database is unreachable, not the request invalid.
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return ProviderUnavailable(err, "The database is temporarily unavailable. Please try again.")
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists. Please choose a different one.",
			Field:   uniqueField(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation:
		return constraintError(pgErr, ErrCodeValidation, "Invalid data. Please check your input.")
	case pgerrcode.NotNullViolation:
		msg := "Required field is missing. Please check your input."
		if pgErr.ColumnName != "" {
			msg = "This field is required."
		}
		return &AppError{Code: ErrCodeValidation, Message: msg, Field: pgErr.ColumnName, Cause: pgErr}
	case pgerrcode.InsufficientPrivilege:
		// Raised by row-level security WITH CHECK policies.
		return &AppError{Code: ErrCodeForbidden, Message: "You do not have access to this resource.", Cause: pgErr}
	default:
		return &AppError{Code: ErrCodeInternal, Message: "A database error occurred. Please try again.", Cause: pgErr}
	}
}

func uniqueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return schemaConstraints[pgErr.ConstraintName].field
}

func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	// "... is still referenced from table ..." means a parent was removed under a child.
	if strings.Contains(pgErr.Detail, "is still referenced from table") {
		return &AppError{
			Code:    ErrCodeForeignKey,
			Message: "Cannot delete because this item is still in use.",
			Cause:   pgErr,
		}
	}
	return constraintError(pgErr, ErrCodeForeignKey, "The referenced item does not exist.")
}

// constraintError uses the schemaConstraints entry for pgErr when one exists.
func constraintError(pgErr *pgconn.PgError, code ErrorCode, fallback string) error {
	rule, ok := schemaConstraints[pgErr.ConstraintName]
	if !ok {
		return &AppError{Code: code, Message: fallback, Field: pgErr.ColumnName, Cause: pgErr}
	}
	return &AppError{Code: code, Message: rule.message, Field: rule.field, Cause: pgErr}
}
