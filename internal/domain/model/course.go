//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxCourseNameLen = 255

// ErrNoUpdates is returned when an update request carries no usable field.
var ErrNoUpdates = errors.New("No valid fields to update")

// Course is a user-owned course. OwnerID is the identity that row-level policies match.
type Course struct {
	ID          int64      `json:"id"                   db:"id"`
	OwnerID     string     `json:"user_id"              db:"user_id"`
	Name        string     `json:"name"                 db:"name"`
	Description string     `json:"description"          db:"description"`
	CreatedAt   time.Time  `json:"created_at"           db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// CreateCourseRequest is the POST /api/courses payload.
type CreateCourseRequest struct {
	CourseName  string `json:"courseName"`
	Description string `json:"description"`
}

// Validate trims and validates CreateCourseRequest.
func (r *CreateCourseRequest) Validate() error {
	r.CourseName = strings.TrimSpace(r.CourseName)
	if r.CourseName == "" {
		return errors.New("Course name is required")
	}
	if utf8.RuneCountInString(r.CourseName) > maxCourseNameLen {
		return errors.New("Course name cannot exceed 255 characters")
	}
	return nil
}

// Insert binds the request to its owner.
func (r *CreateCourseRequest) Insert(ownerID string) CourseInsert {
	return CourseInsert{OwnerID: ownerID, Name: r.CourseName, Description: r.Description}
}

// UpdateCourseRequest is the PUT /api/courses/{id} payload. Absent fields are left unchanged.
type UpdateCourseRequest struct {
	CourseName  *string `json:"courseName,omitempty"`
	Description *string `json:"description,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateCourseRequest) HasUpdates() bool {
	return r.CourseName != nil || r.Description != nil
}

// Validate validates UpdateCourseRequest, ensuring at least one field is set.
func (r *UpdateCourseRequest) Validate() error {
	if !r.HasUpdates() {
		return ErrNoUpdates
	}
	if r.CourseName != nil {
		n := strings.TrimSpace(*r.CourseName)
		if n == "" {
			return errors.New("Course name is required")
		}
		if utf8.RuneCountInString(n) > maxCourseNameLen {
			return errors.New("Course name cannot exceed 255 characters")
		}
		r.CourseName = &n
	}
	return nil
}

// Patch converts the request into a store patch stamped at now.
func (r *UpdateCourseRequest) Patch(now time.Time) CoursePatch {
	return CoursePatch{Name: r.CourseName, Description: r.Description, UpdatedAt: now}
}

// CourseInsert is the row written when a course is created.
type CourseInsert struct {
	OwnerID     string
	Name        string
	Description string
}

// CoursePatch is a partial course update. Nil fields are left unchanged.
type CoursePatch struct {
	Name        *string
	Description *string
	UpdatedAt   time.Time
}
