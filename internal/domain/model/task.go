//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of task due dates.
const DateLayout = "2006-01-02"

// UnknownCourseName labels tasks whose course is not visible to the caller.
const UnknownCourseName = "Unknown Course"

// Priority is a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is supported.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes case and surrounding space before validating.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "Not Started"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// Valid reports whether the status is supported.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// statusFromCompleted maps the boolean completion flag to a status.
func statusFromCompleted(done bool) TaskStatus {
	if done {
		return TaskStatusCompleted
	}
	return TaskStatusNotStarted
}

// Date is a calendar date without time of day, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, false
	}
	return Date{Time: t}, true
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Format(DateLayout) }

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, ok := ParseDate(s)
	if !ok {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = parsed
	return nil
}

// Task is a unit of work attached to a course.
type Task struct {
	ID         int64      `json:"id"`
	CourseID   int64      `json:"course_id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	DueDate    *Date      `json:"due_date"`
	Priority   Priority   `json:"priority"`
	Status     TaskStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	CourseName string     `json:"course_name,omitempty"`
}

// MarshalJSON adds the derived completed flag.
func (t Task) MarshalJSON() ([]byte, error) {
	type taskAlias Task
	return json.Marshal(struct {
		taskAlias
		Completed bool `json:"completed"`
	}{taskAlias: taskAlias(t), Completed: t.Status == TaskStatusCompleted})
}

// CourseRef is a course id accepted as either a JSON number or a numeric string.
type CourseRef int64

// UnmarshalJSON implements json.Unmarshaler.
func (c *CourseRef) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*c = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*c = 0
			return nil
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return errors.New("courseId must be an integer")
	}
	*c = CourseRef(id)
	return nil
}

// CreateTaskRequest is the POST /api/tasks payload.
type CreateTaskRequest struct {
	TaskTitle string    `json:"taskTitle"`
	Notes     string    `json:"notes"`
	CourseID  CourseRef `json:"courseId"`
	DueDate   string    `json:"dueDate"`
	Priority  string    `json:"priority"`
	Completed any       `json:"completed"`
	Status    string    `json:"status"`
}

// Validate trims and validates required fields.
func (r *CreateTaskRequest) Validate() error {
	r.TaskTitle = strings.TrimSpace(r.TaskTitle)
	if r.TaskTitle == "" {
		return errors.New("Task title is required")
	}
	if r.CourseID <= 0 {
		return errors.New("Course assignment is required")
	}
	r.DueDate = strings.TrimSpace(r.DueDate)
	if r.DueDate != "" {
		if _, ok := ParseDate(r.DueDate); !ok {
			return errors.New("Invalid due date")
		}
	}
	return nil
}

// Insert applies defaults: due tomorrow relative to now when DueDate is blank, medium
// priority, not started. Unknown priorities fall back to medium. Call Validate first.
func (r *CreateTaskRequest) Insert(now time.Time) TaskInsert {
	due := NewDate(now.AddDate(0, 0, 1))
	if d, ok := ParseDate(r.DueDate); ok {
		due = d
	}

	priority, ok := ParsePriority(r.Priority)
	if !ok {
		priority = PriorityMedium
	}

	status := TaskStatusNotStarted
	switch v := r.Completed.(type) {
	case bool:
		status = statusFromCompleted(v)
	case string:
		if s := TaskStatus(v); s.Valid() {
			status = s
		}
	}
	if s := TaskStatus(r.Status); s.Valid() {
		status = s
	}

	return TaskInsert{
		CourseID: int64(r.CourseID),
		Title:    r.TaskTitle,
		Notes:    r.Notes,
		DueDate:  due,
		Priority: priority,
		Status:   status,
	}
}

// TaskInsert is the row written when a task is created.
type TaskInsert struct {
	CourseID int64
	Title    string
	Notes    string
	DueDate  Date
	Priority Priority
	Status   TaskStatus
}

// TaskPatch is a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title     *string
	Notes     *string
	Priority  *Priority
	Status    *TaskStatus
	DueDate   *Date
	UpdatedAt time.Time
	// Touched is set when the body named an updatable field, even one whose value was dropped.
	Touched bool
}

// IsEmpty reports whether the body named no updatable field at all.
func (p TaskPatch) IsEmpty() bool {
	return !p.Touched && p.Title == nil && p.Notes == nil && p.Priority == nil && p.Status == nil && p.DueDate == nil
}

// TaskPatchFromFields builds a patch from a loosely typed update body.
//
// Recognized keys: completed (truthiness), status, title, notes, description (alias of notes),
// priority, due_date and dueDate. Values that fail validation are dropped silently; a body
// with only dropped values still bumps UpdatedAt.
func TaskPatchFromFields(fields map[string]any, now time.Time) TaskPatch {
	p := TaskPatch{UpdatedAt: now}
	for _, key := range taskPatchKeys {
		if _, ok := fields[key]; ok {
			p.Touched = true
			break
		}
	}

	if v, ok := fields["completed"]; ok {
		s := statusFromCompleted(truthy(v))
		p.Status = &s
	}
	if v, ok := fields["status"].(string); ok {
		if s := TaskStatus(v); s.Valid() {
			p.Status = &s
		}
	}
	if v, ok := fields["title"].(string); ok {
		if t := strings.TrimSpace(v); t != "" {
			p.Title = &t
		}
	}
	if v, ok := fields["notes"].(string); ok {
		p.Notes = &v
	}
	if v, ok := fields["description"].(string); ok {
		p.Notes = &v
	}
	if v, ok := fields["priority"].(string); ok {
		if pr, ok := ParsePriority(v); ok {
			p.Priority = &pr
		}
	}
	for _, key := range []string{"dueDate", "due_date"} {
		if v, ok := fields[key].(string); ok {
			if d, ok := ParseDate(v); ok {
				p.DueDate = &d
			}
		}
	}
	return p
}

var taskPatchKeys = []string{"completed", "status", "title", "notes", "description", "priority", "dueDate", "due_date"}

// truthy follows the usual dynamic-language truthiness for decoded JSON values.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
