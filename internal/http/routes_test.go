package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/domain/model"
	authmocks "github.com/target/coursedesk/internal/mocks/auth"
	"github.com/target/coursedesk/internal/service"
)

// Friday evening; tomorrow is 2025-02-01.
var routerNow = time.Date(2025, 1, 31, 22, 30, 0, 0, time.UTC)

type routerFixture struct {
	handler  http.Handler
	sessions *SessionManager
	store    *authmocks.AllowAllResources
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	sessions := newTestSessions(t)
	store := authmocks.NewAllowAllResources()
	clock := service.NewFixedClock(routerNow)
	resolver := &stubResolver{identities: map[string]*domainauth.Identity{"sid-ada": ada}}

	handler := NewRouter(RouterOptions{
		Services: RouterServices{
			Identity: &stubIdentityService{},
			Resolver: resolver,
			Courses:  service.NewCourseService(service.ResourceServiceOptions{Store: store, Clock: clock}),
			Tasks:    service.NewTaskService(service.ResourceServiceOptions{Store: store, Clock: clock}),
		},
		Sessions: sessions,
	})
	return &routerFixture{handler: handler, sessions: sessions, store: store}
}

func (f *routerFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req = withServerSession(t, f.sessions, req, "sid-ada")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	f := newRouterFixture(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/courses"},
		{http.MethodPost, "/api/courses"},
		{http.MethodPut, "/api/courses/1"},
		{http.MethodDelete, "/api/courses/1"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/1"},
		{http.MethodDelete, "/api/tasks/1"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, strings.NewReader(`{}`)))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Empty(t, f.store.Principals(), "no store access without an identity")
}

func TestRouter_CourseLifecycle(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/courses", `{"courseName":"Algebra","description":"Linear"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "Course created successfully", body["message"])
	course := body["course"].(map[string]any)
	assert.Equal(t, "user-ada", course["user_id"])

	rec = f.do(t, http.MethodGet, "/api/courses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeEnvelope(t, rec)["courses"], 1)

	rec = f.do(t, http.MethodPut, "/api/courses/1", `{"courseName":"Geometry"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Geometry", decodeEnvelope(t, rec)["course"].(map[string]any)["name"])

	rec = f.do(t, http.MethodPut, "/api/courses/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No valid fields to update", decodeEnvelope(t, rec)["message"])

	rec = f.do(t, http.MethodDelete, "/api/courses/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Course deleted successfully", decodeEnvelope(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/api/courses", `{"courseName":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Course name is required", decodeEnvelope(t, rec)["message"])
}

func TestRouter_InvalidIDs(t *testing.T) {
	f := newRouterFixture(t)
	for _, path := range []string{"/api/courses/abc", "/api/courses/0", "/api/tasks/-3", "/api/tasks/1.5"} {
		t.Run(path, func(t *testing.T) {
			rec := f.do(t, http.MethodDelete, path, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid id", decodeEnvelope(t, rec)["message"])
		})
	}
}

func TestRouter_TaskCreateUnderForeignCourse(t *testing.T) {
	f := newRouterFixture(t)
	foreign := f.store.SeedCourse(model.Course{OwnerID: "user-grace", Name: "Grace's course"})

	rec := f.do(t, http.MethodPost, "/api/tasks", `{"taskTitle":"Sneaky","courseId":"`+itoa(foreign.ID)+`"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You can only create tasks for your own courses", decodeEnvelope(t, rec)["message"])
	assert.Zero(t, f.store.TaskInserts)
}

func TestRouter_TaskCreateDefaultsDueTomorrow(t *testing.T) {
	f := newRouterFixture(t)
	course := f.store.SeedCourse(model.Course{OwnerID: "user-ada", Name: "Algebra"})

	rec := f.do(t, http.MethodPost, "/api/tasks", `{"taskTitle":"Homework","courseId":`+itoa(course.ID)+`}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	task := decodeEnvelope(t, rec)["task"].(map[string]any)
	assert.Equal(t, "2025-02-01", task["due_date"])
	assert.Equal(t, "medium", task["priority"])
	assert.Equal(t, "Not Started", task["status"])
	assert.Equal(t, false, task["completed"])
}

func TestRouter_TaskUpdateIgnoresInvalidPriority(t *testing.T) {
	f := newRouterFixture(t)
	course := f.store.SeedCourse(model.Course{OwnerID: "user-ada", Name: "Algebra"})
	rec := f.do(t, http.MethodPost, "/api/tasks",
		`{"taskTitle":"Homework","courseId":`+itoa(course.ID)+`,"priority":"high"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	taskID := int64(decodeEnvelope(t, rec)["task"].(map[string]any)["id"].(float64))

	rec = f.do(t, http.MethodPut, "/api/tasks/"+itoa(taskID), `{"priority":"urgent","completed":true}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "success", body["status"])
	task := body["task"].(map[string]any)
	assert.Equal(t, "high", task["priority"])
	assert.Equal(t, "Completed", task["status"])

	rec = f.do(t, http.MethodPut, "/api/tasks/"+itoa(taskID), `{"priority":"urgent"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "high", decodeEnvelope(t, rec)["task"].(map[string]any)["priority"])

	rec = f.do(t, http.MethodPut, "/api/tasks/"+itoa(taskID), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_TaskListAndDelete(t *testing.T) {
	f := newRouterFixture(t)
	course := f.store.SeedCourse(model.Course{OwnerID: "user-ada", Name: "Algebra"})
	_ = f.do(t, http.MethodPost, "/api/tasks", `{"taskTitle":"Homework","courseId":`+itoa(course.ID)+`}`)

	rec := f.do(t, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decodeEnvelope(t, rec)["tasks"].([]any)
	require.Len(t, tasks, 1)
	task := tasks[0].(map[string]any)
	assert.Equal(t, "Algebra", task["course_name"])

	rec = f.do(t, http.MethodDelete, "/api/tasks/"+itoa(int64(task["id"].(float64))), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted successfully", decodeEnvelope(t, rec)["message"])

	rec = f.do(t, http.MethodDelete, "/api/tasks/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	f := newRouterFixture(t)
	huge := `{"courseName":"` + strings.Repeat("x", DefaultMaxBodyBytes) + `"}`

	rec := f.do(t, http.MethodPost, "/api/courses", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRouter_Readiness(t *testing.T) {
	build := func(dbErr error) http.Handler {
		return NewRouter(RouterOptions{
			Services: RouterServices{
				Identity: &stubIdentityService{},
				Resolver: &stubResolver{},
				Ready: map[string]Pinger{
					"database":      pingFunc(func(context.Context) error { return dbErr }),
					"session_store": pingFunc(func(context.Context) error { return nil }),
				},
			},
			Sessions: newTestSessions(t),
		})
	}

	rec := httptest.NewRecorder()
	build(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"database": "ok", "session_store": "ok"}, decodeEnvelope(t, rec)["checks"])

	rec = httptest.NewRecorder()
	build(errors.New("connection refused")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decodeEnvelope(t, rec)["checks"].(map[string]any)["database"])
	assert.NotContains(t, rec.Body.String(), "connection refused")

	rec = httptest.NewRecorder()
	build(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
