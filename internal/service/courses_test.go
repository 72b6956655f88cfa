package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/domain/model"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/mocks"
	"go.uber.org/mock/gomock"
)

var ada = &domainauth.Identity{ID: "user-ada", Email: "ada@example.com"}

func newCourseServiceWithMocks(t *testing.T) (*CourseService, *mocks.MockScopedResources) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResourceStore(ctrl)
	scoped := mocks.NewMockScopedResources(ctrl)
	store.EXPECT().As("user-ada").Return(scoped).AnyTimes()
	return NewCourseService(ResourceServiceOptions{Store: store, Clock: NewFixedClock(testNow)}), scoped
}

func TestCourseService_RequiresIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResourceStore(ctrl) // no As expected
	svc := NewCourseService(ResourceServiceOptions{Store: store})
	ctx := context.Background()

	_, err := svc.List(ctx, nil)
	assert.True(t, apperrors.IsAuthenticationRequired(err))
	_, err = svc.Create(ctx, &domainauth.Identity{}, model.CreateCourseRequest{CourseName: "x"})
	assert.True(t, apperrors.IsAuthenticationRequired(err))
	assert.True(t, apperrors.IsAuthenticationRequired(svc.Delete(ctx, nil, 1)))
}

func TestCourseService_List(t *testing.T) {
	svc, scoped := newCourseServiceWithMocks(t)
	scoped.EXPECT().ListCourses(gomock.Any()).Return([]model.Course{{ID: 1, OwnerID: "user-ada", Name: "Algebra"}}, nil)

	courses, err := svc.List(context.Background(), ada)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestCourseService_BoundsStoreCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResourceStore(ctrl)
	scoped := mocks.NewMockScopedResources(ctrl)
	store.EXPECT().As("user-ada").Return(scoped)
	svc := NewCourseService(ResourceServiceOptions{Store: store, Timeout: 50 * time.Millisecond})

	scoped.EXPECT().ListCourses(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]model.Course, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok, "store call should carry a deadline")
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		<-ctx.Done()
		return nil, apperrors.MapDBError(ctx.Err())
	})

	_, err := svc.List(context.Background(), ada)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTimeout, apperrors.GetCode(err))
}

func TestCourseService_DefaultTimeout(t *testing.T) {
	svc := NewCourseService(ResourceServiceOptions{Store: mocks.NewMockResourceStore(gomock.NewController(t))})
	assert.Equal(t, DefaultCallTimeout, svc.timeout)
}

func TestCourseService_Create(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreateCourseRequest
		wantErr string
	}{
		{name: "valid", req: model.CreateCourseRequest{CourseName: "  Algebra  ", Description: "Linear"}},
		{name: "missing name", req: model.CreateCourseRequest{CourseName: "   "}, wantErr: "Course name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, scoped := newCourseServiceWithMocks(t)
			if tt.wantErr == "" {
				scoped.EXPECT().
					CreateCourse(gomock.Any(), model.CourseInsert{OwnerID: "user-ada", Name: "Algebra", Description: "Linear"}).
					Return(model.Course{ID: 7, OwnerID: "user-ada", Name: "Algebra"}, nil)
			}

			course, err := svc.Create(context.Background(), ada, tt.req)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), course.ID)
		})
	}
}

func TestCourseService_Update(t *testing.T) {
	name := "Geometry"

	t.Run("stamps updated_at", func(t *testing.T) {
		svc, scoped := newCourseServiceWithMocks(t)
		gomock.InOrder(
			scoped.EXPECT().GetCourse(gomock.Any(), int64(3)).Return(model.Course{ID: 3, OwnerID: "user-ada"}, nil),
			scoped.EXPECT().UpdateCourse(gomock.Any(), int64(3), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ int64, p model.CoursePatch) (model.Course, error) {
					assert.Equal(t, testNow, p.UpdatedAt)
					assert.Equal(t, "Geometry", *p.Name)
					assert.Nil(t, p.Description)
					return model.Course{ID: 3, Name: *p.Name}, nil
				}),
		)

		course, err := svc.Update(context.Background(), ada, 3, model.UpdateCourseRequest{CourseName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Geometry", course.Name)
	})

	t.Run("empty patch", func(t *testing.T) {
		svc, _ := newCourseServiceWithMocks(t)
		_, err := svc.Update(context.Background(), ada, 3, model.UpdateCourseRequest{})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "No valid fields to update", err.Error())
	})

	t.Run("not visible", func(t *testing.T) {
		svc, scoped := newCourseServiceWithMocks(t)
		scoped.EXPECT().GetCourse(gomock.Any(), int64(3)).Return(model.Course{}, apperrors.NotFound("Course not found"))
		_, err := svc.Update(context.Background(), ada, 3, model.UpdateCourseRequest{CourseName: &name})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestCourseService_Delete(t *testing.T) {
	t.Run("owned", func(t *testing.T) {
		svc, scoped := newCourseServiceWithMocks(t)
		gomock.InOrder(
			scoped.EXPECT().GetCourse(gomock.Any(), int64(5)).Return(model.Course{ID: 5, OwnerID: "user-ada"}, nil),
			scoped.EXPECT().DeleteCourse(gomock.Any(), int64(5)).Return(nil),
		)
		require.NoError(t, svc.Delete(context.Background(), ada, 5))
	})

	t.Run("owned by someone else", func(t *testing.T) {
		svc, scoped := newCourseServiceWithMocks(t)
		scoped.EXPECT().GetCourse(gomock.Any(), int64(5)).Return(model.Course{ID: 5, OwnerID: "user-grace"}, nil)
		err := svc.Delete(context.Background(), ada, 5)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
