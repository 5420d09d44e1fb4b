package course

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) course(args mock.Arguments) (*models.Course, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockRepository) courses(args mock.Arguments) ([]*models.Course, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *MockRepository) CreateCourse(ctx context.Context, c models.Course) (*models.Course, error) {
	return m.course(m.Called(ctx, c))
}

func (m *MockRepository) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	return m.course(m.Called(ctx, id))
}

func (m *MockRepository) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return m.courses(m.Called(ctx))
}

func (m *MockRepository) SearchCourses(ctx context.Context, title string) ([]*models.Course, error) {
	return m.courses(m.Called(ctx, title))
}

func (m *MockRepository) UpdateCourse(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error) {
	return m.course(m.Called(ctx, id, upd))
}

func (m *MockRepository) DeleteCourse(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		in         models.Course
		setupMocks func(r *MockRepository)
		wantErr    error
	}{
		{
			name: "defaults applied",
			in:   models.Course{Title: "Go 101"},
			setupMocks: func(r *MockRepository) {
				r.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c models.Course) bool {
					return c.Price == models.DefaultCoursePrice && c.Status == models.CourseAvailable
				})).Return(&models.Course{ID: 1, Title: "Go 101"}, nil).Once()
			},
		},
		{
			name: "explicit price kept",
			in:   models.Course{Title: "Go 201", Price: 129.99, Status: models.CourseFilledUp},
			setupMocks: func(r *MockRepository) {
				r.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c models.Course) bool {
					return c.Price == 129.99 && c.Status == models.CourseFilledUp
				})).Return(&models.Course{ID: 2}, nil).Once()
			},
		},
		{
			name:       "blank title",
			in:         models.Course{Title: "  "},
			setupMocks: func(_ *MockRepository) {},
			wantErr:    errs.ErrBadRequest,
		},
		{
			name:       "unknown status",
			in:         models.Course{Title: "Go", Status: "closed"},
			setupMocks: func(_ *MockRepository) {},
			wantErr:    errs.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)
			svc := New(repo, newNoopLogger())

			c, err := svc.Create(context.Background(), tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, c)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_SearchTrimsTitle(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo, newNoopLogger())
	repo.On("SearchCourses", mock.Anything, "go").Return([]*models.Course{{ID: 1, Title: "Go"}}, nil).Once()

	list, err := svc.Search(context.Background(), "  go ")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	repo.AssertExpectations(t)
}

func TestService_RemoveMissing(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo, newNoopLogger())
	repo.On("DeleteCourse", mock.Anything, int64(42)).
		Return(fmt.Errorf("storage.DeleteCourse: %w", errs.ErrNotFound)).Once()

	err := svc.Remove(context.Background(), 42)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestService_UpdateRejectsUnknownStatus(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo, newNoopLogger())
	status := "archived"

	_, err := svc.Update(context.Background(), 1, models.CourseUpdate{Status: &status})
	assert.ErrorIs(t, err, errs.ErrBadRequest)
	repo.AssertNotCalled(t, "UpdateCourse", mock.Anything, mock.Anything, mock.Anything)
}
