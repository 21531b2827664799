package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/lms-access/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type CoursesMock struct{ mock.Mock }

func (m *CoursesMock) CreateCourse(ctx context.Context, course models.Course) (int, error) {
	args := m.Called(ctx, course)
	return args.Int(0), args.Error(1)
}

func (m *CoursesMock) RemoveCourse(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *CoursesMock) ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *CoursesMock) ListLectures(ctx context.Context, courseID int) ([]*models.Lecture, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lecture), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func sampleCourses(n int) []*models.Course {
	courses := make([]*models.Course, 0, n)
	for i := 1; i <= n; i++ {
		courses = append(courses, &models.Course{ID: i, Title: "Course", Category: "go"})
	}
	return courses
}

func TestCourseService_List_CacheMiss(t *testing.T) {
	repo := new(CoursesMock)
	cache := new(CacheMock)
	courses := sampleCourses(3)

	cache.On("Get", "courses:all", mock.Anything).Return(false, nil).Once()
	repo.On("ListCourses", mock.Anything, 10, 0).Return(courses, nil).Once()
	cache.On("Set", "courses:all", courses, time.Hour).Return(nil).Once()

	svc := NewCourseService(repo, cache, newNoopLogger())
	got, err := svc.List(context.Background(), 10, 0)

	require.NoError(t, err)
	assert.Equal(t, courses, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCourseService_List_CacheHit(t *testing.T) {
	repo := new(CoursesMock)
	cache := new(CacheMock)
	courses := sampleCourses(5)

	cache.On("Get", "courses:all", mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]*models.Course)
		*out = courses
	}).Return(true, nil).Once()

	svc := NewCourseService(repo, cache, newNoopLogger())
	got, err := svc.List(context.Background(), 3, 0)

	require.NoError(t, err)
	assert.Len(t, got, 3)
	repo.AssertNotCalled(t, "ListCourses", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestCourseService_List_SecondPageSkipsCache(t *testing.T) {
	repo := new(CoursesMock)
	cache := new(CacheMock)
	courses := sampleCourses(2)

	repo.On("ListCourses", mock.Anything, 10, 10).Return(courses, nil).Once()

	svc := NewCourseService(repo, cache, newNoopLogger())
	got, err := svc.List(context.Background(), 10, 10)

	require.NoError(t, err)
	assert.Equal(t, courses, got)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestCourseService_List_CacheFailureFallsThrough(t *testing.T) {
	repo := new(CoursesMock)
	cache := new(CacheMock)
	courses := sampleCourses(1)

	cache.On("Get", "courses:all", mock.Anything).Return(false, assert.AnError).Once()
	repo.On("ListCourses", mock.Anything, 10, 0).Return(courses, nil).Once()
	cache.On("Set", "courses:all", courses, time.Hour).Return(assert.AnError).Once()

	svc := NewCourseService(repo, cache, newNoopLogger())
	got, err := svc.List(context.Background(), 10, 0)

	require.NoError(t, err)
	assert.Equal(t, courses, got)
}

func TestCourseService_Create_InvalidatesCache(t *testing.T) {
	repo := new(CoursesMock)
	cache := new(CacheMock)

	repo.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c models.Course) bool {
		return c.Title == "Go for beginners" && c.CreatedBy == "admin-uid"
	})).Return(7, nil).Once()
	cache.On("Invalidate", "courses:all").Return(nil).Once()

	svc := NewCourseService(repo, cache, newNoopLogger())
	id, err := svc.Create(context.Background(), models.DummyCourse{
		Title:       "Go for beginners",
		Description: "Introductory course",
		Category:    "go",
	}, "admin-uid")

	require.NoError(t, err)
	assert.Equal(t, 7, id)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCourseService_Remove(t *testing.T) {
	repo := new(CoursesMock)
	cache := new(CacheMock)

	repo.On("RemoveCourse", mock.Anything, 7).Return(1, nil).Once()
	cache.On("Invalidate", "courses:all").Return(nil).Once()

	svc := NewCourseService(repo, cache, newNoopLogger())
	count, err := svc.Remove(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCourseService_Lectures(t *testing.T) {
	repo := new(CoursesMock)
	lectures := []*models.Lecture{
		{ID: 1, CourseID: 7, Title: "Intro", Position: 1},
		{ID: 2, CourseID: 7, Title: "Syntax", Position: 2},
	}
	repo.On("ListLectures", mock.Anything, 7).Return(lectures, nil).Once()

	svc := NewCourseService(repo, new(CacheMock), newNoopLogger())
	got, err := svc.Lectures(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, lectures, got)
	repo.AssertExpectations(t)
}
