// Package services содержит бизнес-логику каталога курсов.
// Список курсов кэшируется, лекции отдаются только подписчикам.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
	"github.com/magabrotheeeer/lms-access/internal/models"
)

const (
	coursesCacheKey = "courses:all"
	coursesCacheTTL = time.Hour
)

// CourseRepository описывает контракт для работы с курсами в базе данных.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course models.Course) (int, error)
	RemoveCourse(ctx context.Context, id int) (int, error)
	ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error)
	ListLectures(ctx context.Context, courseID int) ([]*models.Lecture, error)
}

// Cache описывает контракт кэширования списка курсов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CourseService реализует операции каталога курсов.
type CourseService struct {
	courses CourseRepository
	cache   Cache
	log     *slog.Logger
}

// NewCourseService создает новый экземпляр CourseService.
func NewCourseService(courses CourseRepository, cache Cache, log *slog.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		cache:   cache,
		log:     log,
	}
}

// List возвращает страницу каталога. Первая страница кэшируется,
// ошибки кэша не прерывают запрос.
func (s *CourseService) List(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	const op = "services.course.List"

	useCache := offset == 0
	if useCache {
		var cached []*models.Course
		found, err := s.cache.Get(coursesCacheKey, &cached)
		if err != nil {
			s.log.Warn("course cache read failed", sl.Err(err))
		}
		if found && len(cached) >= limit {
			return cached[:limit], nil
		}
	}

	courses, err := s.courses.ListCourses(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if useCache {
		if err := s.cache.Set(coursesCacheKey, courses, coursesCacheTTL); err != nil {
			s.log.Warn("course cache write failed", sl.Err(err))
		}
	}
	return courses, nil
}

// Create добавляет курс в каталог и сбрасывает кэш списка.
func (s *CourseService) Create(ctx context.Context, req models.DummyCourse, createdBy string) (int, error) {
	const op = "services.course.Create"

	course := models.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   createdBy,
	}
	id, err := s.courses.CreateCourse(ctx, course)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(coursesCacheKey); err != nil {
		s.log.Warn("course cache invalidation failed", sl.Err(err))
	}
	s.log.Info("course created", slog.Int("course_id", id))
	return id, nil
}

// Remove удаляет курс и сбрасывает кэш списка.
// Возвращает количество удалённых строк.
func (s *CourseService) Remove(ctx context.Context, id int) (int, error) {
	const op = "services.course.Remove"

	count, err := s.courses.RemoveCourse(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(coursesCacheKey); err != nil {
		s.log.Warn("course cache invalidation failed", sl.Err(err))
	}
	return count, nil
}

// Lectures возвращает лекции курса. Право доступа проверяется
// на уровне HTTP до вызова этого метода.
func (s *CourseService) Lectures(ctx context.Context, courseID int) ([]*models.Lecture, error) {
	const op = "services.course.Lectures"

	lectures, err := s.courses.ListLectures(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lectures, nil
}
