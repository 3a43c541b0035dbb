package service

import (
	"context"
	"fmt"
	"strings"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
)

type CourseService struct {
	repo         *repository.CourseRepository
	semesterRepo *repository.SemesterRepository
}

func NewCourseService(repo *repository.CourseRepository, semesterRepo *repository.SemesterRepository) *CourseService {
	return &CourseService{repo: repo, semesterRepo: semesterRepo}
}

func (s *CourseService) Create(ctx context.Context, actor domain.Actor, course *domain.Course) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if strings.TrimSpace(course.Code) == "" || strings.TrimSpace(course.Name) == "" {
		return domain.ValidationError("course code and name are required")
	}
	return s.repo.Create(ctx, course)
}

func (s *CourseService) Get(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, domain.NotFoundError("course %d", id)
	}
	return course, nil
}

func (s *CourseService) List(ctx context.Context) ([]domain.Course, error) {
	return s.repo.List(ctx)
}

func (s *CourseService) Update(ctx context.Context, actor domain.Actor, course *domain.Course) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if strings.TrimSpace(course.Code) == "" || strings.TrimSpace(course.Name) == "" {
		return domain.ValidationError("course code and name are required")
	}
	return s.repo.Update(ctx, course)
}

func (s *CourseService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	return s.repo.Delete(ctx, id)
}

// CreateExam opens an exam slot in the active semester.
func (s *CourseService) CreateExam(ctx context.Context, actor domain.Actor, exam *domain.Exam) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if !domain.ValidExamKind(exam.Kind) {
		return domain.ValidationError("unknown exam kind %q", exam.Kind)
	}

	course, err := s.repo.FindByID(ctx, exam.CourseID)
	if err != nil {
		return err
	}
	if course == nil {
		return domain.NotFoundError("course %d", exam.CourseID)
	}

	if exam.SemesterID == 0 {
		active, err := s.semesterRepo.FindActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to find active semester: %w", err)
		}
		if active == nil {
			return domain.ConflictError("no active semester to attach the exam to")
		}
		exam.SemesterID = active.ID
	}

	return s.repo.CreateExam(ctx, exam)
}

func (s *CourseService) ListExams(ctx context.Context, courseID int64) ([]domain.Exam, error) {
	return s.repo.ListExamsByCourse(ctx, courseID)
}

func (s *CourseService) DeleteExam(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	return s.repo.DeleteExam(ctx, id)
}
