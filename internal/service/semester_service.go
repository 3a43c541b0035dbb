package service

import (
	"context"
	"strings"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
)

type SemesterService struct {
	repo *repository.SemesterRepository
}

func NewSemesterService(repo *repository.SemesterRepository) *SemesterService {
	return &SemesterService{repo: repo}
}

func (s *SemesterService) Create(ctx context.Context, actor domain.Actor, sem *domain.Semester) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if strings.TrimSpace(sem.Name) == "" {
		return domain.ValidationError("semester name is required")
	}
	if !sem.EndsOn.After(sem.StartsOn) {
		return domain.ValidationError("semester must end after it starts")
	}
	return s.repo.Create(ctx, sem)
}

func (s *SemesterService) List(ctx context.Context) ([]domain.Semester, error) {
	return s.repo.List(ctx)
}

func (s *SemesterService) Active(ctx context.Context) (*domain.Semester, error) {
	sem, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if sem == nil {
		return nil, domain.NotFoundError("no active semester")
	}
	return sem, nil
}

// Activate switches the active semester. The repository deactivates the
// previous one in the same transaction.
func (s *SemesterService) Activate(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	return s.repo.Activate(ctx, id)
}

func (s *SemesterService) Update(ctx context.Context, actor domain.Actor, sem *domain.Semester) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if strings.TrimSpace(sem.Name) == "" {
		return domain.ValidationError("semester name is required")
	}
	return s.repo.Update(ctx, sem)
}

func (s *SemesterService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	return s.repo.Delete(ctx, id)
}
