package service

import (
	"context"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
)

type ReportService struct {
	repo *repository.ReportRepository
}

func NewReportService(repo *repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// Dashboard is admin-only; the aggregates expose portal-wide numbers.
func (s *ReportService) Dashboard(ctx context.Context, actor domain.Actor) (*repository.Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, domain.ForbiddenError("administrator capability required")
	}
	return s.repo.BuildDashboard(ctx)
}
