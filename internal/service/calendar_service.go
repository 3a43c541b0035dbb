package service

import (
	"context"
	"strings"
	"time"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
)

type CalendarService struct {
	repo *repository.CalendarRepository
}

func NewCalendarService(repo *repository.CalendarRepository) *CalendarService {
	return &CalendarService{repo: repo}
}

func (s *CalendarService) validate(ev *domain.AcademicEvent) error {
	if strings.TrimSpace(ev.Title) == "" {
		return domain.ValidationError("event title is required")
	}
	if !domain.ValidEventKind(ev.Kind) {
		return domain.ValidationError("unknown event kind %q", ev.Kind)
	}
	if ev.EndsAt.Before(ev.StartsAt) {
		return domain.ValidationError("event must not end before it starts")
	}
	return nil
}

func (s *CalendarService) Create(ctx context.Context, actor domain.Actor, ev *domain.AcademicEvent) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if err := s.validate(ev); err != nil {
		return err
	}
	return s.repo.Create(ctx, ev)
}

func (s *CalendarService) ListRange(ctx context.Context, from, to time.Time) ([]domain.AcademicEvent, error) {
	if to.Before(from) {
		return nil, domain.ValidationError("range end before start")
	}
	return s.repo.ListRange(ctx, from, to)
}

func (s *CalendarService) Update(ctx context.Context, actor domain.Actor, ev *domain.AcademicEvent) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if err := s.validate(ev); err != nil {
		return err
	}
	return s.repo.Update(ctx, ev)
}

func (s *CalendarService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	return s.repo.Delete(ctx, id)
}
