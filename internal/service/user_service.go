package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
)

type UserService struct {
	repo  *repository.UserRepository
	audit *repository.AuditRepository
}

func NewUserService(repo *repository.UserRepository, audit *repository.AuditRepository) *UserService {
	return &UserService{repo: repo, audit: audit}
}

// ResolveActor maps a verified token subject to the portal user record.
func (s *UserService) ResolveActor(ctx context.Context, subject string) (domain.Actor, error) {
	user, err := s.repo.FindBySubject(ctx, subject)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("failed to resolve actor: %w", err)
	}
	if user == nil {
		return domain.Actor{}, domain.ForbiddenError("subject %s is not registered in the portal", subject)
	}
	return domain.Actor{ID: user.ID, Role: user.Role}, nil
}

func (s *UserService) Create(ctx context.Context, actor domain.Actor, user *domain.User) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if strings.TrimSpace(user.Subject) == "" || strings.TrimSpace(user.Email) == "" {
		return domain.ValidationError("subject and email are required")
	}
	if user.Role != domain.RoleAdmin && user.Role != domain.RoleInstructor {
		return domain.ValidationError("unknown role %q", user.Role)
	}
	return s.repo.Create(ctx, user)
}

func (s *UserService) List(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ForbiddenError("administrator capability required")
	}
	return s.repo.List(ctx)
}

// Update edits a user record. Role changes are audited.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, user *domain.User) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if user.Role != domain.RoleAdmin && user.Role != domain.RoleInstructor {
		return domain.ValidationError("unknown role %q", user.Role)
	}

	current, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if current == nil {
		return domain.NotFoundError("user %d", user.ID)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	if current.Role != user.Role {
		rec := &domain.AuditRecord{
			ActorID: actor.ID,
			Action:  domain.AuditUserRoleChanged,
			Detail:  fmt.Sprintf("user %d: %s -> %s", user.ID, current.Role, user.Role),
		}
		if err := s.audit.Record(ctx, rec); err != nil {
			log.Printf("warning: failed to write audit record for user %d: %v", user.ID, err)
		}
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}
	if actor.ID == id {
		return domain.ConflictError("administrators cannot delete their own account")
	}
	return s.repo.Delete(ctx, id)
}
