package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
	"paperarchive/internal/service/email"
)

// NotificationService persists in-app notifications and optionally mirrors
// them to email. It satisfies NotificationSink.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	emails   email.Sender
}

func NewNotificationService(
	repo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	emails email.Sender,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		emails:   emails,
	}
}

// Enqueue stores a notification for the user. Fire-and-forget: every failure
// is logged and swallowed so the triggering operation never fails because a
// message could not be delivered.
func (s *NotificationService) Enqueue(ctx context.Context, userID int64, title, message string, severity domain.Severity, deepLink string) {
	n := &domain.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		Message:  message,
		Severity: severity,
		DeepLink: deepLink,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		log.Printf("warning: failed to enqueue notification for user %d: %v", userID, err)
		return
	}

	if s.emails == nil {
		return
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		log.Printf("warning: failed to resolve user %d for email notification: %v", userID, err)
		return
	}
	s.emails.Send(email.Message{
		ToName:  user.FullName,
		ToEmail: user.Email,
		Subject: title,
		Body:    message,
	})
}

func (s *NotificationService) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}
