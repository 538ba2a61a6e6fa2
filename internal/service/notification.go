package service

import (
	"context"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/push"
	"sharesphere-backend/internal/repository"
)

// Notifier persists a notification and pushes it to the user's live
// connections. Other services call it for every lifecycle side effect, so
// failures are logged and swallowed rather than allowed to fail the
// operation that triggered them.
type Notifier struct {
	noteRepo repository.NotificationRepository
	pusher   Pusher
}

func NewNotifier(noteRepo repository.NotificationRepository, pusher Pusher) *Notifier {
	return &Notifier{noteRepo: noteRepo, pusher: pusher}
}

func (n *Notifier) Notify(ctx context.Context, userID string, typ domain.NotificationType, title, message string, relatedID *string) {
	note := &domain.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		RelatedID: relatedID,
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.ErrorContext(ctx, "Failed to store notification", "user_id", userID, "type", typ, "error", err)
		return
	}
	n.pusher.Publish(userID, push.EventNotification, note)
}

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) List(ctx context.Context, userID string, limit int32) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.noteRepo.List(ctx, userID, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.noteRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.noteRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID string) (int32, error) {
	return s.noteRepo.CountUnread(ctx, userID)
}
