package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/ids"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

type NotificationService struct {
	notifications repository.NotificationRepository
	log           zerolog.Logger
	now           func() time.Time
}

func NewNotificationService(notifications repository.NotificationRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, log: log, now: time.Now}
}

type NotificationList struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

func (s *NotificationService) List(ctx context.Context, userID string) (NotificationList, error) {
	items, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return NotificationList{}, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return NotificationList{}, err
	}
	return NotificationList{Items: items, Unread: unread}, nil
}

// MarkRead is idempotent. Only the recipient may mark a notification.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (models.Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Notification{}, ErrNotFound
		}
		return models.Notification{}, err
	}
	if n.UserID != userID {
		return models.Notification{}, ErrNotAuthorized
	}
	if n.Read {
		return n, nil
	}
	if err := s.notifications.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Notification{}, ErrNotFound
		}
		return models.Notification{}, err
	}
	n.Read = true
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.log.Debug().Str("user_id", userID).Int("count", n).Msg("notifications marked read")
	return n, nil
}

// CreateReminder stores an unread medication reminder for userID.
func (s *NotificationService) CreateReminder(ctx context.Context, userID string, reminder models.MedicationReminder) (models.Notification, error) {
	n := models.Notification{
		ID:       ids.New(),
		UserID:   userID,
		Type:     models.NotificationTypeReminder,
		Date:     s.now().UTC(),
		Reminder: &reminder,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}
