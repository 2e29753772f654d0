package services

import (
	"context"
	"fmt"

	"gestion-hospitaliere/internal/modules/notifications/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"
)

const (
	notificationNotFound = "Notification non trouvée"
	unreadLimit          = 50
)

// NotificationStore notifications in-app d'un utilisateur
type NotificationStore interface {
	Insert(ctx context.Context, n *dto.Notification) error
	List(ctx context.Context, userID string, page utils.Pagination) ([]dto.Notification, int64, error)
	Unread(ctx context.Context, userID string, limit int) ([]dto.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	DeleteRead(ctx context.Context, userID string) (int64, error)
}

type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) List(ctx context.Context, userID string, page utils.Pagination) ([]dto.Notification, int64, error) {
	items, total, err := s.store.List(ctx, userID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("lecture notifications: %w", err)
	}
	return items, total, nil
}

func (s *NotificationService) Unread(ctx context.Context, userID string) (*dto.UnreadResponse, error) {
	items, count, err := s.store.Unread(ctx, userID, unreadLimit)
	if err != nil {
		return nil, fmt.Errorf("lecture notifications non lues: %w", err)
	}
	return &dto.UnreadResponse{Count: count, Notifications: items}, nil
}

// MarkRead 404 si la notification n'existe pas ou appartient à un autre utilisateur
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	ok, err := s.store.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("marquage notification: %w", err)
	}
	if !ok {
		return apperror.NotFound(notificationNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.store.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("suppression notification: %w", err)
	}
	if !ok {
		return apperror.NotFound(notificationNotFound)
	}
	return nil
}

func (s *NotificationService) DeleteRead(ctx context.Context, userID string) (int64, error) {
	return s.store.DeleteRead(ctx, userID)
}
