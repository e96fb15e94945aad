package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/ledfit-api/internal/domain"
	"github.com/ledfit-api/internal/pkg/id"
)

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	Create(ctx context.Context, userID string, req domain.CreateNotificationRequest) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID, userID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	SoftDelete(ctx context.Context, notificationID string) error
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	now := time.Now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Title:          req.Title,
		Content:        req.Content,
		Kind:           req.Kind,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.owned(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	if err := s.repo.MarkAsRead(ctx, notificationID); err != nil {
		return nil, err
	}
	n.Read = true
	return n, nil
}

func (s *service) Delete(ctx context.Context, notificationID, userID string) error {
	if _, err := s.owned(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, notificationID)
}

// owned loads a live notification and checks it belongs to userID.
func (s *service) owned(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.Deleted {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification %s belongs to another user: %w", notificationID, domain.ErrForbidden)
	}
	return n, nil
}
