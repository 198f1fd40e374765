package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
	"github.com/mchernyshov/tradepost/pkg/metrics"
)

// CreateNotificationInput defines the attributes required to persist a
// notification row. Exactly one recipient per row; fan-out callers invoke
// Create once per recipient.
type CreateNotificationInput struct {
	RecipientID uint
	Type        models.NotificationType
	Message     string

	ArticleID *uint
	ProductID *uint
	CommentID *uint
}

// NotificationStore is pure persistence for notification rows: no business
// rules, no delivery. Ownership checks are folded into write predicates so a
// row can never be read or mutated on behalf of another user.
type NotificationStore struct {
	db *gorm.DB
}

// NewNotificationStore constructs a NotificationStore.
func NewNotificationStore(db *gorm.DB) (*NotificationStore, error) {
	if db == nil {
		return nil, errors.New("notification store: db is required")
	}
	return &NotificationStore{db: db}, nil
}

// Create persists a new unread notification row.
func (s *NotificationStore) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	if input.RecipientID == 0 {
		return nil, errors.New("notification store: recipient id is required")
	}
	if input.Type == "" {
		return nil, errors.New("notification store: type is required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, errors.New("notification store: message is required")
	}

	row := models.Notification{
		RecipientID: input.RecipientID,
		Type:        input.Type,
		Message:     input.Message,
		ArticleID:   input.ArticleID,
		ProductID:   input.ProductID,
		CommentID:   input.CommentID,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("notification store: create: %w", err)
	}

	metrics.NotificationsCreated.WithLabelValues(string(row.Type)).Inc()
	return &row, nil
}

// ListForUser returns the user's notifications ordered by recency.
func (s *NotificationStore) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	ctx = ensureContext(ctx)

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification store: list: %w", err)
	}
	return rows, nil
}

// CountUnread returns the number of unread notifications for the user.
func (s *NotificationStore) CountUnread(ctx context.Context, userID uint) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notification store: count unread: %w", err)
	}
	return count, nil
}

// MarkRead flips one unread notification to read. Ownership and the unread
// state live in the UPDATE predicate, so there is no check-then-update race
// and re-invocation on an already-read row affects zero rows without error.
func (s *NotificationStore) MarkRead(ctx context.Context, userID, notificationID uint) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", notificationID, userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("notification store: mark read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkAllRead flips every unread notification of the user to read.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("notification store: mark all read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// OwnedBy reports whether a notification exists and belongs to the user. The
// handler layer uses it to tell "already read" apart from "not yours".
func (s *NotificationStore) OwnedBy(ctx context.Context, userID, notificationID uint) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("notification store: owned by: %w", err)
	}
	return count > 0, nil
}
