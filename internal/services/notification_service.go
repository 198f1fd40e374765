package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mchernyshov/tradepost/internal/models"
	"github.com/mchernyshov/tradepost/internal/realtime"
	apperrors "github.com/mchernyshov/tradepost/pkg/errors"
	"github.com/mchernyshov/tradepost/pkg/logger"
)

// LikerResolver resolves the set of users who liked a product, in like order.
// *LikeService satisfies it; tests substitute fakes.
type LikerResolver interface {
	UserIDsForProduct(ctx context.Context, productID uint) ([]uint, error)
}

// NewCommentInput carries everything the direct-notification path needs. The
// caller (comment service) has already loaded the resource and its owner.
type NewCommentInput struct {
	Actor         *models.User
	OwnerID       uint
	ResourceKind  string // "article" or "product", used in the message template
	ResourceTitle string

	ArticleID *uint
	ProductID *uint
	CommentID *uint
}

// PriceChangeInput describes a product mutation that may fan out.
type PriceChangeInput struct {
	Product  *models.Product
	OldPrice int64
	NewPrice int64
}

// NotificationService orchestrates the notification flow: render a message,
// write through the store, resolve recipients, and hand each recipient to the
// delivery gateway. Store writes are durable; pushes are best-effort.
type NotificationService struct {
	store   *NotificationStore
	gateway *realtime.Gateway
	likers  LikerResolver
	log     *zap.Logger
}

// NewNotificationService constructs a NotificationService. The gateway may be
// nil for headless operation (pushes become no-ops); the store may not.
func NewNotificationService(store *NotificationStore, gateway *realtime.Gateway, likers LikerResolver) (*NotificationService, error) {
	if store == nil {
		return nil, errors.New("notification service: store is required")
	}
	return &NotificationService{
		store:   store,
		gateway: gateway,
		likers:  likers,
		log:     logger.WithModule("notifications"),
	}, nil
}

// NotifyNewComment notifies a resource owner that someone commented. The
// entire operation is skipped when the actor is the owner: no row, no push.
func (s *NotificationService) NotifyNewComment(ctx context.Context, input NewCommentInput) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	if input.Actor == nil {
		return nil, errors.New("notification service: actor is required")
	}
	if input.OwnerID == 0 {
		return nil, errors.New("notification service: owner id is required")
	}
	if input.Actor.ID == input.OwnerID {
		return nil, nil
	}

	message := fmt.Sprintf("%s commented on your %s %q", input.Actor.DisplayName(), input.ResourceKind, input.ResourceTitle)

	row, err := s.store.Create(ctx, CreateNotificationInput{
		RecipientID: input.OwnerID,
		Type:        models.NotificationNewComment,
		Message:     message,
		ArticleID:   input.ArticleID,
		ProductID:   input.ProductID,
		CommentID:   input.CommentID,
	})
	if err != nil {
		return nil, err
	}

	s.push(row)
	return row, nil
}

// NotifyPriceChange fans a price change out to everyone who liked the product.
// An unchanged price is an idempotent no-op: zero rows, zero pushes. Each
// recipient is an isolated unit of work; one failure never blocks the rest.
// Returns the number of recipients notified durably.
func (s *NotificationService) NotifyPriceChange(ctx context.Context, input PriceChangeInput) (int, error) {
	ctx = ensureContext(ctx)

	if input.Product == nil {
		return 0, errors.New("notification service: product is required")
	}
	if input.NewPrice == input.OldPrice {
		return 0, nil
	}
	if s.likers == nil {
		return 0, errors.New("notification service: liker resolver is required for fan-out")
	}

	recipients, err := s.likers.UserIDsForProduct(ctx, input.Product.ID)
	if err != nil {
		return 0, fmt.Errorf("notification service: resolve likers: %w", err)
	}

	message := fmt.Sprintf("Price for %q changed from %s to %s",
		input.Product.Title, formatPrice(input.OldPrice), formatPrice(input.NewPrice))

	productID := input.Product.ID
	notified := 0
	for _, recipient := range recipients {
		row, createErr := s.store.Create(ctx, CreateNotificationInput{
			RecipientID: recipient,
			Type:        models.NotificationPriceChange,
			Message:     message,
			ProductID:   &productID,
		})
		if createErr != nil {
			s.log.Warn("price change notification failed for recipient",
				zap.Uint("recipient_id", recipient),
				zap.Uint("product_id", productID),
				zap.Error(createErr),
			)
			continue
		}
		notified++
		s.push(row)
	}

	return notified, nil
}

// ListMine returns the caller's notifications, newest first.
func (s *NotificationService) ListMine(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.store.ListForUser(ensureContext(ctx), userID)
}

// UnreadCount returns the caller's number of unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.CountUnread(ensureContext(ctx), userID)
}

// MarkRead marks one of the caller's notifications as read. Marking an
// already-read notification succeeds without effect; a notification that does
// not exist or belongs to someone else yields ErrNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	ctx = ensureContext(ctx)

	updated, err := s.store.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if updated > 0 {
		return nil
	}

	owned, err := s.store.OwnedBy(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if !owned {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the caller as read and
// returns the number of rows updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.store.MarkAllRead(ensureContext(ctx), userID)
}

// push hands a persisted row to the delivery gateway. A nil gateway is a
// silent no-op; the durable row is already the source of truth.
func (s *NotificationService) push(row *models.Notification) {
	data := map[string]any{}
	if row.ArticleID != nil {
		data["articleId"] = *row.ArticleID
	}
	if row.ProductID != nil {
		data["productId"] = *row.ProductID
	}
	if row.CommentID != nil {
		data["commentId"] = *row.CommentID
	}
	if len(data) == 0 {
		data = nil
	}

	s.gateway.NotifyUser(realtime.Push{
		UserID:    row.RecipientID,
		Type:      row.Type,
		Message:   row.Message,
		CreatedAt: row.CreatedAt,
		Data:      data,
	})
}
