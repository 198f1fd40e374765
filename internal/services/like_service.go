package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
	apperrors "github.com/mchernyshov/tradepost/pkg/errors"
)

// likerPageSize bounds each page of the join-table scan so the resolver keeps
// working for products with very large like counts.
const likerPageSize = 500

// LikeService manages product likes and resolves like-based audiences.
type LikeService struct {
	db *gorm.DB
}

// NewLikeService constructs a LikeService.
func NewLikeService(db *gorm.DB) (*LikeService, error) {
	if db == nil {
		return nil, errors.New("like service: db is required")
	}
	return &LikeService{db: db}, nil
}

// Like records the user's interest in a product. Liking twice is a no-op.
func (s *LikeService) Like(ctx context.Context, userID, productID uint) error {
	ctx = ensureContext(ctx)

	var product models.Product
	if err := s.db.WithContext(ctx).Select("id").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("like service: load product: %w", err)
	}

	like := models.Like{UserID: userID, ProductID: productID}
	if err := s.db.WithContext(ctx).
		Where(models.Like{UserID: userID, ProductID: productID}).
		FirstOrCreate(&like).Error; err != nil {
		return fmt.Errorf("like service: create like: %w", err)
	}
	return nil
}

// Unlike removes the user's like. Removing a non-existent like is a no-op.
func (s *LikeService) Unlike(ctx context.Context, userID, productID uint) error {
	ctx = ensureContext(ctx)

	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("like service: delete like: %w", err)
	}
	return nil
}

// CountForProduct returns the number of likes on a product.
func (s *LikeService) CountForProduct(ctx context.Context, productID uint) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("like service: count: %w", err)
	}
	return count, nil
}

// UserIDsForProduct resolves every user who liked the product, in like order.
// The scan pages through the join table on an id cursor rather than loading
// the relation eagerly, so it stays bounded for popular products.
func (s *LikeService) UserIDsForProduct(ctx context.Context, productID uint) ([]uint, error) {
	ctx = ensureContext(ctx)

	var userIDs []uint
	cursor := uint(0)
	for {
		var page []models.Like
		if err := s.db.WithContext(ctx).
			Select("id", "user_id").
			Where("product_id = ? AND id > ?", productID, cursor).
			Order("id ASC").
			Limit(likerPageSize).
			Find(&page).Error; err != nil {
			return nil, fmt.Errorf("like service: resolve likers: %w", err)
		}
		if len(page) == 0 {
			return userIDs, nil
		}
		for _, like := range page {
			userIDs = append(userIDs, like.UserID)
			cursor = like.ID
		}
		if len(page) < likerPageSize {
			return userIDs, nil
		}
	}
}
