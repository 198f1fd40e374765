package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
	apperrors "github.com/mchernyshov/tradepost/pkg/errors"
	"github.com/mchernyshov/tradepost/pkg/logger"
)

// CreateProductInput defines attributes for a new listing.
type CreateProductInput struct {
	OwnerID     uint
	Title       string
	Description string
	Price       int64
	Attributes  map[string]any
}

// UpdateProductInput carries partial listing updates; nil fields are left as-is.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Attributes  map[string]any
}

// ListProductsInput bounds listing queries.
type ListProductsInput struct {
	Limit  int
	Offset int
}

// ProductService manages listings. Price changes flow through the
// notification service so likers hear about them.
type ProductService struct {
	db       *gorm.DB
	notifier *NotificationService
	log      *zap.Logger
}

// NewProductService constructs a ProductService. The notifier may be nil for
// headless use; price changes then mutate without fanning out.
func NewProductService(db *gorm.DB, notifier *NotificationService) (*ProductService, error) {
	if db == nil {
		return nil, errors.New("product service: db is required")
	}
	return &ProductService{db: db, notifier: notifier, log: logger.WithModule("products")}, nil
}

// Create persists a new listing.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if input.Price < 0 {
		return nil, apperrors.NewBadRequest("price must not be negative")
	}

	product := models.Product{
		OwnerID:     input.OwnerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
	}

	if input.Attributes != nil {
		data, err := json.Marshal(input.Attributes)
		if err != nil {
			return nil, fmt.Errorf("product service: marshal attributes: %w", err)
		}
		product.Attributes = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("product service: create: %w", err)
	}
	return &product, nil
}

// Get loads a single listing with its owner.
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	ctx = ensureContext(ctx)

	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Owner").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("product service: load: %w", err)
	}
	return &product, nil
}

// List returns listings newest-first along with the total count.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) ([]models.Product, int64, error) {
	ctx = ensureContext(ctx)

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("product service: count: %w", err)
	}

	var rows []models.Product
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("product service: list: %w", err)
	}
	return rows, total, nil
}

// Update applies partial changes to a listing owned by the caller.
func (s *ProductService) Update(ctx context.Context, ownerID, id uint, input UpdateProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	product, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("title must not be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Attributes != nil {
		data, err := json.Marshal(input.Attributes)
		if err != nil {
			return nil, fmt.Errorf("product service: marshal attributes: %w", err)
		}
		updates["attributes"] = datatypes.JSON(data)
	}

	if len(updates) == 0 {
		return product, nil
	}

	if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("product service: update: %w", err)
	}
	return product, nil
}

// UpdatePrice applies a price mutation once and, only when the price actually
// changed, fans the change out to every user who liked the product. An
// unchanged price is a full no-op: no write, no notifications.
func (s *ProductService) UpdatePrice(ctx context.Context, ownerID, id uint, newPrice int64) (*models.Product, error) {
	ctx = ensureContext(ctx)

	if newPrice < 0 {
		return nil, apperrors.NewBadRequest("price must not be negative")
	}

	product, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldPrice := product.Price
	if oldPrice == newPrice {
		return product, nil
	}

	if err := s.db.WithContext(ctx).Model(product).Update("price", newPrice).Error; err != nil {
		return nil, fmt.Errorf("product service: update price: %w", err)
	}
	product.Price = newPrice

	if s.notifier != nil {
		notified, notifyErr := s.notifier.NotifyPriceChange(ctx, PriceChangeInput{
			Product:  product,
			OldPrice: oldPrice,
			NewPrice: newPrice,
		})
		if notifyErr != nil {
			// The price change is already durable; fan-out failure is not a
			// request failure.
			s.log.Warn("price change fan-out failed",
				zap.Uint("product_id", product.ID),
				zap.Error(notifyErr),
			)
		} else if notified > 0 {
			s.log.Info("price change fan-out",
				zap.Uint("product_id", product.ID),
				zap.Int("recipients", notified),
			)
		}
	}

	return product, nil
}

// Delete soft-deletes a listing owned by the caller; the maintenance cleaner
// purges it permanently after the retention window.
func (s *ProductService) Delete(ctx context.Context, ownerID, id uint) error {
	ctx = ensureContext(ctx)

	product, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(product).Error; err != nil {
		return fmt.Errorf("product service: delete: %w", err)
	}
	return nil
}

func (s *ProductService) loadOwned(ctx context.Context, ownerID, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("product service: load: %w", err)
	}
	if product.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	return &product, nil
}
