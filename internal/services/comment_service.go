package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
	apperrors "github.com/mchernyshov/tradepost/pkg/errors"
	"github.com/mchernyshov/tradepost/pkg/logger"
)

// CommentService manages comments on articles and products. Creating a comment
// triggers the owner notification through the notification service; the comment
// write is durable regardless of what happens to the notification.
type CommentService struct {
	db       *gorm.DB
	notifier *NotificationService
	log      *zap.Logger
}

// NewCommentService constructs a CommentService. The notifier may be nil for
// headless use; comments then persist without notifying anyone.
func NewCommentService(db *gorm.DB, notifier *NotificationService) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	return &CommentService{db: db, notifier: notifier, log: logger.WithModule("comments")}, nil
}

// CreateOnArticle posts a comment under an article and notifies the article's
// owner unless the author is the owner.
func (s *CommentService) CreateOnArticle(ctx context.Context, authorID, articleID uint, body string) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewBadRequest("comment body is required")
	}

	var article models.Article
	if err := s.db.WithContext(ctx).First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("comment service: load article: %w", err)
	}

	comment := models.Comment{
		AuthorID:  authorID,
		Body:      body,
		ArticleID: &article.ID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create: %w", err)
	}

	s.notifyOwner(ctx, authorID, NewCommentInput{
		OwnerID:       article.OwnerID,
		ResourceKind:  "article",
		ResourceTitle: article.Title,
		ArticleID:     &article.ID,
		CommentID:     &comment.ID,
	})

	return &comment, nil
}

// CreateOnProduct posts a comment under a product and notifies the product's
// owner unless the author is the owner.
func (s *CommentService) CreateOnProduct(ctx context.Context, authorID, productID uint, body string) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewBadRequest("comment body is required")
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("comment service: load product: %w", err)
	}

	comment := models.Comment{
		AuthorID:  authorID,
		Body:      body,
		ProductID: &product.ID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create: %w", err)
	}

	s.notifyOwner(ctx, authorID, NewCommentInput{
		OwnerID:       product.OwnerID,
		ResourceKind:  "product",
		ResourceTitle: product.Title,
		ProductID:     &product.ID,
		CommentID:     &comment.ID,
	})

	return &comment, nil
}

// ListForArticle returns an article's comments oldest-first with their authors.
func (s *CommentService) ListForArticle(ctx context.Context, articleID uint) ([]models.Comment, error) {
	return s.list(ensureContext(ctx), "article_id = ?", articleID)
}

// ListForProduct returns a product's comments oldest-first with their authors.
func (s *CommentService) ListForProduct(ctx context.Context, productID uint) ([]models.Comment, error) {
	return s.list(ensureContext(ctx), "product_id = ?", productID)
}

func (s *CommentService) list(ctx context.Context, query string, arg uint) ([]models.Comment, error) {
	var rows []models.Comment
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where(query, arg).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("comment service: list: %w", err)
	}
	return rows, nil
}

// notifyOwner loads the author and hands off to the notification service. The
// comment itself is already persisted, so failures here are logged and dropped.
func (s *CommentService) notifyOwner(ctx context.Context, authorID uint, input NewCommentInput) {
	if s.notifier == nil {
		return
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		s.log.Warn("comment notification skipped: author lookup failed",
			zap.Uint("author_id", authorID),
			zap.Error(err),
		)
		return
	}

	input.Actor = &author
	if _, err := s.notifier.NotifyNewComment(ctx, input); err != nil {
		s.log.Warn("comment notification failed",
			zap.Uint("owner_id", input.OwnerID),
			zap.Error(err),
		)
	}
}
