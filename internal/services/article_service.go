package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
	apperrors "github.com/mchernyshov/tradepost/pkg/errors"
)

// CreateArticleInput defines attributes for a new article.
type CreateArticleInput struct {
	OwnerID uint
	Title   string
	Body    string
}

// UpdateArticleInput carries partial article updates; nil fields are left as-is.
type UpdateArticleInput struct {
	Title *string
	Body  *string
}

// ArticleService manages editorial posts.
type ArticleService struct {
	db *gorm.DB
}

// NewArticleService constructs an ArticleService.
func NewArticleService(db *gorm.DB) (*ArticleService, error) {
	if db == nil {
		return nil, errors.New("article service: db is required")
	}
	return &ArticleService{db: db}, nil
}

// Create persists a new article.
func (s *ArticleService) Create(ctx context.Context, input CreateArticleInput) (*models.Article, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}

	article := models.Article{
		OwnerID: input.OwnerID,
		Title:   title,
		Body:    input.Body,
	}
	if err := s.db.WithContext(ctx).Create(&article).Error; err != nil {
		return nil, fmt.Errorf("article service: create: %w", err)
	}
	return &article, nil
}

// Get loads a single article with its owner.
func (s *ArticleService) Get(ctx context.Context, id uint) (*models.Article, error) {
	ctx = ensureContext(ctx)

	var article models.Article
	if err := s.db.WithContext(ctx).Preload("Owner").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("article service: load: %w", err)
	}
	return &article, nil
}

// List returns articles newest-first.
func (s *ArticleService) List(ctx context.Context, limit, offset int) ([]models.Article, error) {
	ctx = ensureContext(ctx)

	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	var rows []models.Article
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("article service: list: %w", err)
	}
	return rows, nil
}

// Update applies partial changes to an article owned by the caller.
func (s *ArticleService) Update(ctx context.Context, ownerID, id uint, input UpdateArticleInput) (*models.Article, error) {
	ctx = ensureContext(ctx)

	article, err := s.loadOwned(ctx, ownerID, id)
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
	if input.Body != nil {
		updates["body"] = *input.Body
	}

	if len(updates) == 0 {
		return article, nil
	}

	if err := s.db.WithContext(ctx).Model(article).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("article service: update: %w", err)
	}
	return article, nil
}

// Delete soft-deletes an article owned by the caller.
func (s *ArticleService) Delete(ctx context.Context, ownerID, id uint) error {
	ctx = ensureContext(ctx)

	article, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(article).Error; err != nil {
		return fmt.Errorf("article service: delete: %w", err)
	}
	return nil
}

func (s *ArticleService) loadOwned(ctx context.Context, ownerID, id uint) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("article service: load: %w", err)
	}
	if article.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	return &article, nil
}
