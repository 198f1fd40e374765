package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/database/testutil"
	"github.com/mchernyshov/tradepost/internal/models"
	apperrors "github.com/mchernyshov/tradepost/pkg/errors"
)

func newCommentService(t *testing.T, db *gorm.DB) *CommentService {
	t.Helper()

	store, err := NewNotificationStore(db)
	require.NoError(t, err)
	notifier, err := NewNotificationService(store, nil, nil)
	require.NoError(t, err)
	svc, err := NewCommentService(db, notifier)
	require.NoError(t, err)
	return svc
}

func TestCommentOnArticleNotifiesOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCommentService(t, db)

	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "Olga", "Petrova")
	author := seedUser(t, db, "author@example.com", "Ivan", "Sidorov")
	article := seedArticle(t, db, owner.ID, "Field notes")

	comment, err := svc.CreateOnArticle(ctx, author.ID, article.ID, "Great read")
	require.NoError(t, err)
	assert.Equal(t, author.ID, comment.AuthorID)
	require.NotNil(t, comment.ArticleID)
	assert.Equal(t, article.ID, *comment.ArticleID)

	var rows []models.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, owner.ID, rows[0].RecipientID)
	assert.Equal(t, models.NotificationNewComment, rows[0].Type)
	assert.Equal(t, `Ivan Sidorov commented on your article "Field notes"`, rows[0].Message)
	require.NotNil(t, rows[0].CommentID)
	assert.Equal(t, comment.ID, *rows[0].CommentID)
}

func TestCommentOnOwnArticleSkipsNotification(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCommentService(t, db)

	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "Olga", "Petrova")
	article := seedArticle(t, db, owner.ID, "Field notes")

	comment, err := svc.CreateOnArticle(ctx, owner.ID, article.ID, "Replying to myself")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommentOnProductNotifiesOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCommentService(t, db)

	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "Olga", "Petrova")
	author := seedUser(t, db, "author@example.com", "", "")
	product := seedProduct(t, db, owner.ID, "Old lamp", 2000)

	comment, err := svc.CreateOnProduct(ctx, author.ID, product.ID, "Is it still available?")
	require.NoError(t, err)
	require.NotNil(t, comment.ProductID)
	assert.Equal(t, product.ID, *comment.ProductID)

	var rows []models.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, `Someone commented on your product "Old lamp"`, rows[0].Message)
	require.NotNil(t, rows[0].ProductID)
	assert.Equal(t, product.ID, *rows[0].ProductID)
}

func TestCommentValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCommentService(t, db)

	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "", "")
	article := seedArticle(t, db, owner.ID, "Field notes")

	_, err := svc.CreateOnArticle(ctx, owner.ID, article.ID, "   ")
	assert.Error(t, err)

	_, err = svc.CreateOnArticle(ctx, owner.ID, 999, "hello")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.CreateOnProduct(ctx, owner.ID, 999, "hello")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCommentPersistsWhenNotificationFails(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCommentService(t, db)

	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "", "")
	article := seedArticle(t, db, owner.ID, "Field notes")

	// Author id 999 does not resolve, so the notification is dropped, but the
	// comment write already happened.
	comment, err := svc.CreateOnArticle(ctx, 999, article.ID, "ghost comment")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommentListing(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCommentService(t, db)

	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "Olga", "Petrova")
	author := seedUser(t, db, "author@example.com", "Ivan", "Sidorov")
	article := seedArticle(t, db, owner.ID, "Field notes")
	product := seedProduct(t, db, owner.ID, "Old lamp", 2000)

	first, err := svc.CreateOnArticle(ctx, author.ID, article.ID, "first")
	require.NoError(t, err)
	second, err := svc.CreateOnArticle(ctx, author.ID, article.ID, "second")
	require.NoError(t, err)
	_, err = svc.CreateOnProduct(ctx, author.ID, product.ID, "unrelated")
	require.NoError(t, err)

	rows, err := svc.ListForArticle(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, second.ID, rows[1].ID)
	require.NotNil(t, rows[0].Author)
	assert.Equal(t, "Ivan Sidorov", rows[0].Author.DisplayName())

	rows, err = svc.ListForProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "unrelated", rows[0].Body)
}
