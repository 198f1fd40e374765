package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/mchernyshov/tradepost/internal/database/testutil"
	"github.com/mchernyshov/tradepost/internal/models"
)

func TestPurgeSoftDeleted(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

	oldProduct := seedProduct(t, db, "old lamp")
	freshProduct := seedProduct(t, db, "fresh lamp")
	liveProduct := seedProduct(t, db, "live lamp")

	oldArticle := seedArticle(t, db, "old notes")

	markDeleted(t, db, &models.Product{}, oldProduct.ID, now.AddDate(0, 0, -40))
	markDeleted(t, db, &models.Product{}, freshProduct.ID, now.AddDate(0, 0, -5))
	markDeleted(t, db, &models.Article{}, oldArticle.ID, now.AddDate(0, 0, -40))

	cutoff := now.AddDate(0, 0, -30)
	stats, err := PurgeSoftDeleted(context.Background(), db, cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Products)
	require.Equal(t, int64(1), stats.Articles)

	assertCount := func(model any, expected int64) {
		var count int64
		require.NoError(t, db.Unscoped().Model(model).Count(&count).Error)
		require.Equal(t, expected, count)
	}

	// The fresh soft-delete and the live row survive the purge.
	assertCount(&models.Product{}, 2)
	assertCount(&models.Article{}, 0)

	var live models.Product
	require.NoError(t, db.First(&live, liveProduct.ID).Error)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	clock := fixedClock{current: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}

	product := seedProduct(t, db, "doomed lamp")
	markDeleted(t, db, &models.Product{}, product.ID, clock.Now().AddDate(0, 0, -40))

	// Notification rows are never part of the purge.
	notification := models.Notification{
		RecipientID: 7,
		Type:        models.NotificationNewComment,
		Message:     "kept forever",
	}
	require.NoError(t, db.Create(&notification).Error)

	c := NewCleaner(db,
		WithNow(clock.Now),
		WithRetentionDays(30),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(context.Background()))

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Product{}).Count(&count).Error)
	require.Equal(t, int64(0), count)

	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCleanerRunOnceNilDB(t *testing.T) {
	c := NewCleaner(nil)
	require.NoError(t, c.RunOnce(context.Background()))
}

func seedProduct(t *testing.T, db *gorm.DB, title string) *models.Product {
	t.Helper()

	product := &models.Product{OwnerID: 1, Title: title, Price: 1000}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedArticle(t *testing.T, db *gorm.DB, title string) *models.Article {
	t.Helper()

	article := &models.Article{OwnerID: 1, Title: title, Body: "body"}
	require.NoError(t, db.Create(article).Error)
	return article
}

func markDeleted(t *testing.T, db *gorm.DB, model any, id uint, at time.Time) {
	t.Helper()

	require.NoError(t, db.Unscoped().Model(model).Where("id = ?", id).
		Update("deleted_at", at).Error)
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}
