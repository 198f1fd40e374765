package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
	"github.com/mchernyshov/tradepost/internal/realtime"
)

func seedUser(t *testing.T, db *gorm.DB, email, firstName, lastName string) *models.User {
	t.Helper()

	user := models.User{
		Email:     email,
		Password:  "hashed",
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedProduct(t *testing.T, db *gorm.DB, ownerID uint, title string, price int64) *models.Product {
	t.Helper()

	product := models.Product{OwnerID: ownerID, Title: title, Price: price}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func seedArticle(t *testing.T, db *gorm.DB, ownerID uint, title string) *models.Article {
	t.Helper()

	article := models.Article{OwnerID: ownerID, Title: title, Body: "body"}
	require.NoError(t, db.Create(&article).Error)
	return &article
}

// pushSink records envelopes delivered through the gateway.
type pushSink struct {
	mu        sync.Mutex
	delivered []realtime.Envelope
}

func (s *pushSink) Deliver(env realtime.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, env)
}

func (s *pushSink) envelopes() []realtime.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]realtime.Envelope, len(s.delivered))
	copy(out, s.delivered)
	return out
}

// staticLikers resolves a fixed recipient list.
type staticLikers struct {
	userIDs []uint
	err     error
	calls   int
}

func (r *staticLikers) UserIDsForProduct(_ context.Context, _ uint) ([]uint, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.userIDs, nil
}
