package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mchernyshov/tradepost/internal/database/testutil"
	"github.com/mchernyshov/tradepost/internal/middleware"
	"github.com/mchernyshov/tradepost/internal/models"
	"github.com/mchernyshov/tradepost/internal/services"
	"github.com/mchernyshov/tradepost/pkg/response"
)

func newNotificationHandlerForTest(t *testing.T) (*NotificationHandler, *services.NotificationStore) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	store, err := services.NewNotificationStore(db)
	require.NoError(t, err)
	service, err := services.NewNotificationService(store, nil, nil)
	require.NoError(t, err)
	return NewNotificationHandler(service), store
}

func authedContext(t *testing.T, rec *httptest.ResponseRecorder, userID uint) *gin.Context {
	t.Helper()

	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.CtxUserIDKey, userID)
	return c
}

func TestNotificationHandlerListAndMarkRead(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newNotificationHandlerForTest(t)

	row, err := store.Create(context.Background(), services.CreateNotificationInput{
		RecipientID: 7,
		Type:        models.NotificationNewComment,
		Message:     "Someone commented on your article \"Field notes\"",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.List(authedContext(t, rec, 7))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, payload.Success)

	dataBytes, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	var rows []models.Notification
	require.NoError(t, json.Unmarshal(dataBytes, &rows))
	require.Len(t, rows, 1)
	require.False(t, rows[0].IsRead)

	readRec := httptest.NewRecorder()
	c := authedContext(t, readRec, 7)
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(row.ID))}}
	handler.MarkRead(c)
	require.Equal(t, http.StatusOK, readRec.Code)

	// Marking again still succeeds.
	againRec := httptest.NewRecorder()
	c = authedContext(t, againRec, 7)
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(row.ID))}}
	handler.MarkRead(c)
	require.Equal(t, http.StatusOK, againRec.Code)
}

func TestNotificationHandlerMarkReadForeignRowIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newNotificationHandlerForTest(t)

	row, err := store.Create(context.Background(), services.CreateNotificationInput{
		RecipientID: 7,
		Type:        models.NotificationNewComment,
		Message:     "hi",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, 99)
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(row.ID))}}
	handler.MarkRead(c)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationHandlerMarkReadRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newNotificationHandlerForTest(t)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, 7)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "abc"}}
	handler.MarkRead(c)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandlerUnreadCountAndMarkAllRead(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newNotificationHandlerForTest(t)

	for i := 0; i < 2; i++ {
		_, err := store.Create(context.Background(), services.CreateNotificationInput{
			RecipientID: 7,
			Type:        models.NotificationPriceChange,
			Message:     "price changed",
		})
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	handler.UnreadCount(authedContext(t, rec, 7))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	data := payload.Data.(map[string]any)
	require.EqualValues(t, 2, data["count"])

	allRec := httptest.NewRecorder()
	handler.MarkAllRead(authedContext(t, allRec, 7))
	require.Equal(t, http.StatusOK, allRec.Code)

	afterRec := httptest.NewRecorder()
	handler.UnreadCount(authedContext(t, afterRec, 7))
	require.NoError(t, json.Unmarshal(afterRec.Body.Bytes(), &payload))
	data = payload.Data.(map[string]any)
	require.EqualValues(t, 0, data["count"])
}
