package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mchernyshov/tradepost/internal/services"
	"github.com/mchernyshov/tradepost/pkg/response"
)

// ProductHandler exposes HTTP endpoints for listings, their likes and comments.
type ProductHandler struct {
	products *services.ProductService
	likes    *services.LikeService
	comments *services.CommentService
}

// NewProductHandler constructs a product handler.
func NewProductHandler(products *services.ProductService, likes *services.LikeService, comments *services.CommentService) *ProductHandler {
	return &ProductHandler{products: products, likes: likes, comments: comments}
}

type createProductRequest struct {
	Title       string         `json:"title" validate:"required,max=255"`
	Description string         `json:"description" validate:"max=10000"`
	Price       int64          `json:"price" validate:"min=0"`
	Attributes  map[string]any `json:"attributes"`
}

type updateProductRequest struct {
	Title       *string        `json:"title" validate:"omitempty,max=255"`
	Description *string        `json:"description" validate:"omitempty,max=10000"`
	Attributes  map[string]any `json:"attributes"`
}

type updatePriceRequest struct {
	Price int64 `json:"price" validate:"min=0"`
}

type createCommentRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// Create adds a new listing owned by the caller.
func (h *ProductHandler) Create(c *gin.Context) {
	var payload createProductRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	product, err := h.products.Create(requestContext(c), services.CreateProductInput{
		OwnerID:     currentUserID(c),
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Attributes:  payload.Attributes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, product)
}

// Get returns a single listing.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// List returns listings with pagination metadata.
func (h *ProductHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 25)
	offset := parseIntQuery(c, "offset", 0)

	rows, total, err := h.products.List(requestContext(c), services.ListProductsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, rows, &response.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// Update applies partial changes to a listing owned by the caller.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload updateProductRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	product, err := h.products.Update(requestContext(c), currentUserID(c), id, services.UpdateProductInput{
		Title:       payload.Title,
		Description: payload.Description,
		Attributes:  payload.Attributes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// UpdatePrice changes the price of a listing owned by the caller. The fan-out
// to likers happens behind this endpoint; the response never waits on it.
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload updatePriceRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	product, err := h.products.UpdatePrice(requestContext(c), currentUserID(c), id, payload.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// Delete removes a listing owned by the caller.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(requestContext(c), currentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Like records the caller's interest in a listing.
func (h *ProductHandler) Like(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.likes.Like(requestContext(c), currentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": true})
}

// Unlike removes the caller's like from a listing.
func (h *ProductHandler) Unlike(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.likes.Unlike(requestContext(c), currentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": false})
}

// Likers returns the ids of every user who liked the listing.
func (h *ProductHandler) Likers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userIDs, err := h.likes.UserIDsForProduct(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user_ids": userIDs, "count": len(userIDs)})
}

// ListComments returns the listing's comments oldest-first.
func (h *ProductHandler) ListComments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.comments.ListForProduct(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// CreateComment posts a comment under the listing and notifies its owner.
func (h *ProductHandler) CreateComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload createCommentRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	comment, err := h.comments.CreateOnProduct(requestContext(c), currentUserID(c), id, payload.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment)
}
