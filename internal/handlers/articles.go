package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mchernyshov/tradepost/internal/services"
	"github.com/mchernyshov/tradepost/pkg/response"
)

// ArticleHandler exposes HTTP endpoints for articles and their comments.
type ArticleHandler struct {
	articles *services.ArticleService
	comments *services.CommentService
}

// NewArticleHandler constructs an article handler.
func NewArticleHandler(articles *services.ArticleService, comments *services.CommentService) *ArticleHandler {
	return &ArticleHandler{articles: articles, comments: comments}
}

type createArticleRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body" validate:"max=100000"`
}

type updateArticleRequest struct {
	Title *string `json:"title" validate:"omitempty,max=255"`
	Body  *string `json:"body" validate:"omitempty,max=100000"`
}

// Create adds a new article owned by the caller.
func (h *ArticleHandler) Create(c *gin.Context) {
	var payload createArticleRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	article, err := h.articles.Create(requestContext(c), services.CreateArticleInput{
		OwnerID: currentUserID(c),
		Title:   payload.Title,
		Body:    payload.Body,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, article)
}

// Get returns a single article.
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	article, err := h.articles.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, article)
}

// List returns articles newest-first.
func (h *ArticleHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 25)
	offset := parseIntQuery(c, "offset", 0)

	rows, err := h.articles.List(requestContext(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// Update applies partial changes to an article owned by the caller.
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload updateArticleRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	article, err := h.articles.Update(requestContext(c), currentUserID(c), id, services.UpdateArticleInput{
		Title: payload.Title,
		Body:  payload.Body,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, article)
}

// Delete removes an article owned by the caller.
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.articles.Delete(requestContext(c), currentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListComments returns the article's comments oldest-first.
func (h *ArticleHandler) ListComments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.comments.ListForArticle(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// CreateComment posts a comment under the article and notifies its owner.
func (h *ArticleHandler) CreateComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload createCommentRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	comment, err := h.comments.CreateOnArticle(requestContext(c), currentUserID(c), id, payload.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment)
}
