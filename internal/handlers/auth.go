package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	iauth "github.com/mchernyshov/tradepost/internal/auth"
	"github.com/mchernyshov/tradepost/internal/services"
	"github.com/mchernyshov/tradepost/pkg/metrics"
	"github.com/mchernyshov/tradepost/pkg/response"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(users *services.UserService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new account and issues an access token.
func (h *AuthHandler) Register(c *gin.Context) {
	var payload registerRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	user, err := h.users.Register(requestContext(c), services.RegisterUserInput{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register_failure").Inc()
		response.Error(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("register_success").Inc()

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:    user.ID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// Login verifies credentials and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload loginRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), payload.Email, payload.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login_failure").Inc()
		response.Error(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("login_success").Inc()

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:    user.ID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated caller's account.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
