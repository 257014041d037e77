package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/boardwalk-dev/boardwalk/internal/auth"
	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Create(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type TokenIssuer interface {
	GenerateJWT(userID, email string) (string, error)
}

type AuthHandler struct {
	users      UserService
	tokens     TokenIssuer
	bcryptCost int
}

func NewAuthHandler(users UserService, tokens TokenIssuer, bcryptCost int) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, authValidationCode(err), nil)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			respond(c, apierrors.CodeUserAlreadyExists, nil)
			return
		}
		respondError(c, err)
		return
	}

	h.issue(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, apierrors.CodeMissingFields, nil)
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			respond(c, apierrors.CodeInvalidCredentials, nil)
			return
		}
		respondError(c, err)
		return
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respond(c, apierrors.CodeInvalidCredentials, nil)
		return
	}

	h.issue(c, http.StatusOK, user)
}

func (h *AuthHandler) issue(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.GenerateJWT(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, types.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			respond(c, apierrors.CodeUserNotFound, nil)
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
