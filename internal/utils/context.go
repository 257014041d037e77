package utils

import (
	"errors"
	"fmt"

	"github.com/boardwalk-dev/boardwalk/internal/middleware"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/gin-gonic/gin"
)

// ErrUnauthenticated means the request carries no authenticated user.
var ErrUnauthenticated = errors.New("user not authenticated")

// GetCurrentUser returns the user AuthMiddleware stored on the request.
func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	value, exists := ctx.Get(types.ContextUserKey)
	if !exists {
		return middleware.AuthenticatedUser{}, ErrUnauthenticated
	}

	user, ok := value.(middleware.AuthenticatedUser)
	if !ok || user.ID == "" {
		return middleware.AuthenticatedUser{}, fmt.Errorf("%w: unexpected %T in context", ErrUnauthenticated, value)
	}

	return user, nil
}

func GetCurrentUserID(ctx *gin.Context) (string, error) {
	user, err := GetCurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
