package handlers

import (
	"errors"

	"github.com/boardwalk-dev/boardwalk/internal/locker"
	"github.com/boardwalk-dev/boardwalk/internal/middleware"
	"github.com/boardwalk-dev/boardwalk/internal/reorder"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/boardwalk-dev/boardwalk/internal/utils"
	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, code string, details map[string]interface{}) {
	apierrors.Respond(c, middleware.GetLang(c), code, details)
}

// respondError maps domain errors to API error codes. Anything unexpected
// is logged and reported as INTERNAL_SERVER_ERROR.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		respond(c, apierrors.CodeNotFound, nil)
	case errors.Is(err, types.ErrForbidden):
		respond(c, apierrors.CodeUnauthorizedAccess, nil)
	case errors.Is(err, reorder.ErrSourceMismatch):
		respond(c, apierrors.CodePositionConflict, nil)
	case errors.Is(err, types.ErrInvalidReference):
		respond(c, apierrors.CodeValidation, map[string]interface{}{"reason": err.Error()})
	case errors.Is(err, utils.ErrInvalidID):
		respond(c, apierrors.CodeValidation, map[string]interface{}{"reason": err.Error()})
	case errors.Is(err, locker.ErrNotAcquired):
		respond(c, apierrors.CodeServiceUnavailable, nil)
	default:
		apierrors.Internal(c, middleware.GetLang(c), err)
	}
}

func currentUserID(c *gin.Context) (string, bool) {
	userID, err := utils.GetCurrentUserID(c)
	if err != nil {
		respond(c, apierrors.CodeInvalidToken, nil)
		return "", false
	}
	return userID, true
}

func uuidParam(c *gin.Context, name string) (string, bool) {
	id, err := utils.GetUUIDParam(c, name)
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return id, true
}
