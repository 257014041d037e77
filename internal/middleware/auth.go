package middleware

import (
	"errors"
	"strings"

	"github.com/boardwalk-dev/boardwalk/internal/auth"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/gin-gonic/gin"
)

type AuthenticatedUser struct {
	ID string `json:"id"`
}

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	VerifyJWT(token string) (string, error)
}

// AuthMiddleware requires a valid bearer token. When allowQuery is set the
// token may also come from the "token" query parameter, which browsers need
// for websocket upgrades.
func AuthMiddleware(verifier TokenVerifier, allowQuery bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := bearerToken(ctx.GetHeader("Authorization"))
		if tokenString == "" && allowQuery {
			tokenString = ctx.Query("token")
		}

		if tokenString == "" {
			apierrors.Respond(ctx, GetLang(ctx), apierrors.CodeNoToken, nil)
			return
		}

		userID, err := verifier.VerifyJWT(tokenString)
		if err != nil {
			code := apierrors.CodeInvalidToken
			if errors.Is(err, auth.ErrExpiredToken) {
				code = apierrors.CodeExpiredToken
			}
			apierrors.Respond(ctx, GetLang(ctx), code, nil)
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{ID: userID})
		ctx.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
