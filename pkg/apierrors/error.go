package apierrors

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/boardwalk-dev/boardwalk/pkg/translator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JsonErr is the body of every error response.
type JsonErr struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e JsonErr) Error() string {
	return fmt.Sprintf("Code: %s, Message: %s", e.Code, e.Message)
}

func (e JsonErr) WithDetails(details map[string]interface{}) JsonErr {
	if len(details) > 0 {
		e.Details = details
	}
	return e
}

var exposeDetails atomic.Bool

// SetDebug controls whether internal error text and panic stacks are
// returned to clients in "details".
func SetDebug(enabled bool) {
	exposeDetails.Store(enabled)
}

// CreateError generates a JsonErr with a translated message.
func CreateError(code string, lang string) JsonErr {
	return JsonErr{Code: code, Message: GetTransErrorMsg(code, lang)}
}

// GetTransErrorMsg retrieves the translated error message.
func GetTransErrorMsg(msgKey string, lang string) string {
	return translator.Localize(msgKey, lang)
}

// Respond aborts the request with the status and body for code.
func Respond(c *gin.Context, lang, code string, details map[string]interface{}) {
	c.AbortWithStatusJSON(Status(code), CreateError(code, lang).WithDetails(details))
}

// Internal logs err and aborts with INTERNAL_SERVER_ERROR. The error text
// only reaches the client in debug mode.
func Internal(c *gin.Context, lang string, err error) {
	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	_ = c.Error(err)

	var details map[string]interface{}
	if exposeDetails.Load() {
		details = map[string]interface{}{"error": err.Error()}
	}
	Respond(c, lang, CodeInternal, details)
}

// Recovery returns a gin.RecoveryFunc that turns panics into
// INTERNAL_SERVER_ERROR responses.
func Recovery(lang func(*gin.Context) string) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		stack := string(debug.Stack())
		zap.L().Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("stack", stack))

		var details map[string]interface{}
		if exposeDetails.Load() {
			details = map[string]interface{}{
				"panic": fmt.Sprint(recovered),
				"stack": stack,
			}
		}
		Respond(c, lang(c), CodeInternal, details)
	}
}
