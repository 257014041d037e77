package handlers

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidation makes validator errors report JSON field names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// fieldErrors flattens validator errors into field -> failed tag.
func fieldErrors(err error) map[string]interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]interface{}{"body": "malformed JSON"}
	}

	fields := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// bind decodes and validates the JSON body, answering VALIDATION_ERROR on
// failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respond(c, apierrors.CodeValidation, map[string]interface{}{"fields": fieldErrors(err)})
		return false
	}
	return true
}

// authValidationCode picks the auth error code for a failed register or
// login payload: missing fields first, then password length, then email.
func authValidationCode(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.CodeMissingFields
	}

	code := ""
	for _, fe := range verrs {
		switch {
		case fe.Tag() == "required":
			return apierrors.CodeMissingFields
		case fe.Field() == "password" && fe.Tag() == "min":
			code = apierrors.CodePasswordTooShort
		case fe.Tag() == "email" && code == "":
			code = apierrors.CodeInvalidEmail
		}
	}
	if code == "" {
		code = apierrors.CodeValidation
	}
	return code
}
