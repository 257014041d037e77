package utils

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid id")

// GetUUIDParam reads a path parameter that must hold a UUID and returns it
// in canonical form.
func GetUUIDParam(ctx *gin.Context, name string) (string, error) {
	value := ctx.Param(name)

	if value == "" {
		return "", fmt.Errorf("%s not found: %w", name, ErrInvalidID)
	}

	return ParseUUID(value)
}

// ParseUUID validates id and returns its canonical lower-case form.
func ParseUUID(id string) (string, error) {
	parsed, err := uuid.Parse(id)

	if err != nil {
		return "", fmt.Errorf("%q: %w", id, ErrInvalidID)
	}

	return parsed.String(), nil
}
