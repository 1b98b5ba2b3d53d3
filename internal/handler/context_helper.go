package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saju-admin-api/internal/middleware"
	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.ClaimsFromContext(c)
}

// suggestionID reads the :id path segment.
func suggestionID(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "suggestion id is required")
	}
	return id, nil
}
