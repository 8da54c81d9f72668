package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/universidad-api/internal/middleware"
	"github.com/noah-isme/universidad-api/internal/models"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
	"github.com/noah-isme/universidad-api/pkg/response"
)

// actorFromContext returns the username behind the request, or "" for anonymous calls.
func actorFromContext(c *gin.Context) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.Username
	}
	return ""
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.WithDetails(appErrors.ErrValidation, "identificador inválido", []appErrors.FieldError{
			{Field: name, Message: "El identificador debe ser un número entero positivo"},
		}))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body and leaves dest untouched.
func bindOptionalJSON(c *gin.Context, dest interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

func claimsOrUnauthorized(c *gin.Context) *models.JWTClaims {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}
