package handler

import (
	"errors"
	"net/http"
	"strconv"

	"soundwars/internal/apperr"
	"soundwars/internal/auth"
	"soundwars/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error", "kind", ...details}. Unclassified
// errors are attached to the context for the request logger and hidden.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCreds),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if ae.Err != nil {
		_ = c.Error(ae.Err)
	}
	body := gin.H{}
	for k, v := range ae.Details {
		body[k] = v
	}
	body["error"] = ae.Message
	body["kind"] = ae.Kind
	if apperr.Retryable(err) {
		body["retryable"] = true
	}
	c.JSON(apperr.HTTPStatus(err), body)
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperr.KindValidation})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "kind": apperr.KindValidation})
		return 0, false
	}
	return uint(id), true
}

// pagination reads page and limit, defaulting to 1 and 20 with limit capped at 100.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paged(data interface{}, total int64, page, limit int) gin.H {
	pages := (total + int64(limit) - 1) / int64(limit)
	return gin.H{"data": data, "total": total, "page": page, "limit": limit, "pages": pages}
}
