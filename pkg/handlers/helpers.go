package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"csv-chart-api/pkg/render"
	"csv-chart-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// errorKind はUI側でメッセージを出し分けるためのエラー種別を返します。
func errorKind(err error) string {
	var maxBytesErr *http.MaxBytesError
	switch {
	case services.IsTooLarge(err), errors.As(err, &maxBytesErr):
		return "too_large"
	case errors.Is(err, services.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, services.ErrParse):
		return "parse_error"
	case errors.Is(err, services.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, services.ErrNoDataset):
		return "no_dataset"
	case errors.Is(err, render.ErrNothingToRender), errors.Is(err, render.ErrNonNumericValue):
		return "render_error"
	case errors.Is(err, render.ErrUnsupportedFormat):
		return "unsupported_format"
	}
	return "internal_error"
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case services.IsTooLarge(err), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrMalformedPayload),
		errors.Is(err, services.ErrParse),
		errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, render.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoDataset):
		return http.StatusNotFound
	case errors.Is(err, render.ErrNothingToRender), errors.Is(err, render.ErrNonNumericValue):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError はエラーをJSONレスポンスとして返します。セッションは継続可能です。
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ [%s %s] %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"kind":    errorKind(err),
	})
}

// queryInt parses an optional integer query parameter; invalid values fall back to def.
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
