package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		err    *APIError
		code   ErrorCode
		status int
	}{
		{NotFound("post"), ErrNotFound, http.StatusNotFound},
		{Unauthorized("no token"), ErrUnauthorized, http.StatusUnauthorized},
		{Conflict("busy"), ErrConflict, http.StatusConflict},
		{ValidationError("text", "required"), ErrValidation, http.StatusUnprocessableEntity},
		{BadRequest("bad"), ErrBadRequest, http.StatusBadRequest},
		{InternalError("boom"), ErrInternalError, http.StatusInternalServerError},
		{BadGateway("remote down"), ErrBadGateway, http.StatusBadGateway},
		{ServiceUnavailable("redis"), ErrServiceUnavail, http.StatusServiceUnavailable},
		{StorageError("disk"), ErrStorage, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.err.Status)
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: post not found", NotFound("post").Error())
	assert.Equal(t, "VALIDATION_ERROR: required (field: text)", ValidationError("text", "required").Error())
	assert.Equal(t, "detail", BadGateway("x").WithDetails("detail").Details)
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("WHATEVER").StatusCode())
}
