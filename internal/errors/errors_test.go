package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", ValidationError("bad input"), http.StatusBadRequest},
		{"unauthorized", UnauthorizedError("no standing"), http.StatusUnauthorized},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"internal", InternalError("boom", nil), http.StatusInternalServerError},
		{"external", ExternalError("upstream", nil), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := InternalError("wrapper", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "root cause")
}

func TestError_WithContext(t *testing.T) {
	err := ValidationError("bad vote").WithContext("stream_id", "s1").WithContext("index", 7)

	resp := err.ToResponse()
	assert.Equal(t, "bad vote", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "s1", resp.Context["stream_id"])
	assert.Equal(t, 7, resp.Context["index"])
}

func TestAsStructuredError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsStructuredError(nil))
	})

	t.Run("structured error passes through", func(t *testing.T) {
		orig := NotFoundError("stream not found")
		got := AsStructuredError(fmt.Errorf("wrapped: %w", orig))
		require.NotNil(t, got)
		assert.Equal(t, TypeNotFound, got.Type)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := AsStructuredError(errors.New("plain"))
		require.NotNil(t, got)
		assert.Equal(t, TypeInternal, got.Type)
	})
}
