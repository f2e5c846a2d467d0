package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeUnsupportedFormat, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeBookNotFound, http.StatusNotFound},
		{CodeJobNotFound, http.StatusNotFound},
		{CodeBookNotProcessed, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimitExceeded, http.StatusTooManyRequests},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, New(tc.code, "msg").HTTPStatus, string(tc.code))
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, CodeDatabaseError, "query failed")

	assert.True(t, IsCode(err, CodeDatabaseError))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "query failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsAppError(t *testing.T) {
	t.Run("passthrough", func(t *testing.T) {
		orig := New(CodeBookNotFound, "book not found")
		assert.Same(t, orig, AsAppError(orig))
	})

	t.Run("wraps foreign error", func(t *testing.T) {
		appErr := AsAppError(stderrors.New("boom"))
		require.NotNil(t, appErr)
		assert.Equal(t, CodeUnknown, appErr.Code)
	})
}

func TestWithDetail(t *testing.T) {
	err := New(CodeUnsupportedFormat, "unsupported file format").WithDetail(".pdf")
	assert.Contains(t, err.Detail, ".pdf")
}

func TestIsCode(t *testing.T) {
	assert.False(t, IsCode(nil, CodeUnknown))
	assert.False(t, IsCode(stderrors.New("plain"), CodeUnknown))
	assert.True(t, IsCode(ErrRateLimitExceeded, CodeRateLimitExceeded))
}
