package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/agame/internal/model"
)

func TestWriteErrorMapsModelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrNoIdentity, http.StatusUnauthorized, CodeNoIdentity},
		{model.ErrInvalidAmount, http.StatusBadRequest, CodeInvalidAmount},
		{model.ErrPointsOverflow, http.StatusBadRequest, CodeInvalidAmount},
		{fmt.Errorf("wrapped: %w", model.ErrUserNotFound), http.StatusNotFound, CodeUserNotFound},
		{NewCSRFError("token missing"), http.StatusForbidden, CodeCSRFFailed},
		{NewRateLimitedError(), http.StatusTooManyRequests, CodeRateLimited},
		{errors.New("db down"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("password=hunter2"))
	assert.NotContains(t, rr.Body.String(), "hunter2")
}
