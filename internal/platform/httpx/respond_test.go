package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster-app/taskmaster/internal/shared"
)

func respond(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	res := httptest.NewRecorder()
	RespondError(res, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return res.Code, body
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"duplicate", shared.ErrDuplicate, http.StatusBadRequest, KindConflict},
		{"invalid credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized, KindAuth},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, KindAuth},
		{"not found", shared.ErrNotFound, http.StatusNotFound, KindNotFound},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := respond(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, body.Error.Kind)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	_, body := respond(t, errors.New("pq: connection refused at 10.0.0.3"))
	assert.NotContains(t, body.Error.Message, "10.0.0.3")
	assert.Equal(t, "internal server error", body.Error.Message)
}

func TestRespondErrorValidationFields(t *testing.T) {
	verr := shared.NewValidationError("title", "is required")
	verr.Add("priority", "must be one of: low medium high")

	status, body := respond(t, verr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, KindValidation, body.Error.Kind)
	assert.Len(t, body.Error.Fields, 2)
	assert.Equal(t, "is required", body.Error.Fields["title"])
}
