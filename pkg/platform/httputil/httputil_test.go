package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "touristid/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
		body   string
	}{
		{dErrors.CodeValidation, http.StatusBadRequest, "validation_error"},
		{dErrors.CodeMalformedPayload, http.StatusBadRequest, "malformed_payload"},
		{dErrors.CodeInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{dErrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{dErrors.CodeResolution, http.StatusNotFound, "resolution_failed"},
		{dErrors.CodeKeyGeneration, http.StatusInternalServerError, "key_generation_failed"},
		{dErrors.CodeSigning, http.StatusInternalServerError, "signing_failed"},
		{dErrors.CodeRender, http.StatusInternalServerError, "render_failed"},
		{dErrors.CodeRateLimited, http.StatusTooManyRequests, "rate_limited"},
	}

	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "message"))

			assert.Equal(t, tc.status, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tc.body, body["error"])
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "message", body["error_description"])
		})
	}
}

func TestWriteError_IncludesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.NewWithDetails(dErrors.CodeValidation, "Missing required fields", map[string]any{
		"required": []string{"fullName", "nationality", "emergencyContact"},
		"error":    "must not override",
	}))

	body := decodeBody(t, w)
	assert.Equal(t, "validation_error", body["error"])
	assert.Equal(t, []any{"fullName", "nationality", "emergencyContact"}, body["required"])
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("database exploded"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, w.Body.String(), "database exploded")
}
