package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointer/shared/failure"
	"appointer/transport/http/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		kind     string
		contains string
	}{
		{"overlap", failure.Overlap("conflicts with booking b1"), http.StatusConflict, "overlap", "b1"},
		{"outside availability", failure.OutsideAvailability("no window"), http.StatusUnprocessableEntity, "outside_availability", "no window"},
		{"storage hides the cause", failure.Storage(errors.New("pq: deadlock")), http.StatusServiceUnavailable, "storage", "unavailable"},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError, "internal", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.WithError(rec, tt.err)

			assert.Equal(t, tt.code, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, tt.kind, body["kind"])
			assert.Contains(t, body["error"], tt.contains)
			assert.NotContains(t, body["error"], "pq")
		})
	}
}

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithJSON(rec, http.StatusCreated, map[string]string{"id": "b1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"data": map[string]any{"id": "b1"}}, decode(t, rec))
}
