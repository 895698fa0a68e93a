// Package tests holds assertions shared by HTTP tests.
package tests

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONResponse checks the status code and the JSON error body of recorder.
func AssertJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, status int, expected models.Error) {
	t.Helper()

	assert.Equal(t, status, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var actual models.Error
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &actual))
	assert.Equal(t, expected, actual)
}
