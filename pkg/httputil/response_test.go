package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-api/pkg/errors"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", errors.NotFound("booking", nil), http.StatusNotFound},
		{"bad request", errors.BadRequest("bad date", nil), http.StatusBadRequest},
		{"invalid interval", errors.InvalidInterval("start after end"), http.StatusBadRequest},
		{"conflict", errors.Conflict("slot taken"), http.StatusConflict},
		{"integration", errors.Integration("history out of sync", nil), http.StatusInternalServerError},
		{"plain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := record(func(c *gin.Context) { Error(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestErrorHidesInternalDetails(t *testing.T) {
	w := record(func(c *gin.Context) { Error(c, errors.Internal(assert.AnError)) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Message)
}

func TestOKAndCreated(t *testing.T) {
	w := record(func(c *gin.Context) { OK(c, gin.H{"id": "1"}) })
	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	w = record(func(c *gin.Context) { Created(c, gin.H{"id": "1"}) })
	assert.Equal(t, http.StatusCreated, w.Code)
}
