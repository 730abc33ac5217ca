package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	adapter.WriteErrorResponse(rec, req, LinkError("broken internal link").WithContext("target", "/x").Build())

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var payload HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "broken internal link", payload.Error)
	require.Equal(t, "links", payload.Code)
	require.Equal(t, "/x", payload.Details["target"])
}

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	require.Equal(t, http.StatusOK, adapter.StatusCodeFor(nil))
	require.Equal(t, http.StatusBadRequest, adapter.StatusCodeFor(ConfigError("x").Build()))
	require.Equal(t, http.StatusServiceUnavailable, adapter.StatusCodeFor(NewError(CategoryRuntime, "x").Build()))
	require.Equal(t, http.StatusInternalServerError, adapter.StatusCodeFor(InternalError("x").Build()))
}
