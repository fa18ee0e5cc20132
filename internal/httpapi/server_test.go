package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens-gateway/internal/gateway"
)

func TestWriteErrorMapsGatewayError(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	rec := httptest.NewRecorder()
	writeError(rec, gateway.New(gateway.FileNotFound, "missing"))
	require.Equal(http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(string(gateway.FileNotFound), body["code"])
}

func TestWriteErrorDefaultsPlainErrorToInternal(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	rec := httptest.NewRecorder()
	writeError(rec, errors.New("boom"))
	require.Equal(http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(string(gateway.InternalError), body["code"])
}

func TestBadRequestWritesFormattedMessage(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	rec := httptest.NewRecorder()
	badRequest(rec, "%s is required", "file_path")
	require.Equal(http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal("file_path is required", body["error"])
}

func TestMountDirMiddlewareAttachesOverride(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	var got string
	h := mountDirMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = gateway.MountDir(r.Context(), "/default")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Mount-Dir", "/mnt/other")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal("/mnt/other", got)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal("/default", got)
}

func TestCorrelationIDMiddlewarePreservesExistingHeader(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	correlationIDMiddleware(okHandler()).ServeHTTP(rec, req)
	require.Equal("abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCorrelationIDMiddlewareGeneratesID(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	correlationIDMiddleware(okHandler()).ServeHTTP(rec, req)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
