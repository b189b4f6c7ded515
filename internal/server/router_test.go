package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manisht21/file-sender/internal/config"
	"github.com/manisht21/file-sender/internal/ingest"
)

type fakeStore struct {
	pingErr error
}

func (f *fakeStore) Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "uploads/" + name, nil
}

func (f *fakeStore) PublicURL(name string) string {
	return "http://localhost:9000/uploads/" + name
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.pingErr
}

func newTestRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Metrics: config.MetricsConfig{PrometheusPath: "/metrics"},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(Dependencies{
		Config:        cfg,
		ObjectStore:   store,
		IngestService: ingest.NewService(store, 10<<20, log),
	})
}

func newUploadRequest(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func assertCORSHeaders(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", rr.Header().Get("Access-Control-Allow-Headers"))
}

func TestPreflightAnsweredBeforeValidation(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assertCORSHeaders(t, rr)
}

func TestUploadFlowThroughRouter(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := newUploadRequest(t, "notes.txt", "text/plain", []byte("hello world"))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assertCORSHeaders(t, rr)

	var resp ingest.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "File uploaded successfully", resp.Message)
	assert.Equal(t, "notes.txt", resp.File.Name)
	assert.NotEmpty(t, resp.File.Path)
	assert.NotEmpty(t, resp.File.URL)
}

func TestErrorResponsesCarryCORSHeaders(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assertCORSHeaders(t, rr)
}

func TestUnknownRouteCarriesCORSHeaders(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assertCORSHeaders(t, rr)
}

func TestPanicRecoveredIntoJSONError(t *testing.T) {
	router := newTestRouter(&fakeStore{})
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assertCORSHeaders(t, rr)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp["error"])
	assert.NotContains(t, rr.Body.String(), "goroutine")
}

func TestLivenessEndpoint(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReadinessReflectsObjectStore(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	degraded := newTestRouter(&fakeStore{pingErr: errors.New("bucket missing")})

	rr = httptest.NewRecorder()
	degraded.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "degraded")
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Body.String())
}
