package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(store *fakeObjectStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/api"), newTestService(store))
	return router
}

func newUploadRequest(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart error: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp["error"]
}

func TestUploadWithoutFileReturnsBadRequest(t *testing.T) {
	router := newTestRouter(&fakeObjectStore{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if got := decodeError(t, rr.Body.Bytes()); got != "No file provided" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestUploadOversizedFileReturnsBadRequest(t *testing.T) {
	store := &fakeObjectStore{}
	router := newTestRouter(store)

	req := newUploadRequest(t, "big.bin", "application/octet-stream", bytes.Repeat([]byte("a"), 11<<20))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if got := decodeError(t, rr.Body.Bytes()); got != "File size exceeds 10MB limit" {
		t.Fatalf("unexpected error message: %q", got)
	}
	if store.putCount != 0 {
		t.Fatalf("expected no Put calls, got %d", store.putCount)
	}
}

func TestUploadStoresValidFile(t *testing.T) {
	store := &fakeObjectStore{}
	router := newTestRouter(store)

	payload := bytes.Repeat([]byte("a"), 1<<20)
	req := newUploadRequest(t, "photo.png", "image/png", payload)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !resp.Success || resp.Message != "File uploaded successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.File.Name != "photo.png" {
		t.Fatalf("expected original name, got %q", resp.File.Name)
	}
	if resp.File.Size != int64(len(payload)) {
		t.Fatalf("unexpected size: %d", resp.File.Size)
	}
	if resp.File.Type != "image/png" {
		t.Fatalf("unexpected type: %q", resp.File.Type)
	}

	objectName := strings.TrimPrefix(resp.File.Path, "uploads/")
	if !storageNamePattern.MatchString(objectName) {
		t.Fatalf("storage name %q does not match naming scheme", objectName)
	}
	if !strings.HasSuffix(resp.File.URL, objectName) {
		t.Fatalf("expected URL for object %q, got %q", objectName, resp.File.URL)
	}
}

func TestUploadStoreFailureReturnsServerError(t *testing.T) {
	store := &fakeObjectStore{failures: []error{errors.New("bucket unreachable")}}
	router := newTestRouter(store)

	req := newUploadRequest(t, "notes.txt", "text/plain", []byte("hello"))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := decodeError(t, rr.Body.Bytes()); !strings.Contains(got, "bucket unreachable") {
		t.Fatalf("expected store error surfaced, got %q", got)
	}
}
