package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/manisht21/file-sender/internal/ingest"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// send posts the payload as a multipart "file" part and decodes the
// ingestion response. A non-2xx status becomes an error carrying the
// server's error message when present, the HTTP status text otherwise.
func (q *Queue) send(ctx context.Context, payload FilePayload) (*ingest.StoredFile, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// CreateFormFile would pin the part to application/octet-stream, so
	// the part is built by hand to carry the declared content type.
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(payload.Name)))
	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(payload.Data); err != nil {
		return nil, fmt.Errorf("write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish form body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.opts.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("upload rejected: %s", errResp.Error)
		}
		return nil, fmt.Errorf("upload failed: %s", resp.Status)
	}

	var decoded ingest.Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &decoded.File, nil
}
