package transport

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"edulist_client/platform/apperr"
)

// File is one part of a multipart upload.
type File struct {
	Field   string // form field name
	Name    string // file name reported to the backend
	Content io.Reader
}

// PostMultipart issues a multipart/form-data POST. Uploads carry their own
// deadline, longer than the default request timeout, so the upload uses a
// dedicated client whose lifetime is bounded by the request context alone.
func (c *Client) PostMultipart(ctx context.Context, path string, files []File, fields map[string]string, timeout time.Duration, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := writer.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "create form file", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return apperr.Wrap(apperr.KindInternal, "read upload content", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return apperr.Wrap(apperr.KindInternal, "write form field", err)
		}
	}
	if err := writer.Close(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "finalize multipart body", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "create request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	upload := &Client{
		httpClient: &http.Client{},
		baseURL:    c.baseURL,
		tokens:     c.tokens,
		limiter:    c.limiter,
		log:        c.log,
	}
	return upload.dispatch(req, out)
}
