// Package upload implements the file upload endpoints of the EduList API.
// Uploads run on extended deadlines distinct from the default request
// timeout; a deadline failure surfaces as a retryable timeout error.
package upload

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"edulist_client/internal/normalize"
	"edulist_client/internal/transport"
	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"
)

const (
	singleTimeout = 30 * time.Second
	multiTimeout  = 60 * time.Second
)

// Result is the backend's description of a stored file.
type Result struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

// Service calls the /upload endpoints.
type Service struct {
	client        *transport.Client
	singleTimeout time.Duration
	multiTimeout  time.Duration
	log           *logger.Logger
}

// New creates the upload service.
func New(client *transport.Client, log *logger.Logger) *Service {
	return &Service{
		client:        client,
		singleTimeout: singleTimeout,
		multiTimeout:  multiTimeout,
		log:           log,
	}
}

// WithTimeouts overrides the upload deadlines. Used by configuration and tests.
func (s *Service) WithTimeouts(single, multi time.Duration) *Service {
	if single > 0 {
		s.singleTimeout = single
	}
	if multi > 0 {
		s.multiTimeout = multi
	}
	return s
}

// SingleFile uploads one file.
func (s *Service) SingleFile(ctx context.Context, name string, content io.Reader) (*Result, error) {
	if name == "" {
		return nil, apperr.Validation("file name is required").WithOp("upload.single")
	}

	files := []transport.File{{Field: "image", Name: name, Content: content}}

	var raw json.RawMessage
	if err := s.client.PostMultipart(ctx, "/upload/single", files, nil, s.singleTimeout, &raw); err != nil {
		return nil, err
	}

	var res Result
	if err := json.Unmarshal(normalize.Record("file", raw), &res); err != nil {
		return nil, apperr.BadResponse("unexpected upload response", err)
	}
	return &res, nil
}

// NamedFile pairs a file name with its content for multi-file uploads.
type NamedFile struct {
	Name    string
	Content io.Reader
}

// MultiFile uploads several files in one request.
func (s *Service) MultiFile(ctx context.Context, files []NamedFile) ([]Result, error) {
	if len(files) == 0 {
		return nil, apperr.Validation("at least one file is required").WithOp("upload.multi")
	}

	parts := make([]transport.File, 0, len(files))
	for _, f := range files {
		if f.Name == "" {
			return nil, apperr.Validation("file name is required").WithOp("upload.multi")
		}
		parts = append(parts, transport.File{Field: "images", Name: f.Name, Content: f.Content})
	}

	var raw json.RawMessage
	if err := s.client.PostMultipart(ctx, "/upload/multiple", parts, nil, s.multiTimeout, &raw); err != nil {
		return nil, err
	}

	list, _ := normalize.List("files", raw)
	results := normalize.Into[Result](list)
	return results, nil
}
