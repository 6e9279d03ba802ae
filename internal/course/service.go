// Package course implements the course endpoints of the EduList API.
package course

import (
	"context"
	"encoding/json"
	"net/url"

	"edulist_client/internal/normalize"
	"edulist_client/internal/transport"
	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"
	"edulist_client/platform/validator"
)

// Course is a course offered by an institute.
type Course struct {
	ID          string  `json:"_id"`
	InstituteID string  `json:"institute"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Duration    string  `json:"duration"`
	Fee         float64 `json:"fee"`
	Mode        string  `json:"mode"` // online, offline, hybrid
	Category    string  `json:"category"`
	CreatedAt   string  `json:"createdAt"`
}

// CreateRequest is the payload for creating or updating a course.
type CreateRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	Duration    string  `json:"duration" validate:"required,max=100"`
	Fee         float64 `json:"fee" validate:"min=0"`
	Mode        string  `json:"mode" validate:"required,oneof=online offline hybrid"`
	Category    string  `json:"category" validate:"required,max=100"`
}

// Service calls the /courses endpoints.
type Service struct {
	client     *transport.Client
	normalizer *normalize.Normalizer
	validate   *validator.Validator
	log        *logger.Logger
}

// New creates the course service.
func New(client *transport.Client, normalizer *normalize.Normalizer, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{client: client, normalizer: normalizer, validate: validate, log: log}
}

// ListByInstitute fetches the courses of one institute. Fails soft.
func (s *Service) ListByInstitute(ctx context.Context, instituteID string) []Course {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/courses/institute/"+url.PathEscape(instituteID), &raw); err != nil {
		s.log.ReadSuppressed("course.list_by_institute", err)
		return []Course{}
	}
	return normalize.Into[Course](s.normalizer.List(normalize.Courses, raw))
}

// ListMy fetches the courses of the institute owned by the current account.
// Fails soft.
func (s *Service) ListMy(ctx context.Context) []Course {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/courses/my", &raw); err != nil {
		s.log.ReadSuppressed("course.list_my", err)
		return []Course{}
	}
	return normalize.Into[Course](s.normalizer.List(normalize.Courses, raw))
}

// Get fetches one course by ID.
func (s *Service) Get(ctx context.Context, id string) (*Course, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/courses/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}
	var c Course
	if err := json.Unmarshal(s.normalizer.Record("course", raw), &c); err != nil {
		return nil, apperr.BadResponse("unexpected course response", err)
	}
	return &c, nil
}

// Create adds a course to the caller's institute.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Course, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("course.create")
	}

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/courses", req, &raw); err != nil {
		return nil, err
	}
	var c Course
	if err := json.Unmarshal(s.normalizer.Record("course", raw), &c); err != nil {
		return nil, apperr.BadResponse("unexpected course response", err)
	}
	return &c, nil
}

// Update replaces a course's editable fields.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*Course, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("course.update")
	}

	var raw json.RawMessage
	if err := s.client.Put(ctx, "/courses/"+url.PathEscape(id), req, &raw); err != nil {
		return nil, err
	}
	var c Course
	if err := json.Unmarshal(s.normalizer.Record("course", raw), &c); err != nil {
		return nil, apperr.BadResponse("unexpected course response", err)
	}
	return &c, nil
}

// Delete removes a course.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("course id is required").WithOp("course.delete")
	}
	return s.client.Delete(ctx, "/courses/"+url.PathEscape(id), nil)
}
