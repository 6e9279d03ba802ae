// Package review implements the review endpoints of the EduList API.
package review

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

// Review is a user review of an institute.
type Review struct {
	ID          string `json:"_id"`
	InstituteID string `json:"institute"`
	UserID      string `json:"user"`
	UserName    string `json:"userName"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	CreatedAt   string `json:"createdAt"`
}

// CreateRequest is the payload for posting a review.
type CreateRequest struct {
	InstituteID string `json:"institute" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment" validate:"required,min=3,max=2000"`
}

// Service calls the /reviews endpoints.
type Service struct {
	client     *transport.Client
	normalizer *normalize.Normalizer
	validate   *validator.Validator
	log        *logger.Logger
}

// New creates the review service.
func New(client *transport.Client, normalizer *normalize.Normalizer, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{client: client, normalizer: normalizer, validate: validate, log: log}
}

// ListByInstitute fetches the reviews of one institute. Fails soft.
func (s *Service) ListByInstitute(ctx context.Context, instituteID string) []Review {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/reviews/institute/"+url.PathEscape(instituteID), &raw); err != nil {
		s.log.ReadSuppressed("review.list_by_institute", err)
		return []Review{}
	}
	return normalize.Into[Review](s.normalizer.List(normalize.Reviews, raw))
}

// Create posts a review for an institute.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Review, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("review.create")
	}

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/reviews", req, &raw); err != nil {
		return nil, err
	}
	var r Review
	if err := json.Unmarshal(s.normalizer.Record("review", raw), &r); err != nil {
		return nil, apperr.BadResponse("unexpected review response", err)
	}
	return &r, nil
}

// Delete removes a review. Owners can delete their own; admins can delete any.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("review id is required").WithOp("review.delete")
	}
	return s.client.Delete(ctx, "/reviews/"+url.PathEscape(id), nil)
}
