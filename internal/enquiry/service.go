// Package enquiry implements the enquiry endpoints of the EduList API.
package enquiry

import (
	"context"
	"encoding/json"
	"net/url"

	"edulist_client/internal/normalize"
	"edulist_client/internal/transport"
	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"
	"edulist_client/platform/phone"
	"edulist_client/platform/validator"
)

// Statuses an enquiry moves through.
const (
	StatusPending   = "pending"
	StatusContacted = "contacted"
	StatusResolved  = "resolved"
)

// Enquiry is a prospective student's enquiry to an institute.
type Enquiry struct {
	ID          string `json:"_id"`
	InstituteID string `json:"institute"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// CreateRequest is the payload for submitting an enquiry. The phone number
// is normalized to E.164 before dispatch.
type CreateRequest struct {
	InstituteID string `json:"institute" validate:"required"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Message     string `json:"message" validate:"required,min=5,max=2000"`
}

// Service calls the /enquiries endpoints.
type Service struct {
	client     *transport.Client
	normalizer *normalize.Normalizer
	validate   *validator.Validator
	log        *logger.Logger
}

// New creates the enquiry service.
func New(client *transport.Client, normalizer *normalize.Normalizer, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{client: client, normalizer: normalizer, validate: validate, log: log}
}

// Create submits an enquiry to an institute.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Enquiry, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("enquiry.create")
	}
	if !phone.IsValid(req.Phone) {
		return nil, apperr.Validation("Phone must be a valid phone number").WithOp("enquiry.create")
	}
	req.Phone = phone.NormalizeE164(req.Phone)

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/enquiries", req, &raw); err != nil {
		return nil, err
	}
	var e Enquiry
	if err := json.Unmarshal(s.normalizer.Record("enquiry", raw), &e); err != nil {
		return nil, apperr.BadResponse("unexpected enquiry response", err)
	}
	return &e, nil
}

// ListMy fetches the enquiries submitted by the current account. Fails soft.
func (s *Service) ListMy(ctx context.Context) []Enquiry {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/enquiries/my", &raw); err != nil {
		s.log.ReadSuppressed("enquiry.list_my", err)
		return []Enquiry{}
	}
	return normalize.Into[Enquiry](s.normalizer.List(normalize.Enquiries, raw))
}

// ListForInstitute fetches the enquiries received by the caller's institute.
// Fails soft.
func (s *Service) ListForInstitute(ctx context.Context) []Enquiry {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/enquiries/institute", &raw); err != nil {
		s.log.ReadSuppressed("enquiry.list_for_institute", err)
		return []Enquiry{}
	}
	return normalize.Into[Enquiry](s.normalizer.List(normalize.Enquiries, raw))
}

// UpdateStatus moves an enquiry to a new status.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Enquiry, error) {
	if id == "" {
		return nil, apperr.Validation("enquiry id is required").WithOp("enquiry.update_status")
	}
	switch status {
	case StatusPending, StatusContacted, StatusResolved:
	default:
		return nil, apperr.Validation("status must be one of: pending, contacted, resolved").WithOp("enquiry.update_status")
	}

	body := map[string]string{"status": status}
	var raw json.RawMessage
	if err := s.client.Put(ctx, "/enquiries/"+url.PathEscape(id)+"/status", body, &raw); err != nil {
		return nil, err
	}
	var e Enquiry
	if err := json.Unmarshal(s.normalizer.Record("enquiry", raw), &e); err != nil {
		return nil, apperr.BadResponse("unexpected enquiry response", err)
	}
	return &e, nil
}
