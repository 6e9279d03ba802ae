// Package institute implements the institute endpoints of the EduList API.
package institute

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"edulist_client/internal/normalize"
	"edulist_client/internal/transport"
	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"
	"edulist_client/platform/validator"
)

// Institute is a listed educational institute.
type Institute struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Website     string   `json:"website"`
	Status      string   `json:"status"` // pending, approved, rejected
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
	Images      []string `json:"images"`
	Facilities  []string `json:"facilities"`
	OwnerID     string   `json:"owner"`
	CreatedAt   string   `json:"createdAt"`
}

// ListParams filters and paginates the public institute listing.
type ListParams struct {
	Search string
	City   string
	Type   string
	Page   int
	Limit  int
}

func (p ListParams) query() string {
	values := url.Values{}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	if p.City != "" {
		values.Set("city", p.City)
	}
	if p.Type != "" {
		values.Set("type", p.Type)
	}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// CreateRequest is the payload for creating or updating an institute.
type CreateRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Type        string   `json:"type" validate:"required,oneof=school college university coaching"`
	Address     string   `json:"address" validate:"required,max=500"`
	City        string   `json:"city" validate:"required,max=100"`
	State       string   `json:"state" validate:"required,max=100"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required"`
	Website     string   `json:"website" validate:"omitempty,url"`
	Images      []string `json:"images,omitempty"`
	Facilities  []string `json:"facilities,omitempty"`
}

// Service calls the /institutes endpoints.
type Service struct {
	client     *transport.Client
	normalizer *normalize.Normalizer
	validate   *validator.Validator
	log        *logger.Logger
}

// New creates the institute service.
func New(client *transport.Client, normalizer *normalize.Normalizer, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{client: client, normalizer: normalizer, validate: validate, log: log}
}

// List fetches the public, approved institute listing. Fails soft: on any
// failure the listing renders empty and the error is logged.
func (s *Service) List(ctx context.Context, params ListParams) []Institute {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/institutes/public"+params.query(), &raw); err != nil {
		s.log.ReadSuppressed("institute.list", err)
		return []Institute{}
	}
	return normalize.Into[Institute](s.normalizer.List(normalize.Institutes, raw))
}

// Get fetches one institute by ID.
func (s *Service) Get(ctx context.Context, id string) (*Institute, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/institutes/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}

	var inst Institute
	if err := json.Unmarshal(s.normalizer.Record("institute", raw), &inst); err != nil {
		return nil, apperr.BadResponse("unexpected institute response", err)
	}
	return &inst, nil
}

// GetMy fetches the institute owned by the current account. A 404 means the
// owner has not created a listing yet and resolves to nil without error.
func (s *Service) GetMy(ctx context.Context) (*Institute, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/institutes/my", &raw); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var inst Institute
	if err := json.Unmarshal(s.normalizer.Record("institute", raw), &inst); err != nil {
		return nil, apperr.BadResponse("unexpected institute response", err)
	}
	return &inst, nil
}

// Create submits a new institute listing. It enters the pending state until
// an admin approves it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Institute, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("institute.create")
	}

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/institutes", req, &raw); err != nil {
		return nil, err
	}

	var inst Institute
	if err := json.Unmarshal(s.normalizer.Record("institute", raw), &inst); err != nil {
		return nil, apperr.BadResponse("unexpected institute response", err)
	}
	return &inst, nil
}

// Update replaces the institute's editable fields.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*Institute, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("institute.update")
	}

	var raw json.RawMessage
	if err := s.client.Put(ctx, "/institutes/"+url.PathEscape(id), req, &raw); err != nil {
		return nil, err
	}

	var inst Institute
	if err := json.Unmarshal(s.normalizer.Record("institute", raw), &inst); err != nil {
		return nil, apperr.BadResponse("unexpected institute response", err)
	}
	return &inst, nil
}

// Delete removes the institute listing.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("institute id is required").WithOp("institute.delete")
	}
	return s.client.Delete(ctx, "/institutes/"+url.PathEscape(id), nil)
}
