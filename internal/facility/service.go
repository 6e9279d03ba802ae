// Package facility implements the facility endpoints of the EduList API.
// Facilities are the master list of amenities (library, hostel, labs, ...)
// institutes can attach to their listing.
package facility

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

// Facility is one amenity in the master list.
type Facility struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// CreateRequest is the payload for creating or updating a facility.
type CreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Icon string `json:"icon" validate:"omitempty,max=50"`
}

// Service calls the /facilities endpoints.
type Service struct {
	client     *transport.Client
	normalizer *normalize.Normalizer
	validate   *validator.Validator
	log        *logger.Logger
}

// New creates the facility service.
func New(client *transport.Client, normalizer *normalize.Normalizer, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{client: client, normalizer: normalizer, validate: validate, log: log}
}

// List fetches the facility master list. Fails soft.
func (s *Service) List(ctx context.Context) []Facility {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/facilities", &raw); err != nil {
		s.log.ReadSuppressed("facility.list", err)
		return []Facility{}
	}
	return normalize.Into[Facility](s.normalizer.List(normalize.Facilities, raw))
}

// Create adds a facility to the master list. Admin only.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Facility, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("facility.create")
	}

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/facilities", req, &raw); err != nil {
		return nil, err
	}
	var f Facility
	if err := json.Unmarshal(s.normalizer.Record("facility", raw), &f); err != nil {
		return nil, apperr.BadResponse("unexpected facility response", err)
	}
	return &f, nil
}

// Update renames a facility. Admin only.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*Facility, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("facility.update")
	}

	var raw json.RawMessage
	if err := s.client.Put(ctx, "/facilities/"+url.PathEscape(id), req, &raw); err != nil {
		return nil, err
	}
	var f Facility
	if err := json.Unmarshal(s.normalizer.Record("facility", raw), &f); err != nil {
		return nil, apperr.BadResponse("unexpected facility response", err)
	}
	return &f, nil
}

// Delete removes a facility from the master list. Admin only.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("facility id is required").WithOp("facility.delete")
	}
	return s.client.Delete(ctx, "/facilities/"+url.PathEscape(id), nil)
}
