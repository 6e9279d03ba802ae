// Package auth implements the authentication endpoints of the EduList API.
// The session store drives this service through the session.API interface.
package auth

import (
	"context"
	"encoding/json"

	"edulist_client/internal/normalize"
	"edulist_client/internal/session"
	"edulist_client/internal/transport"
	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"
	"edulist_client/platform/validator"
)

// Service calls the /auth endpoints.
type Service struct {
	client   *transport.Client
	validate *validator.Validator
	log      *logger.Logger
}

// New creates the auth service.
func New(client *transport.Client, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{client: client, validate: validate, log: log}
}

// CurrentUser fetches the account behind the current bearer token.
// Any failure means "not logged in"; the session store translates it to the
// anonymous state rather than surfacing an error.
func (s *Service) CurrentUser(ctx context.Context) (*session.User, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/auth", &raw); err != nil {
		return nil, err
	}

	var user session.User
	if err := json.Unmarshal(normalize.Record("user", raw), &user); err != nil {
		return nil, apperr.BadResponse("unexpected current-user response", err)
	}
	if user.ID == "" {
		return nil, apperr.BadResponse("current-user response missing id", nil)
	}
	return &user, nil
}

// Login exchanges credentials for a token and user.
func (s *Service) Login(ctx context.Context, creds session.Credentials) (*session.AuthPayload, error) {
	if err := s.validate.Struct(creds); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("auth.login")
	}
	return s.authenticate(ctx, "/auth/login", creds)
}

// Register creates an account; the response carries a token that logs the
// new account in immediately.
func (s *Service) Register(ctx context.Context, details session.Registration) (*session.AuthPayload, error) {
	if err := s.validate.Struct(details); err != nil {
		return nil, apperr.Validation(validator.Message(err)).WithOp("auth.register")
	}
	return s.authenticate(ctx, "/auth/register", details)
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (*session.AuthPayload, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, path, body, &raw); err != nil {
		return nil, err
	}

	// Some deployments wrap the payload in {data: {...}}.
	var payload session.AuthPayload
	if err := json.Unmarshal(normalize.Record("auth", raw), &payload); err != nil {
		return nil, apperr.BadResponse("unexpected auth response", err)
	}
	if payload.Token == "" {
		return nil, apperr.BadResponse("auth response missing token", nil)
	}
	return &payload, nil
}

var _ session.API = (*Service)(nil)
