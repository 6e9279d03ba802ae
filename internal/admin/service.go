// Package admin implements the platform-admin endpoints of the EduList API.
package admin

import (
	"context"
	"encoding/json"
	"net/url"

	"edulist_client/internal/institute"
	"edulist_client/internal/normalize"
	"edulist_client/internal/session"
	"edulist_client/internal/transport"
	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalInstitutes   int `json:"totalInstitutes"`
	PendingInstitutes int `json:"pendingInstitutes"`
	TotalUsers        int `json:"totalUsers"`
	TotalEnquiries    int `json:"totalEnquiries"`
	TotalReviews      int `json:"totalReviews"`
}

// Service calls the /admin endpoints.
type Service struct {
	client     *transport.Client
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// New creates the admin service.
func New(client *transport.Client, normalizer *normalize.Normalizer, log *logger.Logger) *Service {
	return &Service{client: client, normalizer: normalizer, log: log}
}

// ListPendingInstitutes fetches institutes awaiting approval. Fails soft.
func (s *Service) ListPendingInstitutes(ctx context.Context) []institute.Institute {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/admin/institutes/pending", &raw); err != nil {
		s.log.ReadSuppressed("admin.list_pending_institutes", err)
		return []institute.Institute{}
	}
	return normalize.Into[institute.Institute](s.normalizer.List(normalize.Institutes, raw))
}

// ApproveInstitute moves a pending institute to the approved state.
func (s *Service) ApproveInstitute(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("institute id is required").WithOp("admin.approve_institute")
	}
	return s.client.Put(ctx, "/admin/institutes/"+url.PathEscape(id)+"/approve", nil, nil)
}

// RejectInstitute moves a pending institute to the rejected state.
func (s *Service) RejectInstitute(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("institute id is required").WithOp("admin.reject_institute")
	}
	return s.client.Put(ctx, "/admin/institutes/"+url.PathEscape(id)+"/reject", nil, nil)
}

// ListUsers fetches all platform accounts. Fails soft.
func (s *Service) ListUsers(ctx context.Context) []session.User {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/admin/users", &raw); err != nil {
		s.log.ReadSuppressed("admin.list_users", err)
		return []session.User{}
	}
	return normalize.Into[session.User](s.normalizer.List(normalize.Users, raw))
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("user id is required").WithOp("admin.delete_user")
	}
	return s.client.Delete(ctx, "/admin/users/"+url.PathEscape(id), nil)
}

// Dashboard aggregates the admin stats. The backend exposes a single stats
// endpoint; the institute and user counts shown alongside it come from
// their own listings, fetched concurrently.
func (s *Service) Dashboard(ctx context.Context) (*Stats, error) {
	var stats Stats

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var raw json.RawMessage
		if err := s.client.Get(gctx, "/admin/stats", &raw); err != nil {
			return err
		}
		if err := json.Unmarshal(s.normalizer.Record("stats", raw), &stats); err != nil {
			return apperr.BadResponse("unexpected stats response", err)
		}
		return nil
	})

	var pending []institute.Institute
	g.Go(func() error {
		pending = s.ListPendingInstitutes(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats.PendingInstitutes == 0 {
		stats.PendingInstitutes = len(pending)
	}
	return &stats, nil
}
