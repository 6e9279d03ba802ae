package course

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"edulist_client/internal/normalize"
	"edulist_client/internal/transport"
	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"
	"edulist_client/platform/validator"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.Discard()
	return New(transport.New(server.URL, nil, log), normalize.NewNormalizer(log), validator.New(), log)
}

func TestListByInstitute_NormalizesBareArray(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/courses/institute/i1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"_id":"c1","name":"Physics","mode":"offline"}]`))
	}))

	items := svc.ListByInstitute(context.Background(), "i1")
	if len(items) != 1 || items[0].Name != "Physics" {
		t.Fatalf("unexpected courses: %+v", items)
	}
}

func TestListMy_FailsSoftOnNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	log := logger.Discard()
	svc := New(transport.New(server.URL, nil, log), normalize.NewNormalizer(log), validator.New(), log)

	items := svc.ListMy(context.Background())
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty slice, got %v", items)
	}
}

func TestCreate_ValidatesMode(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("invalid course must not be dispatched")
	}))

	_, err := svc.Create(context.Background(), CreateRequest{
		Name:        "Physics",
		Description: "Mechanics and waves.",
		Duration:    "6 months",
		Mode:        "correspondence",
		Category:    "science",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelete_RequiresID(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("empty id must not be dispatched")
	}))

	if err := svc.Delete(context.Background(), ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
