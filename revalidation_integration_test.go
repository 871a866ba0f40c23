package revalidation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	adapters "github.com/Dexerto/on-demand-revalidation/internal/adapters/memory"
	"github.com/Dexerto/on-demand-revalidation/internal/di"
)

type frontendRecorder struct {
	server *httptest.Server
	calls  atomic.Int64
	last   struct {
		PostID int64    `json:"postId"`
		Paths  []string `json:"paths"`
		Tags   []string `json:"tags"`
	}
}

func newFrontendRecorder(t *testing.T) *frontendRecorder {
	t.Helper()
	rec := &frontendRecorder{}
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls.Add(1)
		if err := json.NewDecoder(r.Body).Decode(&rec.last); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"revalidated": true})
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

type allowAll struct{}

func (allowAll) Can(context.Context, string, string) bool { return true }

func newTestModule(t *testing.T, rec *frontendRecorder, mutate func(*Config), opts ...di.Option) (*Module, *adapters.Reader) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Frontend.URL = rec.server.URL
	cfg.Frontend.SecretKey = "secret"
	if mutate != nil {
		mutate(&cfg)
	}

	reader := adapters.NewReader()
	opts = append([]di.Option{
		di.WithContentReader(reader),
		di.WithHTTPClient(rec.server.Client()),
	}, opts...)

	m, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("expected module, got %v", err)
	}
	return m, reader
}

func TestModuleInlineDispatchOnSave(t *testing.T) {
	rec := newFrontendRecorder(t)
	m, reader := newTestModule(t, rec, nil)

	reader.SeedItem(adapters.Item{
		ID: 42, Slug: "hello", Status: "publish",
		Permalink: "https://example.com/hello/",
	})
	item, err := reader.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected item, got %v", err)
	}

	if err := m.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
		t.Fatalf("expected dispatch, got %v", err)
	}
	if rec.calls.Load() != 1 {
		t.Fatalf("expected 1 dispatch, got %d", rec.calls.Load())
	}
	if rec.last.PostID != 42 {
		t.Fatalf("expected post id 42, got %d", rec.last.PostID)
	}
}

func TestModuleDeferredDispatchThroughWorker(t *testing.T) {
	rec := newFrontendRecorder(t)
	m, reader := newTestModule(t, rec, func(cfg *Config) {
		cfg.Frontend.DisableCron = false
	})

	reader.SeedItem(adapters.Item{
		ID: 42, Slug: "hello", Status: "publish",
		Permalink: "https://example.com/hello/",
	})
	item, _ := reader.GetByID(context.Background(), 42)

	if err := m.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
		t.Fatalf("expected enqueue, got %v", err)
	}
	if rec.calls.Load() != 0 {
		t.Fatalf("expected no inline dispatch, got %d", rec.calls.Load())
	}

	if err := m.Worker().Process(context.Background()); err != nil {
		t.Fatalf("expected worker pass, got %v", err)
	}
	if rec.calls.Load() != 1 {
		t.Fatalf("expected 1 deferred dispatch, got %d", rec.calls.Load())
	}
}

func TestModuleDeferredDispatchUsesCurrentState(t *testing.T) {
	rec := newFrontendRecorder(t)
	m, reader := newTestModule(t, rec, func(cfg *Config) {
		cfg.Frontend.DisableCron = false
	})

	reader.SeedItem(adapters.Item{
		ID: 42, Slug: "first", Status: "publish",
		Permalink: "https://example.com/first/",
	})
	item, _ := reader.GetByID(context.Background(), 42)
	if err := m.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
		t.Fatalf("expected enqueue, got %v", err)
	}

	// The item changes again before the job runs.
	reader.SeedItem(adapters.Item{
		ID: 42, Slug: "second", Status: "publish",
		Permalink: "https://example.com/second/",
	})

	if err := m.Worker().Process(context.Background()); err != nil {
		t.Fatalf("expected worker pass, got %v", err)
	}
	found := false
	for _, path := range rec.last.Paths {
		if path == "/second" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected dispatch of current path, got %v", rec.last.Paths)
	}
}

func TestModuleVanishedItemDrainsJob(t *testing.T) {
	rec := newFrontendRecorder(t)
	m, reader := newTestModule(t, rec, func(cfg *Config) {
		cfg.Frontend.DisableCron = false
	})

	reader.SeedItem(adapters.Item{
		ID: 42, Slug: "hello", Status: "publish",
		Permalink: "https://example.com/hello/",
	})
	item, _ := reader.GetByID(context.Background(), 42)
	if err := m.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
		t.Fatalf("expected enqueue, got %v", err)
	}

	reader.Remove(42)

	if err := m.Worker().Process(context.Background()); err != nil {
		t.Fatalf("expected worker pass, got %v", err)
	}
	if rec.calls.Load() != 0 {
		t.Fatalf("expected no dispatch for vanished item, got %d", rec.calls.Load())
	}
}

func TestModuleAdminTestRevalidation(t *testing.T) {
	rec := newFrontendRecorder(t)
	m, reader := newTestModule(t, rec, nil, di.WithAuthorizer(allowAll{}))

	reader.SeedItem(adapters.Item{
		ID: 7, Slug: "latest", Status: "publish",
		Permalink: "https://example.com/latest/",
	})

	result, err := m.Admin().TestRevalidation(context.Background(), "admin")
	if err != nil {
		t.Fatalf("expected test action, got %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success result, got %+v", result)
	}
	if rec.calls.Load() != 1 {
		t.Fatalf("expected 1 dispatch, got %d", rec.calls.Load())
	}
}

func TestModuleSlugChangeInvalidatesOldPath(t *testing.T) {
	rec := newFrontendRecorder(t)
	m, reader := newTestModule(t, rec, nil)

	reader.SeedItem(adapters.Item{
		ID: 42, Slug: "old-slug", Status: "publish",
		Permalink: "https://example.com/old-slug/",
	})
	if err := m.HandlePreUpdate(context.Background(), 42, "publish"); err != nil {
		t.Fatalf("expected capture, got %v", err)
	}

	reader.SeedItem(adapters.Item{
		ID: 42, Slug: "new-slug", Status: "publish",
		Permalink: "https://example.com/new-slug/",
	})
	item, _ := reader.GetByID(context.Background(), 42)
	if err := m.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
		t.Fatalf("expected dispatch, got %v", err)
	}

	gotOld, gotNew := false, false
	for _, path := range rec.last.Paths {
		if path == "/old-slug" {
			gotOld = true
		}
		if path == "/new-slug" {
			gotNew = true
		}
	}
	if !gotOld || !gotNew {
		t.Fatalf("expected old and new paths, got %v", rec.last.Paths)
	}
}
