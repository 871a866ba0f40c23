package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dexerto/on-demand-revalidation/internal/cloudflare"
	"github.com/Dexerto/on-demand-revalidation/internal/identity"
	"github.com/Dexerto/on-demand-revalidation/internal/permalinks"
	"github.com/Dexerto/on-demand-revalidation/internal/planner"
	"github.com/Dexerto/on-demand-revalidation/internal/resolver"
	"github.com/Dexerto/on-demand-revalidation/internal/revalidate"
	"github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"
	"github.com/Dexerto/on-demand-revalidation/internal/scheduler"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

type stubReader struct {
	items map[int64]*interfaces.ContentItem
	terms map[string][]string
}

func (s *stubReader) GetByID(_ context.Context, id int64) (*interfaces.ContentItem, error) {
	if item, ok := s.items[id]; ok {
		return item, nil
	}
	return nil, interfaces.ErrItemNotFound
}

func (s *stubReader) LatestPublished(context.Context) (*interfaces.ContentItem, error) {
	return nil, interfaces.ErrItemNotFound
}

func (s *stubReader) AuthorNicename(context.Context, int64) (string, error) { return "author", nil }

func (s *stubReader) AuthorUsername(context.Context, int64) (string, error) { return "author", nil }

func (s *stubReader) TermSlugs(_ context.Context, _ int64, taxonomy string) ([]string, error) {
	return s.terms[taxonomy], nil
}

func (s *stubReader) Taxonomies(context.Context, int64) ([]string, error) {
	names := make([]string, 0, len(s.terms))
	for name := range s.terms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type frontendSpy struct {
	server *httptest.Server
	calls  atomic.Int64
	paths  []string
}

func newFrontendSpy(t *testing.T) *frontendSpy {
	t.Helper()
	spy := &frontendSpy{}
	spy.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spy.calls.Add(1)
		var body struct {
			Paths []string `json:"paths"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		spy.paths = body.Paths
		json.NewEncoder(w).Encode(map[string]any{"revalidated": true})
	}))
	t.Cleanup(spy.server.Close)
	return spy
}

type routerFixture struct {
	router   *Router
	reader   *stubReader
	store    *permalinks.MemoryStore
	sched    interfaces.Scheduler
	frontend *frontendSpy
}

func newRouterFixture(t *testing.T, mutate func(*runtimeconfig.Config)) *routerFixture {
	t.Helper()
	spy := newFrontendSpy(t)

	cfg := runtimeconfig.DefaultConfig()
	cfg.Frontend.URL = spy.server.URL
	cfg.Frontend.SecretKey = "secret"
	if mutate != nil {
		mutate(&cfg)
	}

	reader := &stubReader{items: map[int64]*interfaces.ContentItem{}}
	store := permalinks.NewMemoryStore()
	tracker := permalinks.NewTracker(store, reader, nil)
	res := resolver.New(reader, resolver.OptionsFromConfig(cfg.Resolver), nil)
	plan := planner.New(res, tracker, nil)
	frontend := revalidate.New(cfg.Frontend, revalidate.WithHTTPClient(spy.server.Client()))
	cf := cloudflare.New(cfg.Cloudflare, cfg.SiteURL)
	sched := scheduler.NewInMemory()

	router := NewRouter(cfg, plan, frontend, cf, tracker, reader, sched)
	return &routerFixture{router: router, reader: reader, store: store, sched: sched, frontend: spy}
}

func publishedItem(id int64, slug string) *interfaces.ContentItem {
	return &interfaces.ContentItem{
		ID:        id,
		Slug:      slug,
		AuthorID:  7,
		Status:    "publish",
		Permalink: "https://example.com/" + slug + "/",
	}
}

func TestHandleSavedDispatchesInline(t *testing.T) {
	fx := newRouterFixture(t, nil)
	item := publishedItem(42, "hello")
	fx.reader.items[42] = item

	if err := fx.router.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if fx.frontend.calls.Load() != 1 {
		t.Fatalf("expected 1 frontend call, got %d", fx.frontend.calls.Load())
	}
}

func TestHandleSavedGuards(t *testing.T) {
	cases := []struct {
		name string
		item *interfaces.ContentItem
		opts SaveOptions
	}{
		{"autosave", publishedItem(1, "a"), SaveOptions{Autosave: true}},
		{"revision", publishedItem(1, "a"), SaveOptions{Revision: true}},
		{"nil item", nil, SaveOptions{}},
		{"draft", &interfaces.ContentItem{ID: 1, Status: "draft"}, SaveOptions{}},
		{"auto-draft", &interfaces.ContentItem{ID: 1, Status: "auto-draft"}, SaveOptions{}},
		{"inherit", &interfaces.ContentItem{ID: 1, Status: "inherit"}, SaveOptions{}},
		{"trash", &interfaces.ContentItem{ID: 1, Status: "trash"}, SaveOptions{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newRouterFixture(t, nil)
			if err := fx.router.HandleSaved(context.Background(), tc.item, tc.opts); err != nil {
				t.Fatalf("expected silent skip, got %v", err)
			}
			if fx.frontend.calls.Load() != 0 {
				t.Fatalf("expected no frontend calls, got %d", fx.frontend.calls.Load())
			}
		})
	}
}

func TestHandleSavedDefersWhenCronEnabled(t *testing.T) {
	fx := newRouterFixture(t, func(cfg *runtimeconfig.Config) {
		cfg.Frontend.DisableCron = false
	})
	item := publishedItem(42, "hello")
	fx.reader.items[42] = item

	if err := fx.router.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if fx.frontend.calls.Load() != 0 {
		t.Fatalf("expected no inline call, got %d", fx.frontend.calls.Load())
	}

	job, err := fx.sched.GetByKey(context.Background(), identity.FrontendJobKey(42))
	if err != nil {
		t.Fatalf("expected deferred job, got %v", err)
	}
	if job.Type != scheduler.JobTypeFrontendDispatch {
		t.Fatalf("unexpected job type %s", job.Type)
	}
	id, err := scheduler.ItemIDFromPayload(job.Payload)
	if err != nil || id != 42 {
		t.Fatalf("expected item id payload, got %d %v", id, err)
	}
}

func TestHandleSavedBurstCollapsesToOneJob(t *testing.T) {
	fx := newRouterFixture(t, func(cfg *runtimeconfig.Config) {
		cfg.Frontend.DisableCron = false
	})
	item := publishedItem(42, "hello")
	fx.reader.items[42] = item

	for i := 0; i < 3; i++ {
		if err := fx.router.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	due, err := fx.sched.ListDue(context.Background(), time.Now().Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected saves to collapse into one job, got %d", len(due))
	}
}

func TestHandleStatusTransitionMatrix(t *testing.T) {
	cases := []struct {
		name     string
		from, to string
		dispatch bool
	}{
		{"publish to trash", "publish", "trash", true},
		{"pending to trash", "pending", "trash", true},
		{"draft to trash", "draft", "trash", false},
		{"trash to trash", "trash", "trash", false},
		{"publish to draft", "publish", "draft", true},
		{"draft to publish", "draft", "publish", false},
		{"publish to publish", "publish", "publish", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newRouterFixture(t, nil)
			item := publishedItem(42, "hello")
			item.Status = tc.to
			fx.reader.items[42] = item

			if err := fx.router.HandleStatusTransition(context.Background(), tc.from, tc.to, item); err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			want := int64(0)
			if tc.dispatch {
				want = 1
			}
			if got := fx.frontend.calls.Load(); got != want {
				t.Fatalf("expected %d frontend calls, got %d", want, got)
			}
		})
	}
}

func TestPreUpdateCaptureFeedsOldPath(t *testing.T) {
	fx := newRouterFixture(t, nil)
	fx.reader.items[42] = &interfaces.ContentItem{
		ID: 42, Slug: "old-slug", Status: "publish",
		Permalink: "https://example.com/old-slug/",
	}

	if err := fx.router.HandlePreUpdate(context.Background(), 42, "publish"); err != nil {
		t.Fatalf("expected capture to succeed, got %v", err)
	}

	renamed := publishedItem(42, "new-slug")
	fx.reader.items[42] = renamed
	if err := fx.router.HandleSaved(context.Background(), renamed, SaveOptions{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	wantOld, wantNew := false, false
	for _, path := range fx.frontend.paths {
		if path == "/old-slug" {
			wantOld = true
		}
		if path == "/new-slug" {
			wantNew = true
		}
	}
	if !wantOld || !wantNew {
		t.Fatalf("expected both old and new paths, got %v", fx.frontend.paths)
	}
}

func TestPreTrashCaptures(t *testing.T) {
	fx := newRouterFixture(t, nil)
	fx.reader.items[42] = publishedItem(42, "doomed")

	if err := fx.router.HandlePreTrash(context.Background(), 42); err != nil {
		t.Fatalf("expected capture to succeed, got %v", err)
	}
	stored, ok, err := fx.store.Get(context.Background(), 42)
	if err != nil || !ok {
		t.Fatalf("expected stored permalink, got ok=%v err=%v", ok, err)
	}
	if stored != "https://example.com/doomed/" {
		t.Fatalf("unexpected stored permalink %q", stored)
	}
}

func TestRevalidateItemVanishedIsSilent(t *testing.T) {
	fx := newRouterFixture(t, nil)
	if err := fx.router.RevalidateItem(context.Background(), 999); err != nil {
		t.Fatalf("expected silent success for missing item, got %v", err)
	}
	if fx.frontend.calls.Load() != 0 {
		t.Fatalf("expected no frontend calls, got %d", fx.frontend.calls.Load())
	}
}

func TestCloudflareScheduleEnqueuesPurgeJob(t *testing.T) {
	fx := newRouterFixture(t, func(cfg *runtimeconfig.Config) {
		cfg.SiteURL = "https://example.com"
		cfg.Cloudflare.Enabled = true
		cfg.Cloudflare.Schedule = true
		cfg.Cloudflare.ZoneID = "zone-1"
		cfg.Cloudflare.APIToken = "token"
	})
	item := publishedItem(42, "hello")
	fx.reader.items[42] = item

	if err := fx.router.HandleSaved(context.Background(), item, SaveOptions{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	job, err := fx.sched.GetByKey(context.Background(), identity.CloudflareJobKey(42))
	if err != nil {
		t.Fatalf("expected deferred purge job, got %v", err)
	}
	if job.Type != scheduler.JobTypeCloudflarePurge {
		t.Fatalf("unexpected job type %s", job.Type)
	}
}

type cloudflareSpy struct {
	server   *httptest.Server
	requests atomic.Int64
	files    []string
}

func newCloudflareSpy(t *testing.T) *cloudflareSpy {
	t.Helper()
	spy := &cloudflareSpy{}
	spy.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spy.requests.Add(1)
		switch {
		case r.URL.Path == "/client/v4/user/tokens/verify":
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		case r.URL.Path == "/client/v4/zones":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"result":  []map[string]string{{"id": "zone-1"}},
			})
		default:
			var body struct {
				Files []string `json:"files"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode purge payload: %v", err)
			}
			spy.files = body.Files
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		}
	}))
	t.Cleanup(spy.server.Close)
	return spy
}

func TestPurgeNowSkipsWithoutTemplates(t *testing.T) {
	spy := newCloudflareSpy(t)
	fx := newRouterFixture(t, func(cfg *runtimeconfig.Config) {
		cfg.SiteURL = "https://example.com"
		cfg.Cloudflare.Enabled = true
		cfg.Cloudflare.ZoneID = "zone-1"
		cfg.Cloudflare.APIToken = "token"
		cfg.Cloudflare.APIBaseURL = spy.server.URL
	})
	item := publishedItem(42, "hello")
	fx.reader.items[42] = item

	result, err := fx.router.PurgeNow(context.Background(), item)
	if err != nil {
		t.Fatalf("expected skip without error, got %v", err)
	}
	if result.Success {
		t.Fatalf("expected skipped result, got %+v", result)
	}
	if result.Message != "No paths or tags provided for cache purging." {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if got := spy.requests.Load(); got != 0 {
		t.Fatalf("expected no API requests, got %d", got)
	}
}

func TestPurgeNowUsesTemplatesOnly(t *testing.T) {
	spy := newCloudflareSpy(t)
	fx := newRouterFixture(t, func(cfg *runtimeconfig.Config) {
		cfg.SiteURL = "https://example.com"
		cfg.Cloudflare.Enabled = true
		cfg.Cloudflare.ZoneID = "zone-1"
		cfg.Cloudflare.APIToken = "token"
		cfg.Cloudflare.APIBaseURL = spy.server.URL
		cfg.Cloudflare.PathTemplates = []string{"/landing"}
	})
	item := publishedItem(42, "hello")
	fx.reader.items[42] = item

	result, err := fx.router.PurgeNow(context.Background(), item)
	if err != nil {
		t.Fatalf("expected purge success, got %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(spy.files) != 1 || spy.files[0] != "https://example.com/landing" {
		t.Fatalf("expected template-derived files only, got %v", spy.files)
	}
}
