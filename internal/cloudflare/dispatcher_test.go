package cloudflare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/Dexerto/on-demand-revalidation/internal/planner"
	"github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"
)

type fakeAPI struct {
	t *testing.T

	tokenValid bool
	zones      []string

	verifyCalls int
	zoneCalls   int
	purgeCalls  int
	lastPurge   purgeRequest
	purgeOK     bool
	purgeErrors string
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/client/v4/user/tokens/verify":
			f.verifyCalls++
			json.NewEncoder(w).Encode(map[string]any{"success": f.tokenValid})
		case r.URL.Path == "/client/v4/zones":
			f.zoneCalls++
			if r.URL.Query().Get("status") != "active" {
				f.t.Errorf("expected status=active query, got %q", r.URL.RawQuery)
			}
			result := make([]map[string]string, 0, len(f.zones))
			for _, id := range f.zones {
				result = append(result, map[string]string{"id": id})
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "result": result})
		case strings.HasSuffix(r.URL.Path, "/purge_cache"):
			f.purgeCalls++
			if r.Method != http.MethodPost {
				f.t.Errorf("expected POST purge, got %s", r.Method)
			}
			if err := json.NewDecoder(r.Body).Decode(&f.lastPurge); err != nil {
				f.t.Errorf("decode purge payload: %v", err)
			}
			body := map[string]any{"success": f.purgeOK}
			if f.purgeErrors != "" {
				body["errors"] = json.RawMessage(f.purgeErrors)
			}
			json.NewEncoder(w).Encode(body)
		default:
			f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func testConfig(baseURL string) runtimeconfig.CloudflareConfig {
	return runtimeconfig.CloudflareConfig{
		Enabled:    true,
		ZoneID:     "zone-1",
		APIToken:   "token",
		APIBaseURL: baseURL,
	}
}

func TestPurgeDisabledSkips(t *testing.T) {
	d := New(runtimeconfig.CloudflareConfig{}, "https://example.com")
	result, err := d.Purge(context.Background(), planner.Plan{Paths: []string{"/"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Success {
		t.Fatalf("expected skipped success result, got %+v", result)
	}
}

func TestPurgeMissingCredentials(t *testing.T) {
	d := New(runtimeconfig.CloudflareConfig{Enabled: true}, "https://example.com")
	result, err := d.Purge(context.Background(), planner.Plan{Paths: []string{"/"}})
	if err == nil {
		t.Fatal("expected configuration error, got nil")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if result.Message != MessageCredentialsRejected {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestPurgeEmptyPlan(t *testing.T) {
	api := &fakeAPI{t: t, tokenValid: true, zones: []string{"zone-1"}}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	d := New(testConfig(server.URL), "https://example.com", WithHTTPClient(server.Client()))
	result, err := d.Purge(context.Background(), planner.Plan{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Success || result.Message != MessageNothingToPurge {
		t.Fatalf("unexpected result %+v", result)
	}
	if api.verifyCalls != 0 || api.purgeCalls != 0 {
		t.Fatalf("expected no api calls, got verify=%d purge=%d", api.verifyCalls, api.purgeCalls)
	}
}

func TestPurgeInvalidToken(t *testing.T) {
	api := &fakeAPI{t: t, tokenValid: false}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	d := New(testConfig(server.URL), "https://example.com", WithHTTPClient(server.Client()))
	result, err := d.Purge(context.Background(), planner.Plan{Paths: []string{"/"}})
	if err == nil {
		t.Fatal("expected credentials error, got nil")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryAuth) {
		t.Fatalf("expected auth category, got %v", err)
	}
	if result.Message != MessageCredentialsRejected {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if api.purgeCalls != 0 {
		t.Fatalf("expected no purge call, got %d", api.purgeCalls)
	}
}

func TestPurgeUnknownZone(t *testing.T) {
	api := &fakeAPI{t: t, tokenValid: true, zones: []string{"other-zone"}}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	d := New(testConfig(server.URL), "https://example.com", WithHTTPClient(server.Client()))
	_, err := d.Purge(context.Background(), planner.Plan{Paths: []string{"/"}})
	if err == nil {
		t.Fatal("expected credentials error, got nil")
	}
	if api.purgeCalls != 0 {
		t.Fatalf("expected no purge call, got %d", api.purgeCalls)
	}
}

func TestPurgeSuccess(t *testing.T) {
	api := &fakeAPI{t: t, tokenValid: true, zones: []string{"zone-1"}, purgeOK: true}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	d := New(testConfig(server.URL), "https://example.com/", WithHTTPClient(server.Client()))
	plan := planner.Plan{
		Paths: []string{"/", "/hello", "https://cdn.example.com/asset.css"},
		Tags:  []string{"post-42"},
	}
	result, err := d.Purge(context.Background(), plan)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.Message != MessagePurged {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if api.verifyCalls != 1 || api.zoneCalls != 1 || api.purgeCalls != 1 {
		t.Fatalf("unexpected call counts verify=%d zones=%d purge=%d", api.verifyCalls, api.zoneCalls, api.purgeCalls)
	}

	wantFiles := []string{
		"https://example.com/",
		"https://example.com/hello",
		"https://cdn.example.com/asset.css",
	}
	if len(api.lastPurge.Files) != len(wantFiles) {
		t.Fatalf("expected files %v, got %v", wantFiles, api.lastPurge.Files)
	}
	for i, want := range wantFiles {
		if api.lastPurge.Files[i] != want {
			t.Fatalf("expected file %q at %d, got %q", want, i, api.lastPurge.Files[i])
		}
	}
	if len(api.lastPurge.Tags) != 1 || api.lastPurge.Tags[0] != "post-42" {
		t.Fatalf("unexpected tags %v", api.lastPurge.Tags)
	}
}

func TestPurgeValidatesCredentialsEveryTime(t *testing.T) {
	api := &fakeAPI{t: t, tokenValid: true, zones: []string{"zone-1"}, purgeOK: true}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	d := New(testConfig(server.URL), "https://example.com", WithHTTPClient(server.Client()))
	for i := 0; i < 2; i++ {
		if _, err := d.Purge(context.Background(), planner.Plan{Tags: []string{"t"}}); err != nil {
			t.Fatalf("purge %d: %v", i, err)
		}
	}
	if api.verifyCalls != 2 || api.zoneCalls != 2 {
		t.Fatalf("expected validation per purge, got verify=%d zones=%d", api.verifyCalls, api.zoneCalls)
	}
}

func TestPurgeUpstreamFailure(t *testing.T) {
	api := &fakeAPI{t: t, tokenValid: true, zones: []string{"zone-1"}, purgeOK: false,
		purgeErrors: `[{"code":1012,"message":"purge rate limited"}]`}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	d := New(testConfig(server.URL), "https://example.com", WithHTTPClient(server.Client()))
	result, err := d.Purge(context.Background(), planner.Plan{Paths: []string{"/"}})
	if err == nil {
		t.Fatal("expected upstream error, got nil")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", err)
	}
	if !strings.HasPrefix(result.Message, "Cloudflare cache purge failed:") {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if !strings.Contains(result.Message, "purge rate limited") {
		t.Fatalf("expected upstream detail, got %q", result.Message)
	}
}

func TestPurgeUpstreamFailureWithoutErrors(t *testing.T) {
	api := &fakeAPI{t: t, tokenValid: true, zones: []string{"zone-1"}, purgeOK: false}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	d := New(testConfig(server.URL), "https://example.com", WithHTTPClient(server.Client()))
	result, _ := d.Purge(context.Background(), planner.Plan{Paths: []string{"/"}})
	want := "Cloudflare cache purge failed: Unknown error occurred."
	if result.Message != want {
		t.Fatalf("expected %q, got %q", want, result.Message)
	}
}

func TestNewAppliesTimeout(t *testing.T) {
	d := New(testConfig("https://api.example"), "https://example.com")
	if d.client.Timeout != 10*time.Second {
		t.Fatalf("expected default 10s timeout, got %v", d.client.Timeout)
	}

	d = New(testConfig("https://api.example"), "https://example.com", WithTimeout(30*time.Second))
	if d.client.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", d.client.Timeout)
	}
}
