package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/internal/planner"
	"github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

const defaultAPIBaseURL = "https://api.cloudflare.com"

type apiResponse struct {
	Success bool            `json:"success"`
	Errors  json.RawMessage `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

type zone struct {
	ID string `json:"id"`
}

type purgeRequest struct {
	Files []string `json:"files,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the default client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithTimeout bounds calls made with the default client. An injected client
// keeps its own timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.client.Timeout = timeout
		}
	}
}

// WithLogger attaches a logger; the zero value logs nowhere.
func WithLogger(logger interfaces.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Dispatcher purges paths and cache tags through the Cloudflare v4 API.
// Credentials are validated on every purge, never cached: a token can be
// revoked or a zone removed between invocations.
type Dispatcher struct {
	cfg     runtimeconfig.CloudflareConfig
	siteURL string
	client  *http.Client
	logger  interfaces.Logger
}

// New builds a dispatcher. siteURL anchors root-relative plan paths so the
// purge payload carries absolute URLs.
func New(cfg runtimeconfig.CloudflareConfig, siteURL string, opts ...Option) *Dispatcher {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	d := &Dispatcher{
		cfg:     cfg,
		siteURL: strings.TrimRight(siteURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enabled reports whether purging is switched on in configuration.
func (d *Dispatcher) Enabled() bool {
	return d.cfg.Enabled
}

// Purge validates credentials and purges every URL and tag in the plan.
func (d *Dispatcher) Purge(ctx context.Context, plan planner.Plan) (interfaces.Result, error) {
	if !d.cfg.Enabled {
		return interfaces.Result{Success: true, Message: "Cloudflare cache purging is disabled."}, nil
	}
	if d.cfg.ZoneID == "" || d.cfg.APIToken == "" {
		return interfaces.Result{Success: false, Message: MessageCredentialsRejected}, configMissingError()
	}
	if plan.Empty() {
		d.logger.Debug("cloudflare.skipped", "reason", "empty plan")
		return interfaces.Result{Success: false, Message: MessageNothingToPurge}, nil
	}

	ok, err := d.validateCredentials(ctx)
	if err != nil {
		return interfaces.Result{Success: false, Message: err.Error()}, transportError(err)
	}
	if !ok {
		d.logger.Error("cloudflare.credentials", "zone_id", d.cfg.ZoneID)
		return interfaces.Result{Success: false, Message: MessageCredentialsRejected}, credentialsError()
	}

	payload := purgeRequest{Files: d.absolutize(plan.Paths), Tags: plan.Tags}
	body, err := json.Marshal(payload)
	if err != nil {
		return interfaces.Result{Success: false, Message: err.Error()}, transportError(err)
	}

	endpoint := fmt.Sprintf("%s/client/v4/zones/%s/purge_cache", d.cfg.APIBaseURL, d.cfg.ZoneID)
	resp, err := d.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return interfaces.Result{Success: false, Message: err.Error()}, transportError(err)
	}

	if !resp.Success {
		message := "Cloudflare cache purge failed: " + upstreamErrors(resp.Errors)
		d.logger.Error("cloudflare.purge.failed", "zone_id", d.cfg.ZoneID, "message", message)
		return interfaces.Result{Success: false, Message: message}, upstreamError(message)
	}

	d.logger.Info("cloudflare.purge.ok", "files", len(payload.Files), "tags", len(payload.Tags))
	return interfaces.Result{Success: true, Message: MessagePurged}, nil
}

// validateCredentials checks the token and that the configured zone is among
// the account's active zones.
func (d *Dispatcher) validateCredentials(ctx context.Context) (bool, error) {
	verify, err := d.do(ctx, http.MethodGet, d.cfg.APIBaseURL+"/client/v4/user/tokens/verify", nil)
	if err != nil {
		return false, err
	}
	if !verify.Success {
		return false, nil
	}

	zones, err := d.do(ctx, http.MethodGet, d.cfg.APIBaseURL+"/client/v4/zones?status=active", nil)
	if err != nil {
		return false, err
	}
	if !zones.Success {
		return false, nil
	}

	var active []zone
	if err := json.Unmarshal(zones.Result, &active); err != nil {
		return false, err
	}
	for _, z := range active {
		if z.ID == d.cfg.ZoneID {
			return true, nil
		}
	}
	return false, nil
}

func (d *Dispatcher) do(ctx context.Context, method, endpoint string, body io.Reader) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

// absolutize prefixes root-relative paths with the site base URL; anything
// already absolute passes through untouched.
func (d *Dispatcher) absolutize(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		url := path
		if strings.HasPrefix(path, "/") {
			url = d.siteURL + path
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}

func upstreamErrors(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return "Unknown error occurred."
	}
	return trimmed
}
