package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/internal/planner"
	"github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// revalidatePath is the fixed frontend endpoint appended to the configured URL.
const revalidatePath = "/api/revalidate"

// request is the payload the frontend's revalidate handler expects.
type request struct {
	PostID int64    `json:"postId"`
	Paths  []string `json:"paths,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

type response struct {
	Revalidated bool   `json:"revalidated"`
	Message     string `json:"message"`
}

// Attempt captures the most recent dispatch for the admin debug surface.
type Attempt struct {
	ItemID     int64
	Plan       planner.Plan
	StatusCode int
	Result     interfaces.Result
	At         time.Time
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

// WithClock overrides the timestamp source recorded on attempts.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// Dispatcher delivers invalidation plans to the Next.js frontend.
type Dispatcher struct {
	cfg    runtimeconfig.FrontendConfig
	client *http.Client
	logger interfaces.Logger
	now    func() time.Time

	mu   sync.Mutex
	last *Attempt
}

// New builds a dispatcher for the given frontend configuration. The default
// client carries the 10 second timeout the frontend contract assumes.
func New(cfg runtimeconfig.FrontendConfig, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends the plan for one content item. Configuration problems and
// upstream rejections come back as categorized errors alongside a Result the
// admin surface can render directly. An empty plan is a successful no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, itemID int64, plan planner.Plan) (interfaces.Result, error) {
	if d.cfg.URL == "" || d.cfg.SecretKey == "" {
		result := interfaces.Result{Success: false, Message: MessageConfigMissing}
		d.record(itemID, plan, 0, result)
		return result, configMissingError()
	}

	if plan.Empty() {
		result := interfaces.Result{Success: true, Message: "Nothing to revalidate."}
		d.record(itemID, plan, 0, result)
		d.logger.Debug("dispatch.skipped", "item_id", itemID, "reason", "empty plan")
		return result, nil
	}

	body, err := json.Marshal(request{PostID: itemID, Paths: plan.Paths, Tags: plan.Tags})
	if err != nil {
		result := interfaces.Result{Success: false, Message: err.Error()}
		d.record(itemID, plan, 0, result)
		return result, transportError(err)
	}

	endpoint := strings.TrimRight(d.cfg.URL, "/") + revalidatePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		result := interfaces.Result{Success: false, Message: err.Error()}
		d.record(itemID, plan, 0, result)
		return result, transportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.cfg.SecretKey)

	resp, err := d.client.Do(req)
	if err != nil {
		result := interfaces.Result{Success: false, Message: err.Error()}
		d.record(itemID, plan, 0, result)
		d.logger.Error("dispatch.transport", "item_id", itemID, "error", err)
		return result, transportError(err)
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		result := interfaces.Result{Success: false, Message: err.Error()}
		d.record(itemID, plan, resp.StatusCode, result)
		d.logger.Error("dispatch.decode", "item_id", itemID, "status", resp.StatusCode, "error", err)
		return result, transportError(err)
	}

	if !decoded.Revalidated {
		message := decoded.Message
		if message == "" {
			message = fmt.Sprintf("Revalidation request failed with status %d.", resp.StatusCode)
		}
		result := interfaces.Result{Success: false, Message: message}
		d.record(itemID, plan, resp.StatusCode, result)
		d.logger.Error("dispatch.rejected", "item_id", itemID, "status", resp.StatusCode, "message", message)
		return result, upstreamError(message)
	}

	result := interfaces.Result{
		Success: true,
		Message: fmt.Sprintf("Next.js revalidated %s successfully.", strings.Join(plan.Paths, ", ")),
	}
	d.record(itemID, plan, resp.StatusCode, result)
	d.logger.Info("dispatch.ok", "item_id", itemID, "paths", len(plan.Paths), "tags", len(plan.Tags))
	return result, nil
}

// LastAttempt returns a copy of the most recent dispatch, nil before any run.
func (d *Dispatcher) LastAttempt() *Attempt {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return nil
	}
	copied := *d.last
	return &copied
}

func (d *Dispatcher) record(itemID int64, plan planner.Plan, status int, result interfaces.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = &Attempt{
		ItemID:     itemID,
		Plan:       plan,
		StatusCode: status,
		Result:     result,
		At:         d.now(),
	}
}
