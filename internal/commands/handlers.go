package commands

import (
	"context"

	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	revalidateOperation = "revalidation.frontend_dispatch"
	purgeOperation      = "revalidation.cloudflare_purge"
)

// FrontendPipeline runs the plan-and-dispatch sequence against the frontend
// for one content item, reading its current state by id.
type FrontendPipeline interface {
	RevalidateItem(ctx context.Context, itemID int64) error
}

// PurgePipeline runs the plan-and-purge sequence against the CDN for one
// content item.
type PurgePipeline interface {
	PurgeItem(ctx context.Context, itemID int64) error
}

var (
	_ command.Commander[RevalidateContentCommand] = (*RevalidateContentHandler)(nil)
	_ command.Commander[PurgeCloudflareCommand]   = (*PurgeCloudflareHandler)(nil)
)

// RevalidateContentHandler executes deferred frontend revalidations via the
// shared command handler foundation.
type RevalidateContentHandler struct {
	inner *Handler[RevalidateContentCommand]
}

// NewRevalidateContentHandler creates a handler bound to the supplied pipeline.
func NewRevalidateContentHandler(pipeline FrontendPipeline, logger interfaces.Logger, opts ...HandlerOption[RevalidateContentCommand]) *RevalidateContentHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RevalidateContentCommand) error {
		return pipeline.RevalidateItem(ctx, msg.ItemID)
	}

	handlerOpts := []HandlerOption[RevalidateContentCommand]{
		WithLogger[RevalidateContentCommand](baseLogger),
		WithOperation[RevalidateContentCommand](revalidateOperation),
		WithMessageFields(func(msg RevalidateContentCommand) map[string]any {
			return map[string]any{"item_id": msg.ItemID}
		}),
		WithTelemetry(DefaultTelemetry[RevalidateContentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RevalidateContentHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RevalidateContentCommand].
func (h *RevalidateContentHandler) Execute(ctx context.Context, msg RevalidateContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PurgeCloudflareHandler executes deferred CDN purges via the shared command
// handler foundation.
type PurgeCloudflareHandler struct {
	inner *Handler[PurgeCloudflareCommand]
}

// NewPurgeCloudflareHandler creates a handler bound to the supplied pipeline.
func NewPurgeCloudflareHandler(pipeline PurgePipeline, logger interfaces.Logger, opts ...HandlerOption[PurgeCloudflareCommand]) *PurgeCloudflareHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PurgeCloudflareCommand) error {
		return pipeline.PurgeItem(ctx, msg.ItemID)
	}

	handlerOpts := []HandlerOption[PurgeCloudflareCommand]{
		WithLogger[PurgeCloudflareCommand](baseLogger),
		WithOperation[PurgeCloudflareCommand](purgeOperation),
		WithMessageFields(func(msg PurgeCloudflareCommand) map[string]any {
			return map[string]any{"item_id": msg.ItemID}
		}),
		WithTelemetry(DefaultTelemetry[PurgeCloudflareCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PurgeCloudflareHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PurgeCloudflareCommand].
func (h *PurgeCloudflareHandler) Execute(ctx context.Context, msg PurgeCloudflareCommand) error {
	return h.inner.Execute(ctx, msg)
}
