// Package revalidation keeps a Next.js frontend and its CDN cache in sync
// with a headless content backend. Host applications feed it content
// lifecycle events; it plans which paths and cache tags went stale and
// dispatches invalidation to the frontend's revalidate endpoint and,
// optionally, to Cloudflare.
package revalidation

import (
	"context"

	"github.com/Dexerto/on-demand-revalidation/internal/admin"
	"github.com/Dexerto/on-demand-revalidation/internal/commands"
	"github.com/Dexerto/on-demand-revalidation/internal/di"
	"github.com/Dexerto/on-demand-revalidation/internal/events"
	"github.com/Dexerto/on-demand-revalidation/internal/jobs"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// SaveOptions re-exports the event qualifier host hooks pass to HandleSaved.
type SaveOptions = events.SaveOptions

// Result re-exports the normalized dispatch outcome.
type Result = interfaces.Result

// ContentItem re-exports the content snapshot adapters produce.
type ContentItem = interfaces.ContentItem

// Module is the assembled revalidation pipeline.
type Module struct {
	container *di.Container
}

// New validates the configuration and assembles the module.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying wiring for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// HandleSaved routes a content save through the invalidation pipeline.
func (m *Module) HandleSaved(ctx context.Context, item *ContentItem, opts SaveOptions) error {
	return m.container.Router().HandleSaved(ctx, item, opts)
}

// HandleStatusTransition routes a status change (trash, unpublish).
func (m *Module) HandleStatusTransition(ctx context.Context, oldStatus, newStatus string, item *ContentItem) error {
	return m.container.Router().HandleStatusTransition(ctx, oldStatus, newStatus, item)
}

// HandlePreUpdate captures the item's permalink before a pending write.
func (m *Module) HandlePreUpdate(ctx context.Context, itemID int64, newStatus string) error {
	return m.container.Router().HandlePreUpdate(ctx, itemID, newStatus)
}

// HandlePreTrash captures the item's permalink before it is trashed.
func (m *Module) HandlePreTrash(ctx context.Context, itemID int64) error {
	return m.container.Router().HandlePreTrash(ctx, itemID)
}

// Router exposes the event router for direct wiring.
func (m *Module) Router() *events.Router {
	return m.container.Router()
}

// Worker exposes the deferred-job processor; hosts run it on their own cadence.
func (m *Module) Worker() *jobs.Worker {
	return m.container.Worker()
}

// Admin exposes the manual test actions behind capability checks.
func (m *Module) Admin() *admin.Service {
	return m.container.AdminService()
}

// Handlers exposes the command handlers for external go-command registries.
func (m *Module) Handlers() *commands.HandlerSet {
	return m.container.Handlers()
}

// Scheduler exposes the configured job backend.
func (m *Module) Scheduler() interfaces.Scheduler {
	return m.container.Scheduler()
}
