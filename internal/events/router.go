package events

import (
	"context"
	"errors"
	"time"

	"github.com/Dexerto/on-demand-revalidation/internal/cloudflare"
	"github.com/Dexerto/on-demand-revalidation/internal/domain"
	"github.com/Dexerto/on-demand-revalidation/internal/identity"
	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/internal/permalinks"
	"github.com/Dexerto/on-demand-revalidation/internal/planner"
	"github.com/Dexerto/on-demand-revalidation/internal/revalidate"
	"github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"
	"github.com/Dexerto/on-demand-revalidation/internal/scheduler"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// SaveOptions qualifies a save event so the router can ignore writes that do
// not represent a real content change.
type SaveOptions struct {
	// Autosave marks periodic background saves.
	Autosave bool
	// Revision marks writes that target a revision row, not the item itself.
	Revision bool
}

// Option customizes a Router.
type Option func(*Router)

// WithClock overrides the timestamp used for deferred job scheduling.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// WithPlanFilters appends host-supplied hooks run over the final path set.
func WithPlanFilters(filters ...interfaces.PlanFilter) Option {
	return func(r *Router) {
		r.pathFilters = append(r.pathFilters, filters...)
	}
}

// WithTagFilters appends host-supplied hooks run over the final tag set.
func WithTagFilters(filters ...interfaces.PlanFilter) Option {
	return func(r *Router) {
		r.tagFilters = append(r.tagFilters, filters...)
	}
}

// WithLogger attaches a logger; the zero value logs nowhere.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Router translates content lifecycle events into invalidation work. It is
// the single entry point host hooks call into: guards live here, dispatchers
// stay event-agnostic.
type Router struct {
	cfg        runtimeconfig.Config
	planner    *planner.Planner
	frontend   *revalidate.Dispatcher
	cloudflare *cloudflare.Dispatcher
	tracker    *permalinks.Tracker
	reader     interfaces.ContentReader
	sched      interfaces.Scheduler
	logger     interfaces.Logger
	now        func() time.Time

	pathFilters []interfaces.PlanFilter
	tagFilters  []interfaces.PlanFilter
}

// NewRouter wires the router over its collaborators.
func NewRouter(
	cfg runtimeconfig.Config,
	plan *planner.Planner,
	frontend *revalidate.Dispatcher,
	cf *cloudflare.Dispatcher,
	tracker *permalinks.Tracker,
	reader interfaces.ContentReader,
	sched interfaces.Scheduler,
	opts ...Option,
) *Router {
	r := &Router{
		cfg:        cfg,
		planner:    plan,
		frontend:   frontend,
		cloudflare: cf,
		tracker:    tracker,
		reader:     reader,
		sched:      sched,
		logger:     logging.NoOp(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleSaved reacts to a content save. Autosaves, revision writes, and
// transient statuses never trigger invalidation. Dispatch failures are
// logged, not returned: the host's save path must not fail because a cache
// could not be refreshed. Scheduling failures are returned since they mean
// the invalidation was lost entirely.
func (r *Router) HandleSaved(ctx context.Context, item *interfaces.ContentItem, opts SaveOptions) error {
	if item == nil || opts.Autosave || opts.Revision {
		return nil
	}
	if domain.SaveExcluded(domain.Status(item.Status)) {
		r.logger.Debug("events.save.skipped", "item_id", item.ID, "status", item.Status)
		return nil
	}
	return r.dispatch(ctx, item)
}

// HandleStatusTransition reacts to status changes that remove content from
// the frontend: trashing anything that was visible, or unpublishing back to
// draft. Both leave stale pages behind unless invalidated.
func (r *Router) HandleStatusTransition(ctx context.Context, oldStatus, newStatus string, item *interfaces.ContentItem) error {
	if item == nil {
		return nil
	}
	from, to := domain.Status(oldStatus), domain.Status(newStatus)
	trashed := from != domain.StatusDraft && from != domain.StatusTrash && to == domain.StatusTrash
	unpublished := from == domain.StatusPublish && to == domain.StatusDraft
	if !trashed && !unpublished {
		return nil
	}
	r.logger.Debug("events.transition", "item_id", item.ID, "old", oldStatus, "new", newStatus)
	return r.dispatch(ctx, item)
}

// HandlePreUpdate records the item's permalink before a pending write lands,
// so a slug change can still invalidate the old path afterwards.
func (r *Router) HandlePreUpdate(ctx context.Context, itemID int64, newStatus string) error {
	if r.tracker == nil {
		return nil
	}
	return r.tracker.Capture(ctx, itemID, newStatus)
}

// HandlePreTrash records the permalink before the item is trashed.
func (r *Router) HandlePreTrash(ctx context.Context, itemID int64) error {
	if r.tracker == nil {
		return nil
	}
	return r.tracker.CaptureBeforeTrash(ctx, itemID)
}

// dispatch routes one item through both channels, inline or deferred per
// configuration.
func (r *Router) dispatch(ctx context.Context, item *interfaces.ContentItem) error {
	if r.cfg.Frontend.DisableCron {
		if err := r.revalidate(ctx, item); err != nil {
			r.logger.Error("events.frontend.failed", "item_id", item.ID, "error", err)
		}
	} else if err := r.enqueue(ctx, item.ID, scheduler.JobTypeFrontendDispatch, identity.FrontendJobKey(item.ID)); err != nil {
		return err
	}

	if r.cfg.Cloudflare.Enabled {
		if r.cfg.Cloudflare.Schedule {
			if err := r.enqueue(ctx, item.ID, scheduler.JobTypeCloudflarePurge, identity.CloudflareJobKey(item.ID)); err != nil {
				return err
			}
		} else if err := r.purge(ctx, item); err != nil {
			r.logger.Error("events.cloudflare.failed", "item_id", item.ID, "error", err)
		}
	}

	return nil
}

func (r *Router) enqueue(ctx context.Context, itemID int64, jobType, key string) error {
	if r.sched == nil {
		return errors.New("events: scheduler is required for deferred dispatch")
	}
	_, err := r.sched.Enqueue(ctx, interfaces.JobSpec{
		Key:     key,
		Type:    jobType,
		RunAt:   r.now(),
		Payload: scheduler.ItemPayload(itemID),
	})
	if err != nil {
		return err
	}
	r.logger.Debug("events.deferred", "item_id", itemID, "job_type", jobType)
	return nil
}

// RevalidateItem re-fetches the item and runs the frontend pipeline. A
// vanished item is a silent success so stale deferred jobs drain cleanly.
func (r *Router) RevalidateItem(ctx context.Context, itemID int64) error {
	item, err := r.reader.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, interfaces.ErrItemNotFound) {
			r.logger.Debug("events.frontend.item_gone", "item_id", itemID)
			return nil
		}
		return err
	}
	return r.revalidate(ctx, item)
}

// PurgeItem re-fetches the item and runs the CDN purge pipeline.
func (r *Router) PurgeItem(ctx context.Context, itemID int64) error {
	item, err := r.reader.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, interfaces.ErrItemNotFound) {
			r.logger.Debug("events.cloudflare.item_gone", "item_id", itemID)
			return nil
		}
		return err
	}
	return r.purge(ctx, item)
}

// RevalidateNow runs the frontend pipeline synchronously for an already
// loaded item, returning the dispatcher's result for display.
func (r *Router) RevalidateNow(ctx context.Context, item *interfaces.ContentItem) (interfaces.Result, error) {
	plan := r.planner.Plan(ctx, item, planner.Config{
		RevalidateHomepage: r.cfg.Frontend.RevalidateHomepage,
		IncludeItemPaths:   true,
		PathTemplates:      r.cfg.Frontend.PathTemplates,
		TagTemplates:       r.cfg.Frontend.TagTemplates,
		PathFilters:        r.pathFilters,
		TagFilters:         r.tagFilters,
	})
	return r.frontend.Dispatch(ctx, item.ID, plan)
}

// PurgeNow runs the CDN purge pipeline synchronously for an already loaded
// item, returning the dispatcher's result for display. The purge list comes
// from the configured templates only; with none configured the dispatcher
// skips without touching the API.
func (r *Router) PurgeNow(ctx context.Context, item *interfaces.ContentItem) (interfaces.Result, error) {
	plan := r.planner.Plan(ctx, item, planner.Config{
		IncludeItemPaths: false,
		PathTemplates:    r.cfg.Cloudflare.PathTemplates,
		TagTemplates:     r.cfg.Cloudflare.TagTemplates,
		PathFilters:      r.pathFilters,
		TagFilters:       r.tagFilters,
	})
	return r.cloudflare.Purge(ctx, plan)
}

func (r *Router) revalidate(ctx context.Context, item *interfaces.ContentItem) error {
	_, err := r.RevalidateNow(ctx, item)
	return err
}

func (r *Router) purge(ctx context.Context, item *interfaces.ContentItem) error {
	_, err := r.PurgeNow(ctx, item)
	return err
}
