package planner

import (
	"context"
	"strings"

	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/internal/permalinks"
	"github.com/Dexerto/on-demand-revalidation/internal/resolver"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// Config selects what one plan assembly includes. Each dispatcher feeds its
// own template lists through the same planner.
type Config struct {
	// RevalidateHomepage adds "/" to the path set.
	RevalidateHomepage bool
	// IncludeItemPaths adds the item's current and previous URL paths.
	// The frontend channel wants them; the CDN channel purges templates only.
	IncludeItemPaths bool
	// PathTemplates expand into additional paths; only expansions starting
	// with "/" and free of unresolved markers are kept.
	PathTemplates []string
	// TagTemplates expand into cache tags.
	TagTemplates []string
	// PathFilters and TagFilters run over the final sets, identity when nil.
	PathFilters []interfaces.PlanFilter
	TagFilters  []interfaces.PlanFilter
}

// Planner assembles the invalidation plan for one content item.
type Planner struct {
	resolver *resolver.Resolver
	tracker  *permalinks.Tracker
	logger   interfaces.Logger
}

// New constructs a planner over the shared resolver and permalink tracker.
func New(res *resolver.Resolver, tracker *permalinks.Tracker, logger interfaces.Logger) *Planner {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Planner{resolver: res, tracker: tracker, logger: logger}
}

// Plan builds the deduplicated path and tag sets for the item. Planning is
// idempotent: the same item and configuration produce the same sets, so
// redundant deferred purges stay harmless.
func (p *Planner) Plan(ctx context.Context, item *interfaces.ContentItem, cfg Config) Plan {
	paths := newStringSet()
	tags := newStringSet()
	if item == nil {
		return Plan{}
	}

	if cfg.RevalidateHomepage {
		paths.add("/")
	}

	if cfg.IncludeItemPaths {
		if current := permalinks.PathFromPermalink(item.Permalink); current != "" {
			paths.add(current)
		}
		if p.tracker != nil {
			if previous, ok := p.tracker.PreviousPath(ctx, item.ID); ok {
				paths.add(previous)
			}
		}
	}

	for _, expanded := range p.resolver.Resolve(ctx, cfg.PathTemplates, item) {
		if !strings.HasPrefix(expanded, "/") {
			continue
		}
		if resolver.ContainsPlaceholder(expanded) {
			continue
		}
		paths.add(expanded)
	}

	for _, expanded := range p.resolver.Resolve(ctx, cfg.TagTemplates, item) {
		if resolver.ContainsPlaceholder(expanded) {
			continue
		}
		tags.add(expanded)
	}

	plan := Plan{
		Paths: applyFilters(ctx, cfg.PathFilters, paths.slice(), item),
		Tags:  applyFilters(ctx, cfg.TagFilters, tags.slice(), item),
	}
	p.logger.Debug("planner.plan.built",
		"item_id", item.ID,
		"paths", len(plan.Paths),
		"tags", len(plan.Tags),
	)
	return plan
}

func applyFilters(ctx context.Context, filters []interfaces.PlanFilter, values []string, item *interfaces.ContentItem) []string {
	for _, filter := range filters {
		if filter == nil {
			continue
		}
		values = filter(ctx, values, item)
	}
	return dedupe(values)
}

// dedupe re-applies set semantics after filters ran; filters may append
// duplicates or reorder freely.
func dedupe(values []string) []string {
	set := newStringSet()
	set.addAll(values)
	return set.slice()
}
