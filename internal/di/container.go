package di

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/Dexerto/on-demand-revalidation/internal/admin"
	"github.com/Dexerto/on-demand-revalidation/internal/cloudflare"
	"github.com/Dexerto/on-demand-revalidation/internal/commands"
	"github.com/Dexerto/on-demand-revalidation/internal/events"
	"github.com/Dexerto/on-demand-revalidation/internal/jobs"
	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/internal/logging/console"
	"github.com/Dexerto/on-demand-revalidation/internal/logging/gologger"
	"github.com/Dexerto/on-demand-revalidation/internal/permalinks"
	"github.com/Dexerto/on-demand-revalidation/internal/planner"
	"github.com/Dexerto/on-demand-revalidation/internal/resolver"
	"github.com/Dexerto/on-demand-revalidation/internal/revalidate"
	"github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"
	"github.com/Dexerto/on-demand-revalidation/internal/scheduler"
	"github.com/Dexerto/on-demand-revalidation/internal/settings"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"

	adapters "github.com/Dexerto/on-demand-revalidation/internal/adapters/memory"
)

// Container assembles the revalidation pipeline from configuration plus the
// collaborators the host injects.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	httpClient     *http.Client
	bunDB          *bun.DB
	reader         interfaces.ContentReader
	sched          interfaces.Scheduler
	settingsStore  interfaces.SettingsStore
	authorizer     interfaces.Authorizer
	permalinkStore permalinks.Store
	clock          func() time.Time
	pathFilters    []interfaces.PlanFilter
	tagFilters     []interfaces.PlanFilter

	tracker    *permalinks.Tracker
	resolver   *resolver.Resolver
	planner    *planner.Planner
	frontend   *revalidate.Dispatcher
	cloudflare *cloudflare.Dispatcher
	router     *events.Router
	handlers   *commands.HandlerSet
	worker     *jobs.Worker
	adminSvc   *admin.Service
}

// Option customizes container construction.
type Option func(*Container)

// WithContentReader injects the host's content adapter. Defaults to the
// in-memory reader, which only makes sense for tests and examples.
func WithContentReader(reader interfaces.ContentReader) Option {
	return func(c *Container) {
		if reader != nil {
			c.reader = reader
		}
	}
}

// WithScheduler injects the deferred-job backend.
func WithScheduler(sched interfaces.Scheduler) Option {
	return func(c *Container) {
		if sched != nil {
			c.sched = sched
		}
	}
}

// WithSettingsStore injects a persisted settings surface. When present the
// container overlays it onto the supplied config before wiring.
func WithSettingsStore(store interfaces.SettingsStore) Option {
	return func(c *Container) {
		if store != nil {
			c.settingsStore = store
		}
	}
}

// WithAuthorizer injects the capability checker guarding admin actions.
func WithAuthorizer(authorizer interfaces.Authorizer) Option {
	return func(c *Container) {
		if authorizer != nil {
			c.authorizer = authorizer
		}
	}
}

// WithLoggerProvider injects a logging backend, overriding the configured one.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithPlanFilters appends hooks run over the final path set of every plan.
func WithPlanFilters(filters ...interfaces.PlanFilter) Option {
	return func(c *Container) {
		c.pathFilters = append(c.pathFilters, filters...)
	}
}

// WithTagFilters appends hooks run over the final tag set of every plan.
func WithTagFilters(filters ...interfaces.PlanFilter) Option {
	return func(c *Container) {
		c.tagFilters = append(c.tagFilters, filters...)
	}
}

// WithHTTPClient replaces the outbound client shared by both dispatchers.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBunDB supplies a database; permalinks and settings then persist there
// instead of in process memory.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		if db != nil {
			c.bunDB = db
		}
	}
}

// WithPermalinkStore overrides the permalink store chosen from WithBunDB.
func WithPermalinkStore(store permalinks.Store) Option {
	return func(c *Container) {
		if store != nil {
			c.permalinkStore = store
		}
	}
}

// WithClock overrides the scheduling clock.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewContainer validates the configuration and wires the pipeline.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.settingsStore != nil {
		loaded, err := settings.Load(context.Background(), c.settingsStore, c.Config)
		if err != nil {
			return nil, err
		}
		if err := loaded.Validate(); err != nil {
			return nil, err
		}
		c.Config = loaded
	}

	if c.loggerProvider == nil && c.Config.Features.Logger {
		provider, err := buildLoggerProvider(c.Config.Logging)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	if c.reader == nil {
		c.reader = adapters.NewReader()
	}
	if c.sched == nil {
		c.sched = scheduler.NewInMemory(scheduler.WithClock(c.clock))
	}
	if c.permalinkStore == nil {
		if c.bunDB != nil {
			store := permalinks.NewBunStore(c.bunDB)
			if err := store.Migrate(context.Background()); err != nil {
				return nil, err
			}
			c.permalinkStore = store
		} else {
			c.permalinkStore = permalinks.NewMemoryStore()
		}
	}

	httpOpts := func() []revalidate.Option {
		opts := []revalidate.Option{
			revalidate.WithLogger(logging.DispatchLogger(c.loggerProvider)),
			revalidate.WithTimeout(c.Config.HTTPTimeout),
		}
		if c.httpClient != nil {
			opts = append(opts, revalidate.WithHTTPClient(c.httpClient))
		}
		return opts
	}
	cfOpts := func() []cloudflare.Option {
		opts := []cloudflare.Option{
			cloudflare.WithLogger(logging.CloudflareLogger(c.loggerProvider)),
			cloudflare.WithTimeout(c.Config.HTTPTimeout),
		}
		if c.httpClient != nil {
			opts = append(opts, cloudflare.WithHTTPClient(c.httpClient))
		}
		return opts
	}

	c.tracker = permalinks.NewTracker(c.permalinkStore, c.reader, logging.PlannerLogger(c.loggerProvider))
	c.resolver = resolver.New(c.reader, resolver.OptionsFromConfig(c.Config.Resolver), logging.PlannerLogger(c.loggerProvider))
	c.planner = planner.New(c.resolver, c.tracker, logging.PlannerLogger(c.loggerProvider))
	c.frontend = revalidate.New(c.Config.Frontend, httpOpts()...)
	c.cloudflare = cloudflare.New(c.Config.Cloudflare, c.Config.SiteURL, cfOpts()...)

	c.router = events.NewRouter(
		c.Config,
		c.planner,
		c.frontend,
		c.cloudflare,
		c.tracker,
		c.reader,
		c.sched,
		events.WithClock(c.clock),
		events.WithLogger(logging.EventsLogger(c.loggerProvider)),
		events.WithPlanFilters(c.pathFilters...),
		events.WithTagFilters(c.tagFilters...),
	)

	handlers, err := commands.RegisterRevalidationCommands(nil, c.router, c.loggerProvider)
	if err != nil {
		return nil, err
	}
	c.handlers = handlers

	c.worker = jobs.NewWorker(c.sched, c.handlers,
		jobs.WithClock(c.clock),
		jobs.WithLogger(logging.JobsLogger(c.loggerProvider)),
	)
	c.adminSvc = admin.NewService(c.authorizer, c.reader, c.router, logging.AdminLogger(c.loggerProvider))

	return c, nil
}

// Router exposes the event entry point host hooks call.
func (c *Container) Router() *events.Router { return c.router }

// Worker exposes the deferred-job processor.
func (c *Container) Worker() *jobs.Worker { return c.worker }

// AdminService exposes the manual test actions.
func (c *Container) AdminService() *admin.Service { return c.adminSvc }

// Handlers exposes the command handlers for external registries.
func (c *Container) Handlers() *commands.HandlerSet { return c.handlers }

// Scheduler exposes the configured job backend.
func (c *Container) Scheduler() interfaces.Scheduler { return c.sched }

// ContentReader exposes the configured content adapter.
func (c *Container) ContentReader() interfaces.ContentReader { return c.reader }

// Frontend exposes the frontend dispatcher, mainly for its debug surface.
func (c *Container) Frontend() *revalidate.Dispatcher { return c.frontend }

// LoggerProvider exposes the resolved logging backend, nil when disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func buildLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return console.NewProvider(console.Options{MinLevel: console.ParseLevel(cfg.Level)}), nil
	}
}
