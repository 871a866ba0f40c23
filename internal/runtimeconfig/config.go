package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrFrontendURLInvalid indicates the configured frontend URL cannot be parsed.
var ErrFrontendURLInvalid = errors.New("revalidation config: frontend URL is invalid")

// ErrSiteURLRequired ensures Cloudflare purging can build absolute URLs.
var ErrSiteURLRequired = errors.New("revalidation config: site URL is required when Cloudflare purging is enabled")

// ErrSiteURLInvalid indicates the configured site URL cannot be parsed.
var ErrSiteURLInvalid = errors.New("revalidation config: site URL is invalid")

// ErrHTTPTimeoutInvalid rejects negative dispatch timeouts.
var ErrHTTPTimeoutInvalid = errors.New("revalidation config: http timeout must be zero or positive")

// ErrNoTermsPolicyUnknown rejects unsupported taxonomy fallback policies.
var ErrNoTermsPolicyUnknown = errors.New("revalidation config: no-terms policy is invalid")

// ErrUnknownPolicyUnknown rejects unsupported unknown-placeholder policies.
var ErrUnknownPolicyUnknown = errors.New("revalidation config: unknown-placeholder policy is invalid")

var ErrLoggingProviderRequired = errors.New("revalidation config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("revalidation config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("revalidation config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("revalidation config: logging format is invalid")

// Policy names accepted by ResolverConfig.
const (
	NoTermsDrop     = "drop"
	NoTermsFallback = "fallback"

	UnknownKeepLiteral  = "keep"
	UnknownDropTemplate = "drop"
)

// Config aggregates the typed settings for the invalidation pipeline. It is
// validated once at load time; the planner and dispatchers consume it as
// plain data afterwards.
type Config struct {
	Enabled bool
	// SiteURL is the host CMS base URL, used to absolutize root-relative
	// purge paths for the CDN.
	SiteURL string
	// HTTPTimeout bounds every outbound call. Zero selects the default.
	HTTPTimeout time.Duration
	Frontend    FrontendConfig
	Cloudflare  CloudflareConfig
	Resolver    ResolverConfig
	Logging     LoggingConfig
	Features    Features
}

// FrontendConfig drives the primary revalidate endpoint dispatcher.
type FrontendConfig struct {
	URL       string
	SecretKey string
	// RevalidateHomepage adds "/" to every plan.
	RevalidateHomepage bool
	// DisableCron dispatches inline within the triggering request instead
	// of enqueueing a deferred job.
	DisableCron bool
	// PathTemplates holds additional path templates, one per entry.
	PathTemplates []string
	// TagTemplates holds cache tag templates, one per entry.
	TagTemplates []string
}

// CloudflareConfig drives the CDN purge dispatcher.
type CloudflareConfig struct {
	Enabled  bool
	ZoneID   string
	APIToken string
	// Schedule defers the purge to a job carrying only the item id.
	Schedule      bool
	PathTemplates []string
	TagTemplates  []string
	// APIBaseURL overrides the Cloudflare API root, mainly for tests.
	APIBaseURL string
}

// ResolverConfig fixes the placeholder policies per resolver instance.
type ResolverConfig struct {
	// NoTermsPolicy selects what a taxonomy placeholder with zero terms
	// expands to: "drop" (template contributes nothing) or "fallback"
	// (substitute NoTermsFallback).
	NoTermsPolicy string
	// NoTermsFallback is the literal substituted under the fallback policy.
	NoTermsFallback string
	// UnknownPolicy selects handling for unrecognized placeholder names:
	// "keep" (marker left verbatim) or "drop" (template discarded).
	UnknownPolicy string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles optional module behaviour.
type Features struct {
	Logger bool
}

// DefaultConfig returns the defaults matching the persisted settings
// defaults of the original admin surface: homepage revalidation on,
// inline dispatch on, drop policy for empty taxonomies.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		HTTPTimeout: 10 * time.Second,
		Frontend: FrontendConfig{
			RevalidateHomepage: true,
			DisableCron:        true,
		},
		Cloudflare: CloudflareConfig{
			APIBaseURL: "https://api.cloudflare.com",
		},
		Resolver: ResolverConfig{
			NoTermsPolicy:   NoTermsDrop,
			NoTermsFallback: "uncategorized",
			UnknownPolicy:   UnknownKeepLiteral,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if frontend := strings.TrimSpace(cfg.Frontend.URL); frontend != "" {
		if _, err := url.ParseRequestURI(frontend); err != nil {
			return fmt.Errorf("%w: %s", ErrFrontendURLInvalid, frontend)
		}
	}
	if cfg.Cloudflare.Enabled {
		site := strings.TrimSpace(cfg.SiteURL)
		if site == "" {
			return ErrSiteURLRequired
		}
		if _, err := url.ParseRequestURI(site); err != nil {
			return fmt.Errorf("%w: %s", ErrSiteURLInvalid, site)
		}
	}
	if cfg.HTTPTimeout < 0 {
		return ErrHTTPTimeoutInvalid
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Resolver.NoTermsPolicy)) {
	case "", NoTermsDrop, NoTermsFallback:
	default:
		return fmt.Errorf("%w: %s", ErrNoTermsPolicyUnknown, cfg.Resolver.NoTermsPolicy)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Resolver.UnknownPolicy)) {
	case "", UnknownKeepLiteral, UnknownDropTemplate:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPolicyUnknown, cfg.Resolver.UnknownPolicy)
	}
	if cfg.Features.Logger {
		provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
