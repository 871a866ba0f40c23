package settings

import (
	"context"
	"strings"

	"github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// Section and option names match the wp_options keys used on the
// WordPress side, so a migrated options table loads without renaming.
const (
	SectionDefault    = "on_demand_revalidation_default_settings"
	SectionPostUpdate = "on_demand_revalidation_post_update_settings"
	SectionCloudflare = "on_demand_revalidation_cloudflare_settings"
)

const (
	optFrontendURL        = "frontend_url"
	optRevalidateSecret   = "revalidate_secret_key"
	optRevalidateHomepage = "revalidate_homepage"
	optDisableCron        = "disable_cron"
	optRevalidatePaths    = "revalidate_paths"
	optRevalidateTags     = "revalidate_tags"
	optPurgeEnabled       = "cloudflare_cache_purge_enabled"
	optZoneID             = "cloudflare_zone_id"
	optAPIToken           = "cloudflare_api_token"
	optPurgePaths         = "cloudflare_cache_purge_paths"
	optPurgeTags          = "cloudflare_cache_purge_tags"
	optPurgeSchedule      = "cloudflare_schedule_on_post_update"
)

// checkboxOn is the value checked settings persist.
const checkboxOn = "on"

// Load overlays persisted settings onto the base configuration. Options that
// were never saved keep the base value; checkbox semantics follow the
// original storage format where "on" means enabled and any other stored
// value means off.
func Load(ctx context.Context, store interfaces.SettingsStore, base runtimeconfig.Config) (runtimeconfig.Config, error) {
	if store == nil {
		return base, nil
	}
	cfg := base

	loaders := []func(context.Context, interfaces.SettingsStore, *runtimeconfig.Config) error{
		loadDefaults,
		loadPostUpdate,
		loadCloudflare,
	}
	for _, load := range loaders {
		if err := load(ctx, store, &cfg); err != nil {
			return base, err
		}
	}
	return cfg, nil
}

func loadDefaults(ctx context.Context, store interfaces.SettingsStore, cfg *runtimeconfig.Config) error {
	if value, ok, err := store.Get(ctx, SectionDefault, optFrontendURL); err != nil {
		return err
	} else if ok {
		cfg.Frontend.URL = strings.TrimSpace(value)
	}
	if value, ok, err := store.Get(ctx, SectionDefault, optRevalidateSecret); err != nil {
		return err
	} else if ok {
		cfg.Frontend.SecretKey = strings.TrimSpace(value)
	}
	return nil
}

func loadPostUpdate(ctx context.Context, store interfaces.SettingsStore, cfg *runtimeconfig.Config) error {
	if enabled, ok, err := checkbox(ctx, store, SectionPostUpdate, optRevalidateHomepage); err != nil {
		return err
	} else if ok {
		cfg.Frontend.RevalidateHomepage = enabled
	}
	if enabled, ok, err := checkbox(ctx, store, SectionPostUpdate, optDisableCron); err != nil {
		return err
	} else if ok {
		cfg.Frontend.DisableCron = enabled
	}
	if lines, ok, err := lineList(ctx, store, SectionPostUpdate, optRevalidatePaths); err != nil {
		return err
	} else if ok {
		cfg.Frontend.PathTemplates = lines
	}
	if lines, ok, err := lineList(ctx, store, SectionPostUpdate, optRevalidateTags); err != nil {
		return err
	} else if ok {
		cfg.Frontend.TagTemplates = lines
	}
	return nil
}

func loadCloudflare(ctx context.Context, store interfaces.SettingsStore, cfg *runtimeconfig.Config) error {
	if enabled, ok, err := checkbox(ctx, store, SectionCloudflare, optPurgeEnabled); err != nil {
		return err
	} else if ok {
		cfg.Cloudflare.Enabled = enabled
	}
	if value, ok, err := store.Get(ctx, SectionCloudflare, optZoneID); err != nil {
		return err
	} else if ok {
		cfg.Cloudflare.ZoneID = strings.TrimSpace(value)
	}
	if value, ok, err := store.Get(ctx, SectionCloudflare, optAPIToken); err != nil {
		return err
	} else if ok {
		cfg.Cloudflare.APIToken = strings.TrimSpace(value)
	}
	if lines, ok, err := lineList(ctx, store, SectionCloudflare, optPurgePaths); err != nil {
		return err
	} else if ok {
		cfg.Cloudflare.PathTemplates = lines
	}
	if lines, ok, err := lineList(ctx, store, SectionCloudflare, optPurgeTags); err != nil {
		return err
	} else if ok {
		cfg.Cloudflare.TagTemplates = lines
	}
	if enabled, ok, err := checkbox(ctx, store, SectionCloudflare, optPurgeSchedule); err != nil {
		return err
	} else if ok {
		cfg.Cloudflare.Schedule = enabled
	}
	return nil
}

func checkbox(ctx context.Context, store interfaces.SettingsStore, section, name string) (bool, bool, error) {
	value, ok, err := store.Get(ctx, section, name)
	if err != nil || !ok {
		return false, ok, err
	}
	return strings.EqualFold(strings.TrimSpace(value), checkboxOn), true, nil
}

// lineList splits a textarea-style option into one template per line.
func lineList(ctx context.Context, store interfaces.SettingsStore, section, name string) ([]string, bool, error) {
	value, ok, err := store.Get(ctx, section, name)
	if err != nil || !ok {
		return nil, ok, err
	}
	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out, true, nil
}
