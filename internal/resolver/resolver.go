package resolver

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// Placeholders are written as %name% in path templates and {name} in tag
// templates; both forms are accepted everywhere and normalized during the
// scan.
var placeholderPattern = regexp.MustCompile(`%([A-Za-z0-9_-]+)%|\{([A-Za-z0-9_-]+)\}`)

// NoTermsPolicy selects the expansion of a taxonomy placeholder that
// resolves to zero terms.
type NoTermsPolicy int

const (
	// NoTermsDrop discards the template; it contributes no output.
	NoTermsDrop NoTermsPolicy = iota
	// NoTermsFallback substitutes a fixed literal instead.
	NoTermsFallback
)

// UnknownPolicy selects the handling of a placeholder name that matches no
// attribute and no taxonomy on the item.
type UnknownPolicy int

const (
	// UnknownKeepLiteral leaves the marker verbatim in the output.
	UnknownKeepLiteral UnknownPolicy = iota
	// UnknownDropTemplate discards the whole template.
	UnknownDropTemplate
)

// Options fixes the resolver policies. One policy applies per instance;
// call sites needing different behaviour construct separate resolvers.
type Options struct {
	NoTerms  NoTermsPolicy
	Fallback string
	Unknown  UnknownPolicy
}

// OptionsFromConfig maps the validated runtime configuration onto resolver
// options.
func OptionsFromConfig(cfg runtimeconfig.ResolverConfig) Options {
	opts := Options{Fallback: cfg.NoTermsFallback}
	if strings.EqualFold(strings.TrimSpace(cfg.NoTermsPolicy), runtimeconfig.NoTermsFallback) {
		opts.NoTerms = NoTermsFallback
	}
	if strings.EqualFold(strings.TrimSpace(cfg.UnknownPolicy), runtimeconfig.UnknownDropTemplate) {
		opts.Unknown = UnknownDropTemplate
	}
	return opts
}

// Resolver expands placeholder templates against a content item. It is pure
// apart from read-only lookups through the content reader; lookup failures
// degrade to "no terms" and never surface as errors.
type Resolver struct {
	reader interfaces.ContentReader
	opts   Options
	logger interfaces.Logger
}

// New constructs a resolver bound to the supplied content reader.
func New(reader interfaces.ContentReader, opts Options, logger interfaces.Logger) *Resolver {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Resolver{reader: reader, opts: opts, logger: logger}
}

// Resolve expands every template against the item, preserving template order
// and per-template expansion order. A template with N placeholders expands to
// the Cartesian product of the per-placeholder values, substituted left to
// right.
func (r *Resolver) Resolve(ctx context.Context, templates []string, item *interfaces.ContentItem) []string {
	if item == nil {
		return nil
	}

	out := []string{}
	for _, template := range templates {
		out = append(out, r.expand(ctx, strings.TrimSpace(template), item)...)
	}
	return out
}

func (r *Resolver) expand(ctx context.Context, template string, item *interfaces.ContentItem) []string {
	if template == "" {
		return nil
	}

	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return []string{template}
	}

	working := []string{template}
	for _, match := range matches {
		token := match[0]
		name := match[1]
		if name == "" {
			name = match[2]
		}

		values, known := r.values(ctx, strings.ToLower(name), item)
		if !known {
			if r.opts.Unknown == UnknownDropTemplate {
				r.logger.Debug("resolver.placeholder.unknown", "name", name, "template", template)
				return nil
			}
			continue
		}
		if len(values) == 0 {
			if r.opts.NoTerms == NoTermsFallback && r.opts.Fallback != "" {
				values = []string{r.opts.Fallback}
			} else {
				return nil
			}
		}

		next := make([]string, 0, len(working)*len(values))
		for _, current := range working {
			for _, value := range values {
				next = append(next, strings.Replace(current, token, value, 1))
			}
		}
		working = next
	}
	return working
}

// values resolves one placeholder name to its concrete substitutions. The
// second return reports whether the name is recognized at all.
func (r *Resolver) values(ctx context.Context, name string, item *interfaces.ContentItem) ([]string, bool) {
	switch name {
	case "slug":
		return nonEmpty(item.Slug), true
	case "author_nicename":
		return r.authorValue(ctx, item, r.reader.AuthorNicename), true
	case "author_username":
		return r.authorValue(ctx, item, r.reader.AuthorUsername), true
	case "database_id":
		return []string{strconv.FormatInt(item.ID, 10)}, true
	case "id":
		return []string{GlobalID(item.ID)}, true
	case "category", "categories":
		return r.terms(ctx, item.ID, "category"), true
	case "tag", "tags", "post_tag":
		return r.terms(ctx, item.ID, "post_tag"), true
	}

	taxonomies, err := r.reader.Taxonomies(ctx, item.ID)
	if err != nil {
		r.logger.Debug("resolver.taxonomies.lookup_failed", "item_id", item.ID, "error", err)
		return nil, false
	}
	for _, taxonomy := range taxonomies {
		if strings.EqualFold(taxonomy, name) {
			return r.terms(ctx, item.ID, taxonomy), true
		}
	}
	return nil, false
}

func (r *Resolver) terms(ctx context.Context, itemID int64, taxonomy string) []string {
	slugs, err := r.reader.TermSlugs(ctx, itemID, taxonomy)
	if err != nil {
		r.logger.Debug("resolver.terms.lookup_failed", "item_id", itemID, "taxonomy", taxonomy, "error", err)
		return nil
	}
	return slugs
}

func (r *Resolver) authorValue(ctx context.Context, item *interfaces.ContentItem, lookup func(context.Context, int64) (string, error)) []string {
	value, err := lookup(ctx, item.AuthorID)
	if err != nil {
		r.logger.Debug("resolver.author.lookup_failed", "item_id", item.ID, "author_id", item.AuthorID, "error", err)
		return nil
	}
	return nonEmpty(value)
}

// GlobalID encodes the integer id into the base64 global-id form used by
// GraphQL-style frontends ("post:<id>").
func GlobalID(id int64) string {
	return base64.StdEncoding.EncodeToString(fmt.Appendf(nil, "post:%d", id))
}

// ContainsPlaceholder reports whether the string still carries an
// unsubstituted marker. The planner uses it to keep unresolved templates out
// of dispatch payloads.
func ContainsPlaceholder(s string) bool {
	return placeholderPattern.MatchString(s)
}

func nonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}
