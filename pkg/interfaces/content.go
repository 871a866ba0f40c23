package interfaces

import (
	"context"
	"errors"
)

// ErrItemNotFound reports a content item that does not (or no longer) exist.
// Deferred jobs treat it as "nothing to do" rather than a failure.
var ErrItemNotFound = errors.New("content: item not found")

// ContentItem is the read-only projection of a CMS content item the
// invalidation pipeline operates on. The host CMS owns the record; this
// module never mutates it.
type ContentItem struct {
	// ID is the host-assigned integer identifier.
	ID int64
	// Slug is the URL fragment identifying the item.
	Slug string
	// AuthorID references the item author for author-based placeholders.
	AuthorID int64
	// Status is the current lifecycle status (see internal/domain).
	Status string
	// Permalink is the full canonical URL derived by the host.
	Permalink string
}

// ContentReader is the narrow read surface the invalidation pipeline needs
// from the host CMS. Lookups that fail should return an error; placeholder
// resolution degrades failed taxonomy lookups to "no terms".
type ContentReader interface {
	// GetByID returns the item or ErrItemNotFound.
	GetByID(ctx context.Context, id int64) (*ContentItem, error)
	// LatestPublished returns the most recently published item, or
	// ErrItemNotFound when none exists. Used by the admin test actions.
	LatestPublished(ctx context.Context) (*ContentItem, error)
	// AuthorNicename resolves the author display name.
	AuthorNicename(ctx context.Context, authorID int64) (string, error)
	// AuthorUsername resolves the author login name.
	AuthorUsername(ctx context.Context, authorID int64) (string, error)
	// TermSlugs returns the item's term slugs for one taxonomy, in a
	// stable order.
	TermSlugs(ctx context.Context, itemID int64, taxonomy string) ([]string, error)
	// Taxonomies lists the taxonomy names the item holds terms under.
	Taxonomies(ctx context.Context, itemID int64) ([]string, error)
}
