// Package memory provides an in-memory ContentReader for tests and example
// wiring. Host integrations replace it with an adapter over their real
// content store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-slug"

	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// Item seeds the reader with one content record and its relations.
type Item struct {
	ID        int64
	Title     string
	Slug      string
	AuthorID  int64
	Status    string
	Permalink string
	// Terms maps taxonomy name to term slugs, e.g. "category" -> {"news"}.
	Terms map[string][]string
}

// Author seeds the per-author lookup values.
type Author struct {
	ID       int64
	Nicename string
	Username string
}

// Reader serves seeded content to the resolver and planner.
type Reader struct {
	mu      sync.RWMutex
	items   map[int64]*Item
	authors map[int64]Author
}

// NewReader creates an empty reader.
func NewReader() *Reader {
	return &Reader{
		items:   make(map[int64]*Item),
		authors: make(map[int64]Author),
	}
}

// SeedItem stores an item, deriving a slug from the title when none is set.
func (r *Reader) SeedItem(item Item) {
	if item.Slug == "" && item.Title != "" {
		if normalized, err := slug.Normalize(item.Title); err == nil {
			item.Slug = normalized
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := item
	r.items[item.ID] = &stored
}

// SeedAuthor stores an author record.
func (r *Reader) SeedAuthor(author Author) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authors[author.ID] = author
}

// Remove drops an item, simulating deletion between enqueue and execution.
func (r *Reader) Remove(itemID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, itemID)
}

func (r *Reader) GetByID(_ context.Context, id int64) (*interfaces.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, interfaces.ErrItemNotFound
	}
	return toContentItem(item), nil
}

// LatestPublished returns the published item with the highest id, mirroring
// a most-recent-first query.
func (r *Reader) LatestPublished(context.Context) (*interfaces.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *Item
	for _, item := range r.items {
		if item.Status != "publish" {
			continue
		}
		if latest == nil || item.ID > latest.ID {
			latest = item
		}
	}
	if latest == nil {
		return nil, interfaces.ErrItemNotFound
	}
	return toContentItem(latest), nil
}

func (r *Reader) AuthorNicename(_ context.Context, authorID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authors[authorID].Nicename, nil
}

func (r *Reader) AuthorUsername(_ context.Context, authorID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authors[authorID].Username, nil
}

func (r *Reader) TermSlugs(_ context.Context, itemID int64, taxonomy string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, nil
	}
	for name, slugs := range item.Terms {
		if strings.EqualFold(name, taxonomy) {
			out := make([]string, len(slugs))
			copy(out, slugs)
			return out, nil
		}
	}
	return nil, nil
}

func (r *Reader) Taxonomies(_ context.Context, itemID int64) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, nil
	}
	names := make([]string, 0, len(item.Terms))
	for name := range item.Terms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func toContentItem(item *Item) *interfaces.ContentItem {
	return &interfaces.ContentItem{
		ID:        item.ID,
		Slug:      item.Slug,
		AuthorID:  item.AuthorID,
		Status:    item.Status,
		Permalink: item.Permalink,
	}
}
