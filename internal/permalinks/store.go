package permalinks

import (
	"context"
	"net/url"
	"strings"
)

// Store persists the single old-permalink record per content item.
// Writes are last-write-wins; records are never cleared, only overwritten.
type Store interface {
	Set(ctx context.Context, itemID int64, permalink string) error
	Get(ctx context.Context, itemID int64) (string, bool, error)
}

// PathFromPermalink extracts the path portion of a permalink, trimming a
// single trailing slash. The homepage ("/", empty, or unparsable input)
// yields an empty string.
func PathFromPermalink(permalink string) string {
	trimmed := strings.TrimSpace(permalink)
	if trimmed == "" {
		return ""
	}

	path := trimmed
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Path != "" {
		path = parsed.Path
	} else if err == nil {
		path = ""
	}
	if path == "" || path == "/" {
		return ""
	}
	if strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	if path == "" {
		return ""
	}
	return path
}
