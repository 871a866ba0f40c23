package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// FrontendJobKey identifies the deferred frontend dispatch for one item.
// Re-saving the item regenerates the same key, replacing the pending job.
func FrontendJobKey(itemID int64) string {
	return jobKey("frontend", itemID)
}

// CloudflareJobKey identifies the deferred cache purge for one item.
func CloudflareJobKey(itemID int64) string {
	return jobKey("cloudflare", itemID)
}

func jobKey(channel string, itemID int64) string {
	return UUID("odr:job:" + channel + ":" + strconv.FormatInt(itemID, 10)).String()
}
