package scheduler

import (
	"fmt"
	"strconv"
)

const (
	// JobTypeFrontendDispatch defers a Next.js revalidation for one item.
	JobTypeFrontendDispatch = "revalidation.frontend.dispatch"
	// JobTypeCloudflarePurge defers a Cloudflare cache purge for one item.
	JobTypeCloudflarePurge = "revalidation.cloudflare.purge"
)

const payloadItemID = "item_id"

// ItemPayload builds the payload carried by both deferred job types. Only
// the item id travels; the worker re-reads current state at execution time.
func ItemPayload(itemID int64) map[string]any {
	return map[string]any{payloadItemID: itemID}
}

// ItemIDFromPayload recovers the item id from a stored payload. Numeric
// values survive round trips through JSON-backed schedulers as float64, so
// both representations are accepted.
func ItemIDFromPayload(payload map[string]any) (int64, error) {
	raw, ok := payload[payloadItemID]
	if !ok {
		return 0, fmt.Errorf("scheduler: payload missing %s", payloadItemID)
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("scheduler: payload %s is not an id: %w", payloadItemID, err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("scheduler: payload %s has unsupported type %T", payloadItemID, raw)
	}
}
