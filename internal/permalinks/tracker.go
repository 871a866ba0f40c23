package permalinks

import (
	"context"

	"github.com/Dexerto/on-demand-revalidation/internal/domain"
	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// Tracker records a content item's permalink immediately before the stored
// record changes, so plans can purge the previous URL after a rename or
// trash operation.
type Tracker struct {
	store  Store
	reader interfaces.ContentReader
	logger interfaces.Logger
}

// NewTracker constructs a tracker over the supplied store and reader.
func NewTracker(store Store, reader interfaces.ContentReader, logger interfaces.Logger) *Tracker {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Tracker{store: store, reader: reader, logger: logger}
}

// Capture runs on the pre-update hook. Transitions into trash are skipped;
// the dedicated pre-trash capture records those so the pre-trash URL wins.
func (t *Tracker) Capture(ctx context.Context, itemID int64, newStatus string) error {
	if domain.Status(newStatus) == domain.StatusTrash {
		return nil
	}
	return t.record(ctx, itemID)
}

// CaptureBeforeTrash always records the current permalink.
func (t *Tracker) CaptureBeforeTrash(ctx context.Context, itemID int64) error {
	return t.record(ctx, itemID)
}

// PreviousPath returns the stored old-permalink path when one exists and is
// not the homepage. The record is kept; the next capture overwrites it.
func (t *Tracker) PreviousPath(ctx context.Context, itemID int64) (string, bool) {
	permalink, ok, err := t.store.Get(ctx, itemID)
	if err != nil {
		t.logger.Warn("permalinks.read_failed", "item_id", itemID, "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	path := PathFromPermalink(permalink)
	if path == "" {
		return "", false
	}
	return path, true
}

func (t *Tracker) record(ctx context.Context, itemID int64) error {
	item, err := t.reader.GetByID(ctx, itemID)
	if err != nil {
		t.logger.Warn("permalinks.capture.lookup_failed", "item_id", itemID, "error", err)
		return err
	}
	if err := t.store.Set(ctx, itemID, item.Permalink); err != nil {
		t.logger.Warn("permalinks.capture.store_failed", "item_id", itemID, "error", err)
		return err
	}
	t.logger.Debug("permalinks.captured", "item_id", itemID, "permalink", item.Permalink)
	return nil
}
