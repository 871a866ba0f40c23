package permalinks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

type permalinkModel struct {
	bun.BaseModel `bun:"table:odr_permalinks"`

	ItemID     int64     `bun:"item_id,pk"`
	Permalink  string    `bun:"permalink,notnull"`
	CapturedAt time.Time `bun:"captured_at,notnull"`
}

// BunStore persists old-permalink records in the host database so renames
// survive process restarts between capture and dispatch.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunStore constructs a Bun-backed store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate creates the backing table when it does not exist yet.
func (s *BunStore) Migrate(ctx context.Context) error {
	if s.db == nil {
		return errors.New("permalinks: bun store requires a database")
	}
	_, err := s.db.NewCreateTable().Model((*permalinkModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *BunStore) Set(ctx context.Context, itemID int64, permalink string) error {
	if s.db == nil {
		return errors.New("permalinks: bun store requires a database")
	}
	model := &permalinkModel{
		ItemID:     itemID,
		Permalink:  permalink,
		CapturedAt: s.now(),
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (item_id) DO UPDATE").
		Set("permalink = EXCLUDED.permalink").
		Set("captured_at = EXCLUDED.captured_at").
		Exec(ctx)
	return err
}

func (s *BunStore) Get(ctx context.Context, itemID int64) (string, bool, error) {
	if s.db == nil {
		return "", false, errors.New("permalinks: bun store requires a database")
	}
	var model permalinkModel
	err := s.db.NewSelect().Model(&model).Where("item_id = ?", itemID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Permalink, true, nil
}
