package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

type settingModel struct {
	bun.BaseModel `bun:"table:odr_settings"`

	Section   string    `bun:"section,pk"`
	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BunStore persists settings sections in the host database.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunStore constructs a Bun-backed settings store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate creates the backing table when it does not exist yet.
func (s *BunStore) Migrate(ctx context.Context) error {
	if s.db == nil {
		return errors.New("settings: bun store requires a database")
	}
	_, err := s.db.NewCreateTable().Model((*settingModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *BunStore) Get(ctx context.Context, section, name string) (string, bool, error) {
	if s.db == nil {
		return "", false, errors.New("settings: bun store requires a database")
	}
	var model settingModel
	err := s.db.NewSelect().
		Model(&model).
		Where("section = ?", section).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

func (s *BunStore) Set(ctx context.Context, section, name, value string) error {
	if s.db == nil {
		return errors.New("settings: bun store requires a database")
	}
	model := &settingModel{
		Section:   section,
		Name:      name,
		Value:     value,
		UpdatedAt: s.now(),
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (section, name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
