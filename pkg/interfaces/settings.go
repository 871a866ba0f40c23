package interfaces

import "context"

// SettingsStore is the persisted key-value configuration surface exposed by
// the host. Options are grouped into named sections; missing options fall
// back to the caller-provided default.
type SettingsStore interface {
	// Get returns the raw option value and whether it was present.
	Get(ctx context.Context, section, name string) (string, bool, error)
	// Set stores an option value, creating the section when needed.
	Set(ctx context.Context, section, name, value string) error
}
