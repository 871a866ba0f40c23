package interfaces

import "context"

// PlanFilter transforms one of the plan's key sets (paths or tags) before
// dispatch. Filters run in registration order; returning the input unchanged
// is the identity behaviour. Filters must not retain the slice.
type PlanFilter func(ctx context.Context, values []string, item *ContentItem) []string
