package interfaces

import "context"

// Authorizer answers capability checks for admin-triggered actions. Hosts
// bridge this onto their own user/permission model.
type Authorizer interface {
	Can(ctx context.Context, actor, capability string) bool
}
