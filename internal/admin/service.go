package admin

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// Capabilities checked before each test action runs.
const (
	CapabilityEditPosts     = "edit_posts"
	CapabilityManageOptions = "manage_options"
)

// Messages surfaced verbatim when a caller lacks the required capability.
const (
	MessageCannotEditPosts     = "You cannot edit posts."
	MessageCannotManageOptions = "You do not have permission to manage options."
)

const permissionDeniedCode = "ADMIN_PERMISSION_DENIED"

// Pipeline runs a full dispatch synchronously against an already loaded item.
// The event router satisfies this.
type Pipeline interface {
	RevalidateNow(ctx context.Context, item *interfaces.ContentItem) (interfaces.Result, error)
	PurgeNow(ctx context.Context, item *interfaces.ContentItem) (interfaces.Result, error)
}

// Service exposes the manual test actions the settings screen offers:
// revalidate the latest published item, and exercise the Cloudflare
// configuration end to end.
type Service struct {
	authorizer interfaces.Authorizer
	reader     interfaces.ContentReader
	pipeline   Pipeline
	logger     interfaces.Logger
}

// NewService wires the admin actions over the router pipeline.
func NewService(authorizer interfaces.Authorizer, reader interfaces.ContentReader, pipeline Pipeline, logger interfaces.Logger) *Service {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Service{
		authorizer: authorizer,
		reader:     reader,
		pipeline:   pipeline,
		logger:     logger,
	}
}

// TestRevalidation dispatches the latest published item to the frontend and
// reports the outcome. Requires the edit_posts capability.
func (s *Service) TestRevalidation(ctx context.Context, actor string) (interfaces.Result, error) {
	if !s.allowed(ctx, actor, CapabilityEditPosts) {
		return s.denied(actor, MessageCannotEditPosts)
	}

	item, result, err := s.latest(ctx)
	if item == nil {
		return result, err
	}
	return s.pipeline.RevalidateNow(ctx, item)
}

// TestCloudflare runs the purge pipeline for the latest published item,
// validating the stored credentials along the way. Requires the
// manage_options capability.
func (s *Service) TestCloudflare(ctx context.Context, actor string) (interfaces.Result, error) {
	if !s.allowed(ctx, actor, CapabilityManageOptions) {
		return s.denied(actor, MessageCannotManageOptions)
	}

	item, result, err := s.latest(ctx)
	if item == nil {
		return result, err
	}
	return s.pipeline.PurgeNow(ctx, item)
}

func (s *Service) allowed(ctx context.Context, actor, capability string) bool {
	if s.authorizer == nil {
		return false
	}
	return s.authorizer.Can(ctx, actor, capability)
}

func (s *Service) denied(actor, message string) (interfaces.Result, error) {
	s.logger.Warn("admin.denied", "actor", actor)
	err := goerrors.Wrap(errors.New("capability check failed"), goerrors.CategoryAuth, message).
		WithTextCode(permissionDeniedCode)
	return interfaces.Result{Success: false, Message: message}, err
}

func (s *Service) latest(ctx context.Context) (*interfaces.ContentItem, interfaces.Result, error) {
	item, err := s.reader.LatestPublished(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrItemNotFound) {
			return nil, interfaces.Result{Success: true, Message: "No published content found to test."}, nil
		}
		return nil, interfaces.Result{Success: false, Message: err.Error()}, err
	}
	return item, interfaces.Result{}, nil
}
