package commands

import (
	"context"
	"errors"

	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the revalidation command handlers produced by RegisterRevalidationCommands.
type HandlerSet struct {
	Revalidate *RevalidateContentHandler
	Purge      *PurgeCloudflareHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	revalidateHandlerOpts []HandlerOption[RevalidateContentCommand]
	purgeHandlerOpts      []HandlerOption[PurgeCloudflareCommand]
}

// WithRevalidateHandlerOptions forwards options to the RevalidateContentHandler constructor.
func WithRevalidateHandlerOptions(opts ...HandlerOption[RevalidateContentCommand]) Option {
	return func(cfg *options) {
		cfg.revalidateHandlerOpts = append(cfg.revalidateHandlerOpts, opts...)
	}
}

// WithPurgeHandlerOptions forwards options to the PurgeCloudflareHandler constructor.
func WithPurgeHandlerOptions(opts ...HandlerOption[PurgeCloudflareCommand]) Option {
	return func(cfg *options) {
		cfg.purgeHandlerOpts = append(cfg.purgeHandlerOpts, opts...)
	}
}

// Pipeline combines both dispatch channels so a single collaborator can back
// every registered handler.
type Pipeline interface {
	FrontendPipeline
	PurgePipeline
}

// RegisterRevalidationCommands builds the revalidation command handlers and registers them with
// the provided registry. The constructed HandlerSet is returned so callers can wire additional
// integrations (worker, cron) as needed.
func RegisterRevalidationCommands(reg CommandRegistry, pipeline Pipeline, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if pipeline == nil {
		return nil, errors.New("revalidation command registration: pipeline is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := CommandLogger(provider, "revalidation")

	revalidateHandler := NewRevalidateContentHandler(pipeline, logger, cfg.revalidateHandlerOpts...)
	purgeHandler := NewPurgeCloudflareHandler(pipeline, logger, cfg.purgeHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(revalidateHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(purgeHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Revalidate: revalidateHandler,
		Purge:      purgeHandler,
	}, nil
}

// RegisterPurgeCron wires the purge handler into a cron registrar using the supplied command
// configuration and message payload. The handler executes with a background context.
func RegisterPurgeCron(reg CronRegistrar, handler *PurgeCloudflareHandler, cfg command.HandlerConfig, msg PurgeCloudflareCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
