package logging

import (
	"context"

	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

const (
	rootModule       = "revalidation"
	plannerModule    = "revalidation.planner"
	dispatchModule   = "revalidation.dispatch"
	cloudflareModule = "revalidation.cloudflare"
	eventsModule     = "revalidation.events"
	jobsModule       = "revalidation.jobs"
	adminModule      = "revalidation.admin"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PlannerLogger returns the logger namespace reserved for plan assembly.
func PlannerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, plannerModule)
}

// DispatchLogger returns the logger namespace reserved for the frontend dispatcher.
func DispatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, dispatchModule)
}

// CloudflareLogger returns the logger namespace reserved for CDN purges.
func CloudflareLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cloudflareModule)
}

// EventsLogger returns the logger namespace reserved for the event router.
func EventsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, eventsModule)
}

// JobsLogger returns the logger namespace reserved for the deferred job worker.
func JobsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, jobsModule)
}

// AdminLogger returns the logger namespace reserved for admin test actions.
func AdminLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, adminModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
