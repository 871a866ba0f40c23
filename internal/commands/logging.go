package commands

import (
	"strings"

	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

const commandModuleRoot = "revalidation.commands"

// CommandLogger returns a module-scoped logger for command handlers, enriched
// with consistent structured fields so executions can be correlated.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
