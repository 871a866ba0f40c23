package revalidation

import "github.com/Dexerto/on-demand-revalidation/internal/runtimeconfig"

var (
	ErrFrontendURLInvalid      = runtimeconfig.ErrFrontendURLInvalid
	ErrSiteURLRequired         = runtimeconfig.ErrSiteURLRequired
	ErrSiteURLInvalid          = runtimeconfig.ErrSiteURLInvalid
	ErrHTTPTimeoutInvalid      = runtimeconfig.ErrHTTPTimeoutInvalid
	ErrNoTermsPolicyUnknown    = runtimeconfig.ErrNoTermsPolicyUnknown
	ErrUnknownPolicyUnknown    = runtimeconfig.ErrUnknownPolicyUnknown
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	FrontendConfig   = runtimeconfig.FrontendConfig
	CloudflareConfig = runtimeconfig.CloudflareConfig
	ResolverConfig   = runtimeconfig.ResolverConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
	Features         = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
