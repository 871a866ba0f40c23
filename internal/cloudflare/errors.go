package cloudflare

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	configMissingCode       = "CLOUDFLARE_CONFIG_MISSING"
	credentialsRejectedCode = "CLOUDFLARE_CREDENTIALS_REJECTED"
	transportCode           = "CLOUDFLARE_TRANSPORT"
	upstreamCode            = "CLOUDFLARE_UPSTREAM"
)

// Messages surfaced verbatim to admin test actions.
const (
	MessageCredentialsRejected = "Invalid Cloudflare API Token or Zone ID. Cache purge disabled."
	MessageNothingToPurge      = "No paths or tags provided for cache purging."
	MessagePurged              = "Cloudflare cache purged successfully."
)

var (
	errConfigMissing       = errors.New("cloudflare zone id or api token not configured")
	errCredentialsRejected = errors.New("cloudflare rejected the api token or zone id")
)

func configMissingError() error {
	return goerrors.Wrap(errConfigMissing, goerrors.CategoryValidation, MessageCredentialsRejected).
		WithTextCode(configMissingCode)
}

func credentialsError() error {
	return goerrors.Wrap(errCredentialsRejected, goerrors.CategoryAuth, MessageCredentialsRejected).
		WithTextCode(credentialsRejectedCode)
}

func transportError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "cloudflare request failed").
		WithTextCode(transportCode)
}

func upstreamError(message string) error {
	return goerrors.Wrap(errors.New(message), goerrors.CategoryExternal, message).
		WithTextCode(upstreamCode)
}
