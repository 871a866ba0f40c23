package revalidate

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	configMissingCode = "REVALIDATE_CONFIG_MISSING"
	transportCode     = "REVALIDATE_TRANSPORT"
	upstreamCode      = "REVALIDATE_UPSTREAM"
)

// MessageConfigMissing is surfaced verbatim to admin test actions when the
// frontend settings are incomplete.
const MessageConfigMissing = "Fill Next.js URL and Revalidate Secret Key first."

var errConfigMissing = errors.New("frontend url or secret key not configured")

func configMissingError() error {
	return goerrors.Wrap(errConfigMissing, goerrors.CategoryValidation, MessageConfigMissing).
		WithTextCode(configMissingCode)
}

func transportError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "revalidation request failed").
		WithTextCode(transportCode)
}

func upstreamError(message string) error {
	return goerrors.Wrap(errors.New(message), goerrors.CategoryExternal, message).
		WithTextCode(upstreamCode)
}
