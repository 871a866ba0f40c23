package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by errors leaving the revalidation command layer.
const (
	CodeCommandInvalid  = "REVALIDATION_COMMAND_INVALID"
	CodeCommandCanceled = "REVALIDATION_COMMAND_CANCELED"
	CodeCommandTimeout  = "REVALIDATION_COMMAND_TIMEOUT"
	CodeCommandContext  = "REVALIDATION_COMMAND_CONTEXT"
	CodeCommandFailed   = "REVALIDATION_COMMAND_FAILED"
)

// wrapValidationError tags message validation failures. Errors the
// dispatchers already categorized pass through untouched.
func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "revalidation command rejected").
		WithTextCode(CodeCommandInvalid)
}

// wrapContextError distinguishes cancellation from deadline expiry so a
// worker retry can tell an aborted run from a slow one.
func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "revalidation command canceled").
			WithTextCode(CodeCommandCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "revalidation command timed out").
			WithTextCode(CodeCommandTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "revalidation command context failed").
			WithTextCode(CodeCommandContext)
	}
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "revalidation command failed").
		WithTextCode(CodeCommandFailed)
}
