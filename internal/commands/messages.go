package commands

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	revalidateMessageType = "revalidation.content.revalidate"
	purgeMessageType      = "revalidation.cloudflare.purge"
)

// RevalidateContentCommand requests a frontend revalidation for one content
// item. Only the id travels; handlers re-read the item's current state so
// stale saves cannot resurrect old taxonomy terms.
type RevalidateContentCommand struct {
	// ItemID references the content item whose plan should be dispatched.
	ItemID int64 `json:"item_id"`
}

// Type implements command.Message.
func (RevalidateContentCommand) Type() string { return revalidateMessageType }

// Validate ensures a usable item reference before handlers execute.
func (cmd RevalidateContentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ItemID, validation.Required, validation.Min(int64(1))),
	)
}

// PurgeCloudflareCommand requests a CDN cache purge for one content item.
type PurgeCloudflareCommand struct {
	// ItemID references the content item whose purge plan should be built.
	ItemID int64 `json:"item_id"`
}

// Type implements command.Message.
func (PurgeCloudflareCommand) Type() string { return purgeMessageType }

// Validate ensures a usable item reference before handlers execute.
func (cmd PurgeCloudflareCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ItemID, validation.Required, validation.Min(int64(1))),
	)
}
