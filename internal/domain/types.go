package domain

// Status represents the content lifecycle states the event router inspects.
// The values mirror the host CMS status vocabulary.
type Status string

const (
	// StatusPublish identifies content available to consumers.
	StatusPublish Status = "publish"
	// StatusDraft indicates content still under preparation.
	StatusDraft Status = "draft"
	// StatusAutoDraft marks placeholder records created by the editor.
	StatusAutoDraft Status = "auto-draft"
	// StatusInherit marks revisions and attachments inheriting the parent status.
	StatusInherit Status = "inherit"
	// StatusTrash marks content moved to the trash bin.
	StatusTrash Status = "trash"
	// StatusFuture marks content scheduled for a later publish time.
	StatusFuture Status = "future"
	// StatusPending marks content awaiting review.
	StatusPending Status = "pending"
	// StatusPrivate marks content visible to privileged users only.
	StatusPrivate Status = "private"
)

// ExcludedFromSave lists statuses that never trigger invalidation on save.
var ExcludedFromSave = []Status{StatusAutoDraft, StatusInherit, StatusDraft, StatusTrash}

// SaveExcluded reports whether the supplied status suppresses save handling.
func SaveExcluded(status Status) bool {
	for _, excluded := range ExcludedFromSave {
		if status == excluded {
			return true
		}
	}
	return false
}
