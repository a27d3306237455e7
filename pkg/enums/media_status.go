package enums

import "fmt"

// MediaStatus describes where an upload sits in the moderation workflow.
type MediaStatus string

const (
	MediaStatusPending  MediaStatus = "pending"
	MediaStatusApproved MediaStatus = "approved"
	MediaStatusRejected MediaStatus = "rejected"
)

var validMediaStatuses = []MediaStatus{
	MediaStatusPending,
	MediaStatusApproved,
	MediaStatusRejected,
}

// MediaStatuses returns every known status in display order.
func MediaStatuses() []MediaStatus {
	out := make([]MediaStatus, len(validMediaStatuses))
	copy(out, validMediaStatuses)
	return out
}

// String returns the literal string for the status.
func (m MediaStatus) String() string {
	return string(m)
}

// IsValid reports whether the status is known.
func (m MediaStatus) IsValid() bool {
	for _, candidate := range validMediaStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsDecision reports whether an admin may set the status explicitly.
// Records only return to pending by being re-uploaded.
func (m MediaStatus) IsDecision() bool {
	return m == MediaStatusApproved || m == MediaStatusRejected
}

// ParseMediaStatus converts raw input into a MediaStatus.
func ParseMediaStatus(value string) (MediaStatus, error) {
	for _, candidate := range validMediaStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media status %q", value)
}
