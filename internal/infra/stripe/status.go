package stripe

import "strings"

// Local status values mirrored from the provider.
const (
	StatusIncomplete = "incomplete"
	StatusTrialing   = "trialing"
	StatusActive     = "active"
	StatusPastDue    = "past_due"
	StatusCanceled   = "canceled"
)

// NormalizeStatus maps a Stripe subscription status onto the local
// enumeration. Stripe's extra states collapse onto their local equivalent.
func NormalizeStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "":
		return StatusIncomplete
	case "active":
		return StatusActive
	case "trialing":
		return StatusTrialing
	case "past_due", "unpaid":
		return StatusPastDue
	case "canceled", "incomplete_expired":
		return StatusCanceled
	default:
		return strings.TrimSpace(s)
	}
}

// IsActiveStatus reports whether a local status counts as a live
// subscription.
func IsActiveStatus(s string) bool {
	return s == StatusActive || s == StatusTrialing
}
