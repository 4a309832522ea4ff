package domain

// LinkOutcome is the provider's terminal verdict on a payment link, parsed
// once at the adapter boundary instead of string-matched everywhere.
type LinkOutcome int

const (
	LinkOutcomeUnknown LinkOutcome = iota
	LinkOutcomePaid
	LinkOutcomeExpired
	LinkOutcomeCancelled
)

func ParseLinkOutcome(status string) LinkOutcome {
	switch status {
	case "paid":
		return LinkOutcomePaid
	case "expired":
		return LinkOutcomeExpired
	case "cancelled":
		return LinkOutcomeCancelled
	default:
		return LinkOutcomeUnknown
	}
}

func (o LinkOutcome) String() string {
	switch o {
	case LinkOutcomePaid:
		return "paid"
	case LinkOutcomeExpired:
		return "expired"
	case LinkOutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
