package quota

import "time"

// DefaultThreshold is the remaining-request count at or below which new work
// is refused.
const DefaultThreshold = 5

// Status is a snapshot of the core REST quota for one credential.
type Status struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"reset_at"`
}

// Exhausted reports whether the remaining quota is at or below threshold.
func (s Status) Exhausted(threshold int) bool {
	return s.Remaining <= threshold
}
