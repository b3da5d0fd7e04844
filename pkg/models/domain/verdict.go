package domain

import "time"

// Verdict is an external classifier's answer for one
// (description, hs_code) pair. Cached verdicts are reused verbatim.
type Verdict struct {
	IsMismatch bool
	Reason     string
	Confidence float64
	CheckedAt  time.Time
}
