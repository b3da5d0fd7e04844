package store

import "time"

type VerdictRecord struct {
	CacheKey   string
	IsMismatch bool
	Reason     string
	Confidence float64
	CheckedAt  time.Time
}
