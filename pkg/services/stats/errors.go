package stats

import "fmt"

// InsufficiencyError reports a group the detector could not baseline.
// The group is skipped; its records stay in the batch for the other layers.
type InsufficiencyError struct {
	Field  string
	Group  string
	Size   int
	Reason string
}

func (e *InsufficiencyError) Error() string {
	return fmt.Sprintf("stats: %s group %q (%d records): %s", e.Field, e.Group, e.Size, e.Reason)
}
