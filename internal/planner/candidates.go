// Package planner holds the pure decision logic of the recurring-booking
// pipeline: candidate construction, conflict verdict aggregation, and the
// commit policy. All I/O stays with the callers.
package planner

import (
	"sort"
	"time"
)

// Candidate is a not-yet-committed (date, slot, resource) tuple produced
// from one recurrence expansion step.
type Candidate struct {
	Date       time.Time
	SlotID     string
	ResourceID string
}

// BuildCandidates combines expanded dates with the selected slots for one
// resource. The result holds one candidate per (date, slot) pair, ordered
// by date then slot id ascending. Expansion guarantees distinct dates, so
// no deduplication is performed.
func BuildCandidates(dates []time.Time, slotIDs []string, resourceID string) []Candidate {
	if len(dates) == 0 || len(slotIDs) == 0 {
		return nil
	}

	slots := make([]string, len(slotIDs))
	copy(slots, slotIDs)
	sort.Strings(slots)

	candidates := make([]Candidate, 0, len(dates)*len(slots))
	for _, date := range dates {
		for _, slot := range slots {
			candidates = append(candidates, Candidate{
				Date:       date,
				SlotID:     slot,
				ResourceID: resourceID,
			})
		}
	}
	return candidates
}
