package planner

import "fmt"

// ConflictingBooking identifies the existing reservation a candidate
// collided with, for display to the requesting user.
type ConflictingBooking struct {
	BookingID     string
	RequesterName string
	RequesterRole string
}

// Verdict classifies a single candidate against the existing reservations.
//
// HasConflict and CanProceed vary independently: a conflicting candidate
// still proceeds when the caller's policy skips it or an alternative
// resource resolves it.
type Verdict struct {
	Candidate   Candidate
	HasConflict bool
	CanProceed  bool
	Message     string
	Conflicting *ConflictingBooking

	// AlternativeResourceID and AlternativeResourceName are populated only
	// when an automatic alternative search succeeded for this candidate.
	AlternativeResourceID   string
	AlternativeResourceName string
}

// CheckResult aggregates the verdicts for one recurring request.
//
// ConflictCount counts verdicts that needed conflict resolution, including
// those resolved by skipping or by an alternative resource; it therefore
// overlaps CanProceedCount. BlockedCount counts verdicts the current policy
// could not resolve. CanProceedCount always equals the number of verdicts
// with CanProceed set.
type CheckResult struct {
	TotalDates      int
	CanProceedCount int
	ConflictCount   int
	BlockedCount    int
	Verdicts        []Verdict
	Summary         string
}

// Aggregate derives a CheckResult from per-candidate verdicts.
func Aggregate(verdicts []Verdict) CheckResult {
	result := CheckResult{
		TotalDates: len(verdicts),
		Verdicts:   verdicts,
	}
	for _, v := range verdicts {
		if v.CanProceed {
			result.CanProceedCount++
		} else {
			result.BlockedCount++
		}
		if v.HasConflict {
			result.ConflictCount++
		}
	}

	switch {
	case result.TotalDates == 0:
		result.Summary = "no dates to book"
	case result.BlockedCount > 0:
		result.Summary = fmt.Sprintf("%d of %d dates blocked by existing bookings", result.BlockedCount, result.TotalDates)
	case result.ConflictCount > 0:
		result.Summary = fmt.Sprintf("%d of %d dates free, %d conflicts resolved", result.CanProceedCount, result.TotalDates, result.ConflictCount)
	default:
		result.Summary = fmt.Sprintf("all %d dates free", result.TotalDates)
	}
	return result
}
