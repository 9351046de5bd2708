package planner

import "testing"

func freeVerdict(d int, slot string) Verdict {
	return Verdict{
		Candidate:  Candidate{Date: day(d), SlotID: slot, ResourceID: "room-a"},
		CanProceed: true,
		Message:    "slot is free",
	}
}

func skippedConflict(d int, slot string) Verdict {
	return Verdict{
		Candidate:   Candidate{Date: day(d), SlotID: slot, ResourceID: "room-a"},
		HasConflict: true,
		CanProceed:  true,
		Message:     "conflict skipped",
		Conflicting: &ConflictingBooking{BookingID: "bk-1"},
	}
}

func blockedConflict(d int, slot string) Verdict {
	return Verdict{
		Candidate:   Candidate{Date: day(d), SlotID: slot, ResourceID: "room-a"},
		HasConflict: true,
		CanProceed:  false,
		Message:     "conflict blocks the request",
		Conflicting: &ConflictingBooking{BookingID: "bk-1"},
	}
}

func resolvedByAlternative(d int, slot, altID string) Verdict {
	return Verdict{
		Candidate:               Candidate{Date: day(d), SlotID: slot, ResourceID: "room-a"},
		HasConflict:             true,
		CanProceed:              true,
		Message:                 "alternative resource found",
		Conflicting:             &ConflictingBooking{BookingID: "bk-1"},
		AlternativeResourceID:   altID,
		AlternativeResourceName: "Room B",
	}
}

func TestAggregate_Counts(t *testing.T) {
	t.Parallel()

	t.Run("no conflicts", func(t *testing.T) {
		t.Parallel()

		result := Aggregate([]Verdict{freeVerdict(3, "s1"), freeVerdict(4, "s1")})
		if result.TotalDates != 2 || result.CanProceedCount != 2 || result.ConflictCount != 0 || result.BlockedCount != 0 {
			t.Fatalf("unexpected counts: %+v", result)
		}
	})

	t.Run("skipped conflict counts as conflict and proceed", func(t *testing.T) {
		t.Parallel()

		result := Aggregate([]Verdict{freeVerdict(3, "s1"), skippedConflict(4, "s1")})
		if result.ConflictCount != 1 {
			t.Fatalf("expected conflictCount 1, got %d", result.ConflictCount)
		}
		if result.BlockedCount != 0 {
			t.Fatalf("expected blockedCount 0, got %d", result.BlockedCount)
		}
		if result.CanProceedCount != 2 {
			t.Fatalf("expected canProceedCount 2, got %d", result.CanProceedCount)
		}
	})

	t.Run("blocked conflict counts in both conflict and blocked", func(t *testing.T) {
		t.Parallel()

		result := Aggregate([]Verdict{freeVerdict(3, "s1"), blockedConflict(4, "s1")})
		if result.ConflictCount != 1 || result.BlockedCount != 1 || result.CanProceedCount != 1 {
			t.Fatalf("unexpected counts: %+v", result)
		}
	})

	t.Run("canProceedCount always matches verdicts", func(t *testing.T) {
		t.Parallel()

		verdicts := []Verdict{
			freeVerdict(3, "s1"),
			skippedConflict(4, "s1"),
			blockedConflict(5, "s1"),
			resolvedByAlternative(6, "s1", "room-b"),
		}
		result := Aggregate(verdicts)
		proceed := 0
		for _, v := range verdicts {
			if v.CanProceed {
				proceed++
			}
		}
		if result.CanProceedCount != proceed {
			t.Fatalf("canProceedCount %d != verdicts with CanProceed %d", result.CanProceedCount, proceed)
		}
	})
}

func TestPlanCommit(t *testing.T) {
	t.Parallel()

	t.Run("blocked conflict without skip blocks everything", func(t *testing.T) {
		t.Parallel()

		result := Aggregate([]Verdict{freeVerdict(3, "s1"), blockedConflict(4, "s1")})
		plan := PlanCommit(result, false)

		if plan.Outcome != OutcomeBlocked {
			t.Fatalf("expected Blocked, got %s", plan.Outcome)
		}
		if len(plan.Accepted) != 0 {
			t.Fatalf("blocked plan must accept nothing, got %d", len(plan.Accepted))
		}
	})

	t.Run("skip drops conflicting candidates only", func(t *testing.T) {
		t.Parallel()

		result := Aggregate([]Verdict{freeVerdict(3, "s1"), skippedConflict(4, "s1"), freeVerdict(5, "s1")})
		plan := PlanCommit(result, true)

		if plan.Outcome != OutcomePartialSkip {
			t.Fatalf("expected PartialSkip, got %s", plan.Outcome)
		}
		if len(plan.Accepted) != 2 {
			t.Fatalf("expected 2 accepted, got %d", len(plan.Accepted))
		}
		if len(plan.Skipped) != 1 || !plan.Skipped[0].Candidate.Date.Equal(day(4)) {
			t.Fatalf("expected the conflicting date skipped, got %+v", plan.Skipped)
		}
	})

	t.Run("alternative resolution substitutes the resource", func(t *testing.T) {
		t.Parallel()

		result := Aggregate([]Verdict{freeVerdict(3, "s1"), resolvedByAlternative(4, "s1", "room-b")})
		plan := PlanCommit(result, false)

		if plan.Outcome != OutcomeFullSuccessPlanned {
			t.Fatalf("expected FullSuccessPlanned, got %s", plan.Outcome)
		}
		if len(plan.Accepted) != 2 {
			t.Fatalf("expected 2 accepted, got %d", len(plan.Accepted))
		}
		if plan.Accepted[1].ResourceID != "room-b" {
			t.Fatalf("expected alternative resource substituted, got %s", plan.Accepted[1].ResourceID)
		}
	})

	t.Run("clean result plans full success", func(t *testing.T) {
		t.Parallel()

		result := Aggregate([]Verdict{freeVerdict(3, "s1"), freeVerdict(4, "s1")})
		plan := PlanCommit(result, false)

		if plan.Outcome != OutcomeFullSuccessPlanned {
			t.Fatalf("expected FullSuccessPlanned, got %s", plan.Outcome)
		}
		if len(plan.Accepted) != 2 || len(plan.Skipped) != 0 {
			t.Fatalf("unexpected plan: %+v", plan)
		}
	})
}
