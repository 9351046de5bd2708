package planner

// Outcome is the overall commit decision for one recurring request.
type Outcome string

const (
	// OutcomeBlocked means at least one candidate is unresolvable under the
	// caller's policy; nothing may be submitted.
	OutcomeBlocked Outcome = "blocked"
	// OutcomePartialSkip means conflicting candidates were dropped and the
	// remainder may be submitted.
	OutcomePartialSkip Outcome = "partial_skip"
	// OutcomeFullSuccessPlanned means every candidate may be submitted,
	// either conflict-free or resolved via an alternative resource.
	OutcomeFullSuccessPlanned Outcome = "full_success_planned"
)

// Plan is the result of applying the conflict policy to a check result.
type Plan struct {
	Outcome Outcome
	// Accepted holds the candidates to submit, with the alternative resource
	// substituted for the original wherever one was found.
	Accepted []Candidate
	// Skipped holds the conflicting verdicts dropped under skip-conflicts.
	Skipped []Verdict
}

// PlanCommit decides which candidates to submit under the caller's policy.
//
// With skipConflicts false, any blocked verdict blocks the whole request
// and nothing is accepted; the caller surfaces the full verdict list. With
// skipConflicts true, conflicting candidates are dropped individually.
// Candidates resolved via an alternative resource are accepted on that
// resource and counted as successes, not skips.
func PlanCommit(result CheckResult, skipConflicts bool) Plan {
	if result.BlockedCount > 0 && !skipConflicts {
		return Plan{Outcome: OutcomeBlocked}
	}

	plan := Plan{
		Accepted: make([]Candidate, 0, result.CanProceedCount),
	}
	for _, v := range result.Verdicts {
		if !v.CanProceed {
			// Only reachable with skipConflicts set; an unresolvable
			// candidate is dropped the same way a skipped conflict is.
			plan.Skipped = append(plan.Skipped, v)
			continue
		}
		if v.HasConflict && v.AlternativeResourceID == "" {
			plan.Skipped = append(plan.Skipped, v)
			continue
		}

		accepted := v.Candidate
		if v.AlternativeResourceID != "" {
			accepted.ResourceID = v.AlternativeResourceID
		}
		plan.Accepted = append(plan.Accepted, accepted)
	}

	if len(plan.Skipped) > 0 {
		plan.Outcome = OutcomePartialSkip
	} else {
		plan.Outcome = OutcomeFullSuccessPlanned
	}
	return plan
}
