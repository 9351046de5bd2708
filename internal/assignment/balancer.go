// Package assignment implements load-balanced selection of staff for
// follow-up security tasks.
package assignment

import (
	"errors"
	"sort"
)

// StaffMember is a candidate assignee in the eligible pool.
type StaffMember struct {
	ID          string
	DisplayName string
	Role        string
	SiteID      string
}

// PendingTask is an open task considered when computing load.
type PendingTask struct {
	ID         string
	AssignedTo string
}

// ErrNoStaffAvailable indicates the eligible pool is empty.
var ErrNoStaffAvailable = errors.New("assignment: no staff available")

// Pick selects the least-loaded member of the pool. Load is the number of
// pending tasks assigned to each member; members without tasks carry load
// zero. Ties break on the lowest staff id, so repeated calls over the same
// inputs always return the same member.
func Pick(pool []StaffMember, pending []PendingTask) (StaffMember, error) {
	if len(pool) == 0 {
		return StaffMember{}, ErrNoStaffAvailable
	}

	load := make(map[string]int, len(pool))
	for _, task := range pending {
		if task.AssignedTo == "" {
			continue
		}
		load[task.AssignedTo]++
	}

	ranked := make([]StaffMember, len(pool))
	copy(ranked, pool)
	sort.Slice(ranked, func(i, j int) bool {
		if load[ranked[i].ID] != load[ranked[j].ID] {
			return load[ranked[i].ID] < load[ranked[j].ID]
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked[0], nil
}

// Load returns the pending-task count per staff id for the given pool.
// The map is recomputed from the task list on every call and never cached.
func Load(pool []StaffMember, pending []PendingTask) map[string]int {
	counts := make(map[string]int, len(pool))
	for _, member := range pool {
		counts[member.ID] = 0
	}
	for _, task := range pending {
		if _, ok := counts[task.AssignedTo]; ok {
			counts[task.AssignedTo]++
		}
	}
	return counts
}
