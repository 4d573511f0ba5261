// Package jobs normalises pending sales-order items into planning
// candidates and partitions them by machine group.
package jobs

import (
	"sort"

	"github.com/metaldraw/planner/pkg/types"
)

// FilterResult is the outcome of Filter: the candidates worth
// planning, plus the so_ids dropped before any machine group saw
// them.
type FilterResult struct {
	Candidates   []types.PendingJob
	NonProcessed []int
}

// Filter drops jobs with no residual volume, jobs whose residual is
// too small a fraction of the sale volume, and jobs whose material
// isn't produced by any machine at all (spec §4.4 / §3 invariants:
// res_draft_volume > 0 and res_draft_volume/sale_volume > 0.03).
func Filter(pending []types.PendingJob, compatibleMatIDs map[int]bool) FilterResult {
	var result FilterResult

	for _, job := range pending {
		resDraft := job.ResDraftVolume()

		if resDraft <= 0 {
			result.NonProcessed = append(result.NonProcessed, job.SoID)
			continue
		}
		if job.SaleVolume == 0 || resDraft/job.SaleVolume <= 0.03 {
			result.NonProcessed = append(result.NonProcessed, job.SoID)
			continue
		}
		if !compatibleMatIDs[job.MatID] {
			result.NonProcessed = append(result.NonProcessed, job.SoID)
			continue
		}

		result.Candidates = append(result.Candidates, job)
	}

	sort.Ints(result.NonProcessed)
	return result
}
