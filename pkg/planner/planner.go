// Package planner resolves exactly-one-machine assignment with a
// greedy-then-local-search heuristic, then hands the CP solver one
// fixed-assignment no-overlap problem per machine group and
// recomputes the true weighted objective from its solution.
package planner

import (
	"context"
	"sort"

	"github.com/metaldraw/planner/pkg/duration"
	"github.com/metaldraw/planner/pkg/log"
	"github.com/metaldraw/planner/pkg/solver"
	"github.com/metaldraw/planner/pkg/types"
)

// Result is one machine group's planning outcome.
type Result struct {
	Solved              []types.Solved
	NonProcessedSoIDs   []int
	AdjustmentComponent float64
	TardyComponent      float64
	ObjectiveValue      float64
}

// Plan builds and solves the CP model for one machine group.
func Plan(
	ctx context.Context,
	jobs []types.PendingJob,
	machines []types.Machine,
	calc *duration.Calculator,
	materialsByID map[int]types.Material,
	setupTimeByMachine map[int]int,
	weightOfAdjustmentTime float64,
	weightOfTardyJob float64,
	runTimeLimitSeconds int,
	slv solver.Solver,
) (Result, error) {
	logger := log.WithComponent("planner")

	assignment := assign(jobs, machines, calc, materialsByID)

	var result Result
	var jobVars []solver.JobVariable

	for i, job := range jobs {
		machineID, ok := assignment[i]
		if !ok {
			result.NonProcessedSoIDs = append(result.NonProcessedSoIDs, job.SoID)
			continue
		}

		var machine types.Machine
		for _, m := range machines {
			if m.MachineID == machineID {
				machine = m
				break
			}
		}
		material := materialsByID[job.MatID]
		d, ok := calc.Duration(machine, material, job.ResDraftVolume())
		if !ok {
			result.NonProcessedSoIDs = append(result.NonProcessedSoIDs, job.SoID)
			continue
		}

		jobVars = append(jobVars, solver.JobVariable{
			JobIndex:  i,
			MachineID: machineID,
			Duration:  d,
			DueUnit:   job.DueTimeUnit,
		})
	}

	sort.Ints(result.NonProcessedSoIDs)

	if len(jobVars) == 0 {
		return result, nil
	}

	model := solver.Model{
		Jobs:                   jobVars,
		SetupTimeByMachine:     setupTimeByMachine,
		WeightOfAdjustmentTime: weightOfAdjustmentTime,
		WeightOfTardyJob:       weightOfTardyJob,
		RunTimeLimitSeconds:    runTimeLimitSeconds,
	}

	logger.Debug().Int("jobs", len(jobVars)).Int("machines", len(machines)).Msg("solving machine group")

	sol, err := slv.Solve(ctx, model)
	if err != nil {
		return result, types.NewError(types.SolverError, "planner.Plan", err)
	}
	if len(sol.Assignments) == 0 {
		for _, jv := range jobVars {
			result.NonProcessedSoIDs = append(result.NonProcessedSoIDs, jobs[jv.JobIndex].SoID)
		}
		sort.Ints(result.NonProcessedSoIDs)
		return result, nil
	}

	for _, a := range sol.Assignments {
		job := jobs[a.JobIndex]
		result.Solved = append(result.Solved, types.Solved{
			JobIndex:  a.JobIndex,
			MachineID: a.MachineID,
			SoID:      job.SoID,
			MatID:     job.MatID,
			Volume:    job.ResDraftVolume(),
			Start:     a.Start,
			End:       a.End,
		})
	}

	result.AdjustmentComponent = adjustmentComponent(result.Solved)
	result.TardyComponent = tardyComponent(result.Solved, jobs)
	result.ObjectiveValue = weightOfAdjustmentTime*result.AdjustmentComponent + weightOfTardyJob*result.TardyComponent

	return result, nil
}

// adjustmentComponent recomputes Σ adjustment from the solved
// intervals, per spec §4.2's post-solve step: the idle time between
// consecutive jobs on each machine.
func adjustmentComponent(solved []types.Solved) float64 {
	byMachine := make(map[int][]types.Solved)
	for _, s := range solved {
		byMachine[s.MachineID] = append(byMachine[s.MachineID], s)
	}

	var total float64
	for _, list := range byMachine {
		sort.Slice(list, func(i, j int) bool { return list[i].Start < list[j].Start })
		for i := 1; i < len(list); i++ {
			gap := list[i].Start - list[i-1].End
			if gap > 0 {
				total += float64(gap)
			}
		}
	}
	return total
}

// tardyComponent recomputes Σ tardiness from the solved end times and
// each job's due_time_unit.
func tardyComponent(solved []types.Solved, jobs []types.PendingJob) float64 {
	dueByJobIndex := make(map[int]*int, len(jobs))
	for i, j := range jobs {
		dueByJobIndex[i] = j.DueTimeUnit
	}

	var total float64
	for _, s := range solved {
		due := dueByJobIndex[s.JobIndex]
		if due == nil || *due <= 0 {
			continue
		}
		if tardy := s.End - *due; tardy > 0 {
			total += float64(tardy)
		}
	}
	return total
}
