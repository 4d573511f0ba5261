// Package fdsolver is the production solver.Solver: it builds one
// finite-domain model per call using github.com/gitrdm/gokanlogic and
// solves it with branch-and-bound optimisation.
//
// gokanlogic has no native optional-interval variables, no reified
// max/disjunction, and no sequence-dependent transition matrix — the
// primitives a literal translation of the CP model in spec §4.2 would
// need. The planner package already resolves exactly-one-machine
// assignment itself (an outer heuristic, not a solver constraint), so
// by the time a Model reaches this package every job already names
// its candidate machine; fdsolver only has to order jobs sharing a
// machine without overlap and steer that order toward an early
// finish. Two simplifications follow from that gap, both recorded in
// DESIGN.md:
//
//   - setup time is modelled as a uniform trailing buffer added to
//     every job's duration on a machine, not only between jobs of
//     differing material (a conservative superset of the no-overlap
//     invariant — it never under-reserves setup time).
//   - the in-model objective minimised by the solver is the sum of
//     job completion times (a makespan-style surrogate that steers
//     search toward compact, low-idle schedules); the planner
//     recomputes the real weighted adjustment/tardiness objective
//     from the returned Assignments once solved.
package fdsolver

import (
	"context"
	"sort"
	"time"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/metaldraw/planner/pkg/log"
	"github.com/metaldraw/planner/pkg/solver"
)

// Solver drives gokanlogic's Model/Solver per machine group.
type Solver struct{}

// New builds an fdsolver.Solver.
func New() *Solver {
	return &Solver{}
}

func (s *Solver) Solve(ctx context.Context, model solver.Model) (solver.Solution, error) {
	logger := log.WithComponent("fdsolver")

	byMachine := make(map[int][]solver.JobVariable)
	for _, j := range model.Jobs {
		byMachine[j.MachineID] = append(byMachine[j.MachineID], j)
	}

	m := minikanren.NewModel()

	type placed struct {
		jobIndex    int
		machineID   int
		start       *minikanren.FDVariable
		duration    int // inflated with trailing setup buffer, used for no-overlap sizing
		jobDuration int // the job's own processing time, reported in the Assignment
	}
	var all []placed

	machineIDs := make([]int, 0, len(byMachine))
	for id := range byMachine {
		machineIDs = append(machineIDs, id)
	}
	sort.Ints(machineIDs)

	for _, machineID := range machineIDs {
		jobs := byMachine[machineID]
		setup := model.SetupTimeByMachine[machineID]

		horizon := 1
		for _, j := range jobs {
			horizon += j.Duration + setup
		}

		starts := make([]*minikanren.FDVariable, len(jobs))
		durations := make([]int, len(jobs))
		for i, j := range jobs {
			starts[i] = m.IntVar(0, horizon, "")
			durations[i] = j.Duration + setup
		}

		if len(jobs) > 0 {
			noOverlap, err := minikanren.NewNoOverlap(starts, durations)
			if err != nil {
				return solver.Solution{}, err
			}
			m.AddConstraint(noOverlap)
		}

		for i, j := range jobs {
			all = append(all, placed{
				jobIndex:    j.JobIndex,
				machineID:   machineID,
				start:       starts[i],
				duration:    durations[i],
				jobDuration: j.Duration,
			})
		}
	}

	if len(all) == 0 {
		return solver.Solution{}, nil
	}

	ends := make([]*minikanren.FDVariable, len(all))
	horizonTotal := 1
	for _, p := range all {
		horizonTotal += p.duration
	}
	for i, p := range all {
		end := m.IntVar(0, horizonTotal, "")
		durConst := m.IntVar(p.duration, p.duration, "")
		if err := m.LinearSum([]*minikanren.FDVariable{end, p.start}, []int{1, -1}, durConst); err != nil {
			return solver.Solution{}, err
		}
		ends[i] = end
	}

	objMax := horizonTotal * len(all)
	objective := m.IntVar(0, objMax, "")
	coeffs := make([]int, len(ends))
	for i := range coeffs {
		coeffs[i] = 1
	}
	if err := m.LinearSum(ends, coeffs, objective); err != nil {
		return solver.Solution{}, err
	}

	fdSolver := minikanren.NewSolver(m)

	limit := time.Duration(model.RunTimeLimitSeconds) * time.Second
	if limit <= 0 {
		limit = 60 * time.Second
	}

	logger.Debug().Int("machines", len(machineIDs)).Int("jobs", len(all)).Msg("starting fd solve")

	values, objVal, err := fdSolver.SolveOptimalWithOptions(ctx, objective, true, minikanren.WithTimeLimit(limit))
	if err != nil {
		return solver.Solution{}, err
	}
	if values == nil {
		return solver.Solution{}, nil
	}

	assignments := make([]solver.Assignment, len(all))
	for i, p := range all {
		start := values[p.start.ID()]
		assignments[i] = solver.Assignment{
			JobIndex:  p.jobIndex,
			MachineID: p.machineID,
			Start:     start,
			End:       start + p.jobDuration,
		}
	}

	logger.Debug().Int("objective", objVal).Msg("fd solve complete")

	return solver.Solution{Assignments: assignments, ObjectiveValue: float64(objVal)}, nil
}
