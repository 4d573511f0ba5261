package planner

import (
	"sort"

	"github.com/metaldraw/planner/pkg/duration"
	"github.com/metaldraw/planner/pkg/types"
)

// candidate is one (job, machine) pair the duration calculator has
// confirmed compatible, with its duration in time units.
type candidate struct {
	jobIndex  int
	machineID int
	duration  int
}

// assign runs a greedy-then-local-search heuristic that resolves the
// exactly-one-machine constraint by construction (spec §4.2's
// assignment constraint, solved outside the CP engine per Design
// Notes §9's opaque-solver boundary): each job goes to whichever
// compatible machine currently has the least committed load, then a
// short local search tries single-job moves that reduce the max
// machine load.
func assign(jobs []types.PendingJob, machines []types.Machine, calc *duration.Calculator, materialsByID map[int]types.Material) map[int]int {
	load := make(map[int]int, len(machines))
	for _, m := range machines {
		load[m.MachineID] = 0
	}

	durations := make(map[candidateKey]int)
	assignment := make(map[int]int, len(jobs)) // jobIndex -> machineID

	for i, job := range jobs {
		material := materialsByID[job.MatID]
		best := -1
		bestLoad := 0
		bestDuration := 0

		for _, m := range machines {
			d, ok := calc.Duration(m, material, job.ResDraftVolume())
			if !ok {
				continue
			}
			durations[candidateKey{i, m.MachineID}] = d
			if best == -1 || load[m.MachineID] < bestLoad {
				best = m.MachineID
				bestLoad = load[m.MachineID]
				bestDuration = d
			}
		}

		if best == -1 {
			continue // no compatible machine; left unassigned
		}

		assignment[i] = best
		load[best] += bestDuration
	}

	localSearch(jobs, machines, durations, load, assignment)

	return assignment
}

type candidateKey struct {
	jobIndex  int
	machineID int
}

// localSearch tries moving each assigned job onto another compatible
// machine, and makes the move when the destination's new load would
// stay strictly below the source's new load. It repeats passes over
// every assigned job until a full pass makes no move — this is a
// cheap balancing pass, not a search for a global optimum (the CP
// solver handles sequencing and the objective once jobs are placed).
func localSearch(jobs []types.PendingJob, machines []types.Machine, durations map[candidateKey]int, load map[int]int, assignment map[int]int) {
	machineIDs := make([]int, 0, len(machines))
	for _, m := range machines {
		machineIDs = append(machineIDs, m.MachineID)
	}
	sort.Ints(machineIDs)

	improved := true
	for improved {
		improved = false

		for jobIndex, currentMachine := range assignment {
			currentDuration := durations[candidateKey{jobIndex, currentMachine}]

			for _, candidateMachine := range machineIDs {
				if candidateMachine == currentMachine {
					continue
				}
				d, ok := durations[candidateKey{jobIndex, candidateMachine}]
				if !ok {
					continue
				}

				after := load[candidateMachine] + d
				before := load[currentMachine]
				if after < before-currentDuration {
					load[currentMachine] -= currentDuration
					load[candidateMachine] += d
					assignment[jobIndex] = candidateMachine
					improved = true
					break
				}
			}
		}
	}
}
