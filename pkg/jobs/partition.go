package jobs

import "github.com/metaldraw/planner/pkg/types"

// GroupSelection is one machine-type group's slice of the pipeline:
// the machines in the group and the pending jobs those machines can
// serve, re-indexed to 0..n-1 per spec §4.4 step 2.
type GroupSelection struct {
	Machines []types.Machine
	Jobs     []types.PendingJob
}

// Partition selects, for one configured machine-type group, the
// relevant machines and the candidate jobs whose material any of
// those machines can run.
func Partition(
	machineTypeIDs []int,
	allMachines map[int]types.Machine,
	compatibility []types.Compatibility,
	candidates []types.PendingJob,
) GroupSelection {
	typeSet := make(map[int]bool, len(machineTypeIDs))
	for _, t := range machineTypeIDs {
		typeSet[t] = true
	}

	var machines []types.Machine
	machineIDs := make(map[int]bool)
	for _, m := range allMachines {
		if typeSet[m.MachineTypeID] {
			machines = append(machines, m)
			machineIDs[m.MachineID] = true
		}
	}

	matIDs := make(map[int]bool)
	for _, c := range compatibility {
		if machineIDs[c.MachineID] {
			matIDs[c.MatID] = true
		}
	}

	var jobs []types.PendingJob
	for _, j := range candidates {
		if matIDs[j.MatID] {
			jobs = append(jobs, j)
		}
	}

	return GroupSelection{Machines: machines, Jobs: jobs}
}
