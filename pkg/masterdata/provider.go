// Package masterdata reads the machine catalogue, material catalogue,
// compatibility table, and pending sales-order items from the store
// and returns them as in-memory tables keyed by id.
package masterdata

import (
	"context"

	"github.com/metaldraw/planner/pkg/storage"
	"github.com/metaldraw/planner/pkg/types"
)

// Tables holds the invocation's read-only master data, indexed once
// rather than re-derived per iteration.
type Tables struct {
	MachinesByID  map[int]types.Machine
	MaterialsByID map[int]types.Material
	Compatibility []types.Compatibility
	PendingJobs   []types.PendingJob
}

// Load retrieves machine_master, machine_material, material_master
// and the derived so_item pending-job view from store.
func Load(ctx context.Context, store storage.Store) (Tables, error) {
	machines, err := store.Machines(ctx)
	if err != nil {
		return Tables{}, err
	}
	compat, err := store.Compatibility(ctx)
	if err != nil {
		return Tables{}, err
	}
	materials, err := store.Materials(ctx)
	if err != nil {
		return Tables{}, err
	}
	jobs, err := store.PendingJobs(ctx)
	if err != nil {
		return Tables{}, err
	}

	machinesByID := make(map[int]types.Machine, len(machines))
	for _, m := range machines {
		machinesByID[m.MachineID] = m
	}
	materialsByID := make(map[int]types.Material, len(materials))
	for _, m := range materials {
		materialsByID[m.MatID] = m
	}

	return Tables{
		MachinesByID:  machinesByID,
		MaterialsByID: materialsByID,
		Compatibility: compat,
		PendingJobs:   jobs,
	}, nil
}
