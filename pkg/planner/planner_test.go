package planner

import (
	"context"
	"testing"

	"github.com/metaldraw/planner/pkg/config"
	"github.com/metaldraw/planner/pkg/duration"
	"github.com/metaldraw/planner/pkg/solver"
	"github.com/metaldraw/planner/pkg/solver/fakesolver"
	"github.com/metaldraw/planner/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanAssignsAndRecomputesObjective(t *testing.T) {
	sched := config.DefaultSchedule()
	sched.TimeScale = 15
	calc := duration.New(sched, []types.Compatibility{{MachineID: 1, MatID: 100}})
	machines := []types.Machine{{MachineID: 1, MachineTypeID: 10, MachineWeightHour: 60}}
	materials := map[int]types.Material{100: {MatID: 100}}
	jobs := []types.PendingJob{
		{SoID: 1, MatID: 100, SaleVolume: 30},
		{SoID: 2, MatID: 100, SaleVolume: 30},
	}

	fake := fakesolver.New([]solver.Assignment{
		{JobIndex: 0, MachineID: 1, Start: 0, End: 2},
		{JobIndex: 1, MachineID: 1, Start: 2, End: 4},
	})

	result, err := Plan(context.Background(), jobs, machines, calc, materials, map[int]int{1: 0}, 1.0, 10.0, 5, fake)
	require.NoError(t, err)

	assert.Len(t, result.Solved, 2)
	assert.Empty(t, result.NonProcessedSoIDs)
	assert.Equal(t, 0.0, result.AdjustmentComponent) // contiguous, no idle gap
}

func TestPlanJobWithNoCompatibleMachineIsNonProcessed(t *testing.T) {
	sched := config.DefaultSchedule()
	calc := duration.New(sched, nil) // no compatibility entries at all
	machines := []types.Machine{{MachineID: 1, MachineTypeID: 10, MachineWeightHour: 60}}
	materials := map[int]types.Material{100: {MatID: 100}}
	jobs := []types.PendingJob{{SoID: 1, MatID: 100, SaleVolume: 30}}

	result, err := Plan(context.Background(), jobs, machines, calc, materials, map[int]int{1: 0}, 1.0, 10.0, 5, fakesolver.New(nil))
	require.NoError(t, err)

	assert.Empty(t, result.Solved)
	assert.Equal(t, []int{1}, result.NonProcessedSoIDs)
}

func TestPlanSolverFailureReturnsSolverError(t *testing.T) {
	sched := config.DefaultSchedule()
	calc := duration.New(sched, []types.Compatibility{{MachineID: 1, MatID: 100}})
	machines := []types.Machine{{MachineID: 1, MachineTypeID: 10, MachineWeightHour: 60}}
	materials := map[int]types.Material{100: {MatID: 100}}
	jobs := []types.PendingJob{{SoID: 1, MatID: 100, SaleVolume: 30}}

	_, err := Plan(context.Background(), jobs, machines, calc, materials, map[int]int{1: 0}, 1.0, 10.0, 5, fakesolver.NewFailing("boom"))
	require.Error(t, err)

	typed, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.SolverError, typed.Kind)
}
