package duration

import (
	"testing"

	"github.com/metaldraw/planner/pkg/config"
	"github.com/metaldraw/planner/pkg/types"
	"github.com/stretchr/testify/assert"
)

func newTestCalculator() *Calculator {
	sched := config.DefaultSchedule()
	sched.TimeScale = 15
	sched.IronDensity = 7.85e-6
	return New(sched, []types.Compatibility{
		{MachineID: 1, MatID: 100},
		{MachineID: 2, MatID: 200},
	})
}

func TestDurationWeightRatedMachine(t *testing.T) {
	c := newTestCalculator()
	machine := types.Machine{MachineID: 1, MachineWeightHour: 60}
	mat := types.Material{MatID: 100}

	units, ok := c.Duration(machine, mat, 30)
	assert.True(t, ok)
	assert.Equal(t, 2, units) // S1: ceil(30/60*60/15) = 2
}

func TestDurationIncompatiblePairReturnsFalse(t *testing.T) {
	c := newTestCalculator()
	machine := types.Machine{MachineID: 1, MachineWeightHour: 60}
	mat := types.Material{MatID: 999}

	_, ok := c.Duration(machine, mat, 30)
	assert.False(t, ok)
}

func TestWeightRoundTripNeverUnderstatesVolume(t *testing.T) {
	c := newTestCalculator()
	machine := types.Machine{MachineID: 1, MachineWeightHour: 60}
	mat := types.Material{MatID: 100}

	volume := 37.0
	units, ok := c.Duration(machine, mat, volume)
	assert.True(t, ok)

	weight, ok := c.Weight(machine, mat, units)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, weight, volume)
}

func TestDiameterDrivenMachine(t *testing.T) {
	c := newTestCalculator()
	machine := types.Machine{MachineID: 2, MachineSpdMul: 1}
	mat := types.Material{MatID: 200, MatSize: 5}

	rate := c.rate(machine, mat)
	units, ok := c.Duration(machine, mat, rate)
	assert.True(t, ok)
	assert.Equal(t, 1, units)
}
