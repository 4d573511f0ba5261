// Package duration converts between a residual volume and the integer
// solver time units a (machine, material) pair needs to produce it.
// It collapses the two physical regimes the fleet exhibits —
// weight-rated throughput and diameter-driven draw speed — into one
// tagged-variant Calculator, replacing the register/clear mutable-slot
// pattern of the system this was modelled on with pure functions over
// an explicit (machine, material) pair.
package duration

import (
	"math"

	"github.com/metaldraw/planner/pkg/config"
	"github.com/metaldraw/planner/pkg/types"
)

// Calculator holds the compatibility set and the schedule constants
// (TimeScale, IronDensity) needed to convert between volume and time
// units.
type Calculator struct {
	schedule      config.Schedule
	compatibility map[compatKey]struct{}
}

type compatKey struct {
	machineID int
	matID     int
}

// New builds a Calculator from the compatibility table and schedule
// constants. The compatibility set is built once, not re-derived per
// lookup.
func New(sched config.Schedule, compat []types.Compatibility) *Calculator {
	set := make(map[compatKey]struct{}, len(compat))
	for _, c := range compat {
		set[compatKey{c.MachineID, c.MatID}] = struct{}{}
	}
	return &Calculator{schedule: sched, compatibility: set}
}

// Compatible reports whether machine may run material.
func (c *Calculator) Compatible(machine types.Machine, mat types.Material) bool {
	_, ok := c.compatibility[compatKey{machine.MachineID, mat.MatID}]
	return ok
}

// rate returns the production rate (kg per time unit) for a
// diameter-driven machine, per spec §4.1.
func (c *Calculator) rate(machine types.Machine, mat types.Material) float64 {
	dm := mat.MatSize / 1000
	return c.schedule.IronDensity * machine.MachineSpdMul * math.Pi * dm * dm / 4 * 60 * float64(c.schedule.TimeScale)
}

// Duration computes the integer number of time units needed to draw
// pendingVolume on machine with material. Returns (0, false) if the
// pair is incompatible.
func (c *Calculator) Duration(machine types.Machine, mat types.Material, pendingVolume float64) (int, bool) {
	if !c.Compatible(machine, mat) {
		return 0, false
	}
	if machine.WeightRated() {
		units := pendingVolume / machine.MachineWeightHour * 60 / float64(c.schedule.TimeScale)
		return int(math.Ceil(units)), true
	}
	return int(math.Ceil(pendingVolume / c.rate(machine, mat))), true
}

// Weight computes the kg producible in timeUnits on machine with
// material: the inverse of Duration, without the ceiling (Testable
// Property 6 depends on this asymmetry). Returns (0,
// false) if the pair is incompatible.
func (c *Calculator) Weight(machine types.Machine, mat types.Material, timeUnits int) (float64, bool) {
	if !c.Compatible(machine, mat) {
		return 0, false
	}
	if machine.WeightRated() {
		return float64(timeUnits) * float64(c.schedule.TimeScale) / 60 * machine.MachineWeightHour, true
	}
	return float64(timeUnits) * c.rate(machine, mat), true
}
