// Package types holds the domain entities shared by every stage of the
// planning pipeline: machines, materials, pending jobs, and the rows a
// completed plan is made of.
package types

import "time"

// Machine is a single drawing machine in the fleet.
type Machine struct {
	MachineID         int
	MachineTypeID     int
	MachineWeightHour float64 // kg/h; 0 means diameter-driven
	MachineSpdMul     float64 // speed multiplier for diameter-driven machines
	MachineChangeTime int     // minutes of setup between distinct materials
}

// WeightRated reports whether the machine is rated by kg/h throughput
// rather than by diameter-driven draw speed.
func (m Machine) WeightRated() bool {
	return m.MachineWeightHour > 0
}

// Material is a wire material drawn by the fleet.
type Material struct {
	MatID   int
	MatSize float64 // mm; wire diameter
}

// Compatibility records that a machine may run a given material.
type Compatibility struct {
	MachineID int
	MatID     int
}

// PendingJob is one sales-order line item awaiting a plan assignment.
type PendingJob struct {
	SoID          int
	MatID         int
	SaleVolume    float64 // kg
	SentVolume    float64 // kg delivered
	DraftVolume   float64 // kg already planned
	SoPubDate     time.Time

	// DueTimeUnit is computed per machine group (spec §4.4 step 3); nil
	// means the job has no binding due date in this group.
	DueTimeUnit *int
}

// ResVolume is sale_volume minus sent_volume.
func (p PendingJob) ResVolume() float64 {
	return p.SaleVolume - p.SentVolume
}

// ResDraftVolume is the residual volume still unplanned.
func (p PendingJob) ResDraftVolume() float64 {
	return p.SaleVolume - p.SentVolume - p.DraftVolume
}

// MachineGroup is one configured set of machine-type ids planned as a
// single CP sub-problem.
type MachineGroup struct {
	MachineTypeIDs []int
}

// WorkingHourInterval is a single (start, end) window within one day,
// expressed as HH:MM strings per spec §3.
type WorkingHourInterval struct {
	Start string
	End   string
}

// PlanRow is one emitted segment of the final production plan.
type PlanRow struct {
	SoID            int
	MatID           int
	ResVolume       float64
	BatchVolume     float64
	RemainingVolume float64
	StartTimestamp  time.Time
	EndTimestamp    time.Time
	MachineID       int
}

// Solved is the per-(job, machine) placement the planner hands the
// scheduler: a solver-unit interval awaiting calendar expansion.
type Solved struct {
	JobIndex  int
	MachineID int
	SoID      int
	MatID     int
	Volume    float64
	Start     int // time units
	End       int // time units
}
