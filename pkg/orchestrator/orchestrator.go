// Package orchestrator drives one planning invocation end to end: load
// master data, iterate configured machine groups, plan and schedule
// each, and persist the combined result (spec §4.4).
package orchestrator

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/metaldraw/planner/pkg/config"
	"github.com/metaldraw/planner/pkg/duration"
	"github.com/metaldraw/planner/pkg/jobs"
	"github.com/metaldraw/planner/pkg/log"
	"github.com/metaldraw/planner/pkg/masterdata"
	"github.com/metaldraw/planner/pkg/metrics"
	"github.com/metaldraw/planner/pkg/planner"
	"github.com/metaldraw/planner/pkg/scheduler"
	"github.com/metaldraw/planner/pkg/solver"
	"github.com/metaldraw/planner/pkg/storage"
	"github.com/metaldraw/planner/pkg/types"
)

// Summary is the outcome of one invocation, logged at the end of a
// successful run (spec §4.4 step 7 / Design Notes §C.3).
type Summary struct {
	RunID               string
	RowsWritten         int
	AdjustmentComponent float64
	TardyComponent      float64
	ObjectiveValue      float64
	NonProcessedSoIDs   []int
}

// Run executes one full invocation against store, using slv for every
// machine group's CP solve.
func Run(ctx context.Context, store storage.Store, slv solver.Solver, sched config.Schedule, settings config.Settings) (summary Summary, err error) {
	runID := uuid.NewString()
	logger := log.WithRunID(runID)

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.InvocationsTotal.WithLabelValues(outcome).Inc()
	}()

	tables, loadErr := masterdata.Load(ctx, store)
	if loadErr != nil {
		return Summary{}, types.NewError(types.DataError, "orchestrator.Run", loadErr)
	}

	compatibleMatIDs := make(map[int]bool, len(tables.Compatibility))
	for _, c := range tables.Compatibility {
		compatibleMatIDs[c.MatID] = true
	}

	filtered := jobs.Filter(tables.PendingJobs, compatibleMatIDs)

	holidays := make(map[string]bool, len(settings.Holidays))
	for _, d := range settings.Holidays {
		holidays[d] = true
	}

	calc := duration.New(sched, tables.Compatibility)
	timeUnitsPerWorkingDay := unitsPerWorkingDay(sched.ActiveWorkingHours(settings.OT), sched.TimeScale)

	summary = Summary{RunID: runID, NonProcessedSoIDs: append([]int{}, filtered.NonProcessed...)}
	var allRows []types.PlanRow
	var scheduledJobs int

	for _, machineTypeIDs := range sched.MachineGroups {
		label := groupLabel(machineTypeIDs)
		groupLogger := log.WithMachineGroup(label)

		selection := jobs.Partition(machineTypeIDs, tables.MachinesByID, tables.Compatibility, filtered.Candidates)
		if len(selection.Jobs) == 0 {
			continue
		}

		groupJobs := withDueTimeUnits(selection.Jobs, settings.StartWorkingDate, timeUnitsPerWorkingDay)

		setupTimeByMachine := make(map[int]int, len(selection.Machines))
		for _, m := range selection.Machines {
			setupTimeByMachine[m.MachineID] = ceilDiv(m.MachineChangeTime, sched.TimeScale)
		}

		solveTimer := metrics.NewTimer()
		result, planErr := planner.Plan(
			ctx, groupJobs, selection.Machines, calc, tables.MaterialsByID,
			setupTimeByMachine, sched.WeightOfAdjustmentTime, sched.WeightOfTardyJob,
			int(settings.RunTimeLimit.Seconds()), slv,
		)
		solveTimer.ObserveDurationVec(metrics.GroupSolveDuration, label)
		if planErr != nil {
			groupLogger.Warn().Err(planErr).Msg("planning failed for group, jobs deferred")
			summary.NonProcessedSoIDs = append(summary.NonProcessedSoIDs, soIDsOf(groupJobs)...)
			continue
		}
		summary.NonProcessedSoIDs = append(summary.NonProcessedSoIDs, result.NonProcessedSoIDs...)

		if len(result.Solved) == 0 {
			continue
		}

		rows, expandErr := scheduler.Expand(
			sched, settings.OT, settings.StartWorkingDate, holidays,
			result.Solved, calc, tables.MachinesByID, tables.MaterialsByID, groupJobs,
		)
		if expandErr != nil {
			groupLogger.Warn().Err(expandErr).Msg("scheduling failed for group, jobs deferred")
			summary.NonProcessedSoIDs = append(summary.NonProcessedSoIDs, soIDsOf(groupJobs)...)
			continue
		}

		allRows = append(allRows, rows...)
		scheduledJobs += len(result.Solved)
		summary.AdjustmentComponent += result.AdjustmentComponent
		summary.TardyComponent += result.TardyComponent
		summary.ObjectiveValue += result.ObjectiveValue
	}

	sort.Ints(summary.NonProcessedSoIDs)

	metrics.JobsScheduled.Set(float64(scheduledJobs))
	metrics.JobsNonProcessed.Set(float64(len(summary.NonProcessedSoIDs)))
	metrics.ObjectiveAdjustmentComponent.Set(summary.AdjustmentComponent)
	metrics.ObjectiveTardyComponent.Set(summary.TardyComponent)

	if len(allRows) == 0 {
		return summary, types.NewError(types.ScheduleError, "orchestrator.Run", errEmptyPlan{})
	}

	writeTimer := metrics.NewTimer()
	writeErr := store.ReplacePlan(ctx, allRows)
	writeTimer.ObserveDuration(metrics.PlanWriteDuration)
	if writeErr != nil {
		return summary, types.NewError(types.PersistError, "orchestrator.Run", writeErr)
	}

	summary.RowsWritten = len(allRows)

	logger.Info().
		Int("rows_written", summary.RowsWritten).
		Float64("objective_value", summary.ObjectiveValue).
		Float64("adjustment_component", summary.AdjustmentComponent).
		Float64("tardy_component", summary.TardyComponent).
		Ints("non_processed_so_ids", summary.NonProcessedSoIDs).
		Msg("planning invocation complete")

	return summary, nil
}

type errEmptyPlan struct{}

func (errEmptyPlan) Error() string { return "no machine group produced any plan rows" }

// withDueTimeUnits computes due_time_unit for each job per spec §4.4
// step 3: deadline_date = so_pub_date + 14 days; due_time_unit =
// (deadline_date - start_working_date + 1 day).days *
// time_units_per_working_day. Non-positive values become nil (no
// binding due date).
func withDueTimeUnits(jobList []types.PendingJob, startWorkingDate time.Time, timeUnitsPerWorkingDay int) []types.PendingJob {
	out := make([]types.PendingJob, len(jobList))
	for i, j := range jobList {
		deadline := j.SoPubDate.AddDate(0, 0, 14)
		days := int(deadline.Sub(startWorkingDate).Hours()/24) + 1
		units := days * timeUnitsPerWorkingDay

		j.DueTimeUnit = nil
		if units > 0 {
			u := units
			j.DueTimeUnit = &u
		}
		out[i] = j
	}
	return out
}

// unitsPerWorkingDay sums ceil(windowMinutes / timeScale) over the
// active working-hour windows.
func unitsPerWorkingDay(windows []types.WorkingHourInterval, timeScale int) int {
	total := 0
	for _, w := range windows {
		start, err1 := time.Parse("15:04", w.Start)
		end, err2 := time.Parse("15:04", w.End)
		if err1 != nil || err2 != nil {
			continue
		}
		minutes := int(end.Sub(start).Minutes())
		total += ceilDiv(minutes, timeScale)
	}
	return total
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return int(math.Ceil(float64(a) / float64(b)))
}

func groupLabel(machineTypeIDs []int) string {
	if len(machineTypeIDs) == 0 {
		return "empty"
	}
	out := ""
	for i, id := range machineTypeIDs {
		if i > 0 {
			out += ","
		}
		out += strconv.Itoa(id)
	}
	return out
}

func soIDsOf(jobList []types.PendingJob) []int {
	out := make([]int, len(jobList))
	for i, j := range jobList {
		out[i] = j.SoID
	}
	return out
}
