// Package scheduler expands a solver's abstract integer time-unit
// placements onto a wall-clock calendar of repeating daily
// working-hour windows, skipping holidays and back-computing produced
// weight and running residual volume per segment.
package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/metaldraw/planner/pkg/config"
	"github.com/metaldraw/planner/pkg/duration"
	"github.com/metaldraw/planner/pkg/types"
)

const placeholderJobIndex = -1

// segment is one raw calendar placement before weight/residual
// back-computation (spec §4.3 step 3's output).
type segment struct {
	machineID int
	jobIndex  int // placeholderJobIndex for a setup placeholder
	soID      int
	matID     int
	start     time.Time
	end       time.Time
}

// Expand lays out solved per-(job, machine) intervals onto the
// calendar. holidays is a set of "YYYY-MM-DD" strings. machines and
// materials are looked up by id to compute batch_volume via calc.
func Expand(
	sched config.Schedule,
	ot bool,
	startDate time.Time,
	holidays map[string]bool,
	solved []types.Solved,
	calc *duration.Calculator,
	machinesByID map[int]types.Machine,
	materialsByID map[int]types.Material,
	pendingJobs []types.PendingJob,
) ([]types.PlanRow, error) {
	windows := sched.ActiveWorkingHours(ot)

	resVolumeBySoID := make(map[int]float64, len(pendingJobs))
	for _, j := range pendingJobs {
		resVolumeBySoID[j.SoID] = j.ResVolume()
	}

	byMachine := make(map[int][]types.Solved)
	for _, s := range solved {
		byMachine[s.MachineID] = append(byMachine[s.MachineID], s)
	}
	machineIDs := make([]int, 0, len(byMachine))
	for id := range byMachine {
		machineIDs = append(machineIDs, id)
	}
	sort.Ints(machineIDs)

	var rows []types.PlanRow

	for _, machineID := range machineIDs {
		intervals := byMachine[machineID]
		sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })

		segs := expandMachine(windows, startDate, holidays, machineID, intervals, sched.TimeScale)
		rows = append(rows, backComputeWeights(segs, calc, machinesByID, materialsByID, resVolumeBySoID, sched.TimeScale)...)
	}

	return rows, nil
}

// dayCursor walks the active working-hour windows across successive
// calendar days, skipping holidays, carrying the same window list
// forward each day.
type dayCursor struct {
	windows  []types.WorkingHourInterval
	holidays map[string]bool
	date     time.Time
	windowIx int
}

func newDayCursor(windows []types.WorkingHourInterval, holidays map[string]bool, startDate time.Time) *dayCursor {
	date := startDate
	for holidays[date.Format("2006-01-02")] {
		date = date.AddDate(0, 0, 1)
	}
	return &dayCursor{windows: windows, holidays: holidays, date: date, windowIx: -1}
}

// next advances to the following window (and day, if needed), and
// returns its [start, end) as absolute timestamps.
func (c *dayCursor) next() (time.Time, time.Time) {
	c.windowIx++
	if c.windowIx >= len(c.windows) {
		c.windowIx = 0
		c.date = c.date.AddDate(0, 0, 1)
		for c.holidays[c.date.Format("2006-01-02")] {
			c.date = c.date.AddDate(0, 0, 1)
		}
	}
	w := c.windows[c.windowIx]
	return combineDate(c.date, w.Start), combineDate(c.date, w.End)
}

func combineDate(date time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// expandMachine implements spec §4.3 step 3 for one machine's sorted
// solver intervals.
func expandMachine(
	windows []types.WorkingHourInterval,
	startDate time.Time,
	holidays map[string]bool,
	machineID int,
	intervals []types.Solved,
	timeScale int,
) []segment {
	if len(windows) == 0 || len(intervals) == 0 {
		return nil
	}

	cursor := newDayCursor(windows, holidays, startDate)

	var (
		cursorTime    time.Time
		cursorWinEnd  time.Time
		needNewWindow = true
		segs          []segment
	)

	advance := func() {
		cursorTime, cursorWinEnd = cursor.next()
		needNewWindow = false
	}

	for i, interval := range intervals {
		remMinutes := (interval.End - interval.Start) * timeScale
		remSetup := 0
		if i > 0 {
			gapUnits := interval.Start - intervals[i-1].End
			if gapUnits > 0 {
				remSetup = gapUnits * timeScale
			}
		}

		for remSetup > 0 || remMinutes > 0 {
			if needNewWindow {
				advance()
			}

			if remSetup > 0 {
				available := int(cursorWinEnd.Sub(cursorTime).Minutes())
				if remSetup > available {
					if available > 0 {
						segs = append(segs, segment{
							machineID: machineID,
							jobIndex:  placeholderJobIndex,
							start:     cursorTime,
							end:       cursorWinEnd,
						})
					}
					remSetup -= available
					needNewWindow = true
					continue
				}
				cursorTime = cursorTime.Add(time.Duration(remSetup) * time.Minute)
				remSetup = 0
			}

			available := int(cursorWinEnd.Sub(cursorTime).Minutes())
			switch {
			case remMinutes > available:
				segs = append(segs, segment{
					machineID: machineID,
					jobIndex:  interval.JobIndex,
					soID:      interval.SoID,
					matID:     interval.MatID,
					start:     cursorTime,
					end:       cursorWinEnd,
				})
				remMinutes -= available
				needNewWindow = true
			case remMinutes == available:
				segs = append(segs, segment{
					machineID: machineID,
					jobIndex:  interval.JobIndex,
					soID:      interval.SoID,
					matID:     interval.MatID,
					start:     cursorTime,
					end:       cursorWinEnd,
				})
				remMinutes = 0
				needNewWindow = true
			default:
				end := cursorTime.Add(time.Duration(remMinutes) * time.Minute)
				segs = append(segs, segment{
					machineID: machineID,
					jobIndex:  interval.JobIndex,
					soID:      interval.SoID,
					matID:     interval.MatID,
					start:     cursorTime,
					end:       end,
				})
				cursorTime = end
				remMinutes = 0
			}
		}
	}

	return segs
}

// backComputeWeights implements spec §4.3 step 4: for each non-placeholder
// segment compute batch_volume, and derive remaining_volume per
// (so_id, mat_id) run in machine-start order.
func backComputeWeights(
	segs []segment,
	calc *duration.Calculator,
	machinesByID map[int]types.Machine,
	materialsByID map[int]types.Material,
	resVolumeBySoID map[int]float64,
	timeScale int,
) []types.PlanRow {
	var rows []types.PlanRow

	var lastKeySoID, lastKeyMatID int
	haveLastKey := false
	var remaining float64

	for _, seg := range segs {
		if seg.jobIndex == placeholderJobIndex {
			continue
		}

		machine := machinesByID[seg.machineID]
		material := materialsByID[seg.matID]
		resVolume := resVolumeBySoID[seg.soID]

		minutes := seg.end.Sub(seg.start).Minutes()
		units := int(math.Floor(minutes / float64(timeScale)))

		batch, _ := calc.Weight(machine, material, units)
		batch = round2(batch)

		sameRun := haveLastKey && seg.soID == lastKeySoID && seg.matID == lastKeyMatID
		if !sameRun {
			remaining = round2(resVolume - batch)
		} else {
			remaining = round2(remaining - batch)
		}
		lastKeySoID, lastKeyMatID, haveLastKey = seg.soID, seg.matID, true

		rows = append(rows, types.PlanRow{
			SoID:            seg.soID,
			MatID:           seg.matID,
			ResVolume:       resVolume,
			BatchVolume:     batch,
			RemainingVolume: remaining,
			StartTimestamp:  seg.start,
			EndTimestamp:    seg.end,
			MachineID:       seg.machineID,
		})
	}

	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
