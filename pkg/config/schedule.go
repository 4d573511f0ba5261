package config

import (
	"os"
	"time"

	"github.com/metaldraw/planner/pkg/types"
	"gopkg.in/yaml.v3"
)

// Schedule holds the implementation-defined constants spec §6 lists:
// TIME_SCALE, IRON_DENSITY, DEFAULT_RUN_TIME_LIMIT,
// WEIGHT_OF_ADJUSTMENT_TIME, WEIGHT_OF_TARDY_JOB, MACHINE_GROUP,
// working_hour_interval, overtime_hour_interval.
type Schedule struct {
	TimeScale              int           `yaml:"time_scale"`
	IronDensity            float64       `yaml:"iron_density"`
	DefaultRunTimeLimit    time.Duration `yaml:"default_run_time_limit"`
	WeightOfAdjustmentTime float64       `yaml:"weight_of_adjustment_time"`
	WeightOfTardyJob       float64       `yaml:"weight_of_tardy_job"`
	MachineGroups          [][]int       `yaml:"machine_groups"`
	WorkingHourIntervals   []types.WorkingHourInterval `yaml:"working_hour_intervals"`
	OvertimeHourIntervals  []types.WorkingHourInterval `yaml:"overtime_hour_intervals"`
}

// DefaultSchedule matches the worked examples in spec §8 (TIME_SCALE=15,
// a single 08:00-12:00/13:00-17:00 working day, IRON_DENSITY from S5).
func DefaultSchedule() Schedule {
	return Schedule{
		TimeScale:              15,
		IronDensity:            7.85e-6,
		DefaultRunTimeLimit:    60 * time.Second,
		WeightOfAdjustmentTime: 1.0,
		WeightOfTardyJob:       10.0,
		MachineGroups:          [][]int{{1}, {2}, {3}},
		WorkingHourIntervals: []types.WorkingHourInterval{
			{Start: "08:00", End: "12:00"},
			{Start: "13:00", End: "17:00"},
		},
		OvertimeHourIntervals: []types.WorkingHourInterval{
			{Start: "17:00", End: "19:00"},
		},
	}
}

// ActiveWorkingHours returns the regular windows, extended with
// overtime windows when ot is true.
func (s Schedule) ActiveWorkingHours(ot bool) []types.WorkingHourInterval {
	if !ot {
		return s.WorkingHourIntervals
	}
	out := make([]types.WorkingHourInterval, 0, len(s.WorkingHourIntervals)+len(s.OvertimeHourIntervals))
	out = append(out, s.WorkingHourIntervals...)
	out = append(out, s.OvertimeHourIntervals...)
	return out
}

// LoadSchedule reads schedule.yaml at path, falling back to
// DefaultSchedule for any zero-valued field left unset by the file.
// A missing file is not an error: the defaults alone are a valid
// schedule.
func LoadSchedule(path string) (Schedule, error) {
	sched := DefaultSchedule()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sched, nil
		}
		return sched, types.NewError(types.ConfigError, "config.LoadSchedule", err)
	}

	overlay := Schedule{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return sched, types.NewError(types.ConfigError, "config.LoadSchedule", err)
	}

	if overlay.TimeScale != 0 {
		sched.TimeScale = overlay.TimeScale
	}
	if overlay.IronDensity != 0 {
		sched.IronDensity = overlay.IronDensity
	}
	if overlay.DefaultRunTimeLimit != 0 {
		sched.DefaultRunTimeLimit = overlay.DefaultRunTimeLimit
	}
	if overlay.WeightOfAdjustmentTime != 0 {
		sched.WeightOfAdjustmentTime = overlay.WeightOfAdjustmentTime
	}
	if overlay.WeightOfTardyJob != 0 {
		sched.WeightOfTardyJob = overlay.WeightOfTardyJob
	}
	if len(overlay.MachineGroups) > 0 {
		sched.MachineGroups = overlay.MachineGroups
	}
	if len(overlay.WorkingHourIntervals) > 0 {
		sched.WorkingHourIntervals = overlay.WorkingHourIntervals
	}
	if len(overlay.OvertimeHourIntervals) > 0 {
		sched.OvertimeHourIntervals = overlay.OvertimeHourIntervals
	}

	return sched, nil
}
