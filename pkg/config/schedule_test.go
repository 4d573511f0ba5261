package config

import (
	"testing"

	"github.com/metaldraw/planner/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScheduleMissingFileFallsBackToDefaults(t *testing.T) {
	sched, err := LoadSchedule("/nonexistent/schedule.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule(), sched)
}

func TestActiveWorkingHoursAppendsOvertime(t *testing.T) {
	sched := DefaultSchedule()

	regular := sched.ActiveWorkingHours(false)
	assert.Len(t, regular, len(sched.WorkingHourIntervals))

	withOT := sched.ActiveWorkingHours(true)
	assert.Len(t, withOT, len(sched.WorkingHourIntervals)+len(sched.OvertimeHourIntervals))
}

func TestDBConfigValidateReportsConfigError(t *testing.T) {
	cfg := DBConfig{User: "root"}
	err := cfg.Validate()
	require.Error(t, err)

	typed, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ConfigError, typed.Kind)
}

func TestParseStartDate(t *testing.T) {
	_, err := ParseStartDate("2024-01-02")
	require.NoError(t, err)

	_, err = ParseStartDate("not-a-date")
	require.Error(t, err)
}
