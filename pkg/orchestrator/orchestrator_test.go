package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/metaldraw/planner/pkg/config"
	"github.com/metaldraw/planner/pkg/solver"
	"github.com/metaldraw/planner/pkg/solver/fakesolver"
	"github.com/metaldraw/planner/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	machines      []types.Machine
	materials     []types.Material
	compatibility []types.Compatibility
	pendingJobs   []types.PendingJob
	written       []types.PlanRow
	replaceErr    error
}

func (s *fakeStore) Machines(ctx context.Context) ([]types.Machine, error)           { return s.machines, nil }
func (s *fakeStore) Materials(ctx context.Context) ([]types.Material, error)         { return s.materials, nil }
func (s *fakeStore) Compatibility(ctx context.Context) ([]types.Compatibility, error) { return s.compatibility, nil }
func (s *fakeStore) PendingJobs(ctx context.Context) ([]types.PendingJob, error)     { return s.pendingJobs, nil }
func (s *fakeStore) ReplacePlan(ctx context.Context, rows []types.PlanRow) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.written = rows
	return nil
}
func (s *fakeStore) Close() error { return nil }

func baseSchedule() config.Schedule {
	sched := config.DefaultSchedule()
	sched.TimeScale = 15
	sched.MachineGroups = [][]int{{10}}
	sched.WorkingHourIntervals = []types.WorkingHourInterval{{Start: "08:00", End: "12:00"}}
	sched.OvertimeHourIntervals = nil
	return sched
}

func TestRunWritesPlanAndSummary(t *testing.T) {
	store := &fakeStore{
		machines:      []types.Machine{{MachineID: 1, MachineTypeID: 10, MachineWeightHour: 60}},
		materials:     []types.Material{{MatID: 100}},
		compatibility: []types.Compatibility{{MachineID: 1, MatID: 100}},
		pendingJobs: []types.PendingJob{
			{SoID: 1, MatID: 100, SaleVolume: 30, SoPubDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	fake := fakesolver.New([]solver.Assignment{{JobIndex: 0, MachineID: 1, Start: 0, End: 2}})

	settings := config.NewSettings(baseSchedule(),
		config.WithStartWorkingDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
	)

	summary, err := Run(context.Background(), store, fake, baseSchedule(), settings)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.RowsWritten)
	assert.Len(t, store.written, 1)
	assert.Equal(t, 1, store.written[0].SoID)
	assert.Empty(t, summary.NonProcessedSoIDs)
}

func TestRunFailsInvocationOnEmptyPlan(t *testing.T) {
	store := &fakeStore{
		machines:  []types.Machine{{MachineID: 1, MachineTypeID: 10, MachineWeightHour: 60}},
		materials: []types.Material{{MatID: 100}},
		// no compatibility rows: the only job is unplannable
		pendingJobs: []types.PendingJob{
			{SoID: 1, MatID: 100, SaleVolume: 30, SoPubDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	fake := fakesolver.New(nil)
	settings := config.NewSettings(baseSchedule())

	_, err := Run(context.Background(), store, fake, baseSchedule(), settings)
	require.Error(t, err)

	typed, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ScheduleError, typed.Kind)
}

func TestUnitsPerWorkingDaySumsCeiledWindows(t *testing.T) {
	windows := []types.WorkingHourInterval{{Start: "08:00", End: "12:00"}, {Start: "13:00", End: "17:10"}}
	assert.Equal(t, 16+17, unitsPerWorkingDay(windows, 15))
}
