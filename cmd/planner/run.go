package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/metaldraw/planner/pkg/config"
	"github.com/metaldraw/planner/pkg/log"
	"github.com/metaldraw/planner/pkg/metrics"
	"github.com/metaldraw/planner/pkg/orchestrator"
	"github.com/metaldraw/planner/pkg/solver/fdsolver"
	"github.com/metaldraw/planner/pkg/storage"
	"github.com/metaldraw/planner/pkg/types"
	"github.com/spf13/cobra"
)

var (
	nonInteractive bool
	metricsAddr    string
	dbConfigPath   string
	scheduleYAML   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one planning invocation",
	RunE:  runPlanner,
}

func init() {
	runCmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "skip interactive prompts and use defaults")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "optional address to serve /metrics on, e.g. :9090")
	runCmd.Flags().StringVar(&dbConfigPath, "dbconfig", config.ResourcePath("dbconfig.json"), "path to dbconfig.json")
	runCmd.Flags().StringVar(&scheduleYAML, "schedule", config.ResourcePath("schedule.yaml"), "path to schedule.yaml")
}

func runPlanner(cmd *cobra.Command, args []string) error {
	logger := log.WithComponent("cli")
	metrics.RegisterComponent("cli", true, "")

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/healthz", metrics.HealthHandler())
		mux.Handle("/readyz", metrics.ReadyHandler())
		mux.Handle("/livez", metrics.LivenessHandler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	sched, err := config.LoadSchedule(scheduleYAML)
	if err != nil {
		return err
	}

	logger.Info().Msg("Connect to the database ...")
	dbCfg, err := config.LoadDBConfig(dbConfigPath)
	if err != nil {
		metrics.RegisterComponent("database", false, err.Error())
		logger.Error().Err(err).Msg("Connect database error")
		return err
	}

	ctx := context.Background()
	store, err := storage.Connect(ctx, dbCfg.DSN())
	if err != nil {
		metrics.RegisterComponent("database", false, err.Error())
		logger.Error().Err(err).Msg("Connect database error")
		return err
	}
	defer store.Close()
	metrics.RegisterComponent("database", true, "")
	metrics.RegisterComponent("solver", true, "")

	logger.Info().Msg("The connection to the database was successful.")
	logger.Info().Msg("Start production planning")

	settings := config.NewSettings(sched, config.WithDebug(debug))
	logger.Info().Str("start_working_date", settings.StartWorkingDate.Format("2006-01-02")).Msg("Default start date")

	if !nonInteractive {
		settings, err = promptSettings(sched, settings)
		if err != nil {
			return err
		}
	}

	slv := fdsolver.New()

	summary, err := orchestrator.Run(ctx, store, slv, sched, settings)
	if err != nil {
		switch {
		case errors.Is(err, &types.Error{Kind: types.DataError}), errors.Is(err, &types.Error{Kind: types.PersistError}):
			metrics.RegisterComponent("database", false, err.Error())
		case errors.Is(err, &types.Error{Kind: types.ScheduleError}), errors.Is(err, &types.Error{Kind: types.SolverError}):
			metrics.RegisterComponent("solver", false, err.Error())
		}
		logger.Error().Err(err).Msg("Generate production plan was error")
		return err
	}

	logger.Info().
		Int("rows_written", summary.RowsWritten).
		Float64("objective_value", summary.ObjectiveValue).
		Float64("adjustment_component", summary.AdjustmentComponent).
		Float64("tardy_component", summary.TardyComponent).
		Ints("non_processed_so_ids", summary.NonProcessedSoIDs).
		Msg("production plan generated")

	return nil
}

// promptSettings reproduces the original console's exact prompt
// ordering: change start date, add holidays, enable OT mode.
func promptSettings(sched config.Schedule, base config.Settings) (config.Settings, error) {
	var changeStartDate bool
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Do you want to change start date").
			Affirmative("Y").Negative("n").
			Value(&changeStartDate),
	)).Run(); err != nil {
		return base, err
	}

	startDate := base.StartWorkingDate
	if changeStartDate {
		var raw string
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("enter start date (YYYY-MM-DD)").
				Value(&raw).
				Validate(func(s string) error {
					_, err := config.ParseStartDate(s)
					return err
				}),
		)).Run(); err != nil {
			return base, err
		}
		parsed, err := config.ParseStartDate(raw)
		if err != nil {
			return base, err
		}
		startDate = parsed
	}

	var hasHoliday bool
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Do you have a holiday in next two weeks").
			Affirmative("Y").Negative("n").
			Value(&hasHoliday),
	)).Run(); err != nil {
		return base, err
	}

	var holidays []string
	if hasHoliday {
		var raw string
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("enter holiday in format (YYYY-MM-DD,YYYY-MM-DD)").
				Value(&raw).
				Validate(func(s string) error {
					for _, d := range strings.Split(s, ",") {
						if _, err := config.ParseStartDate(strings.TrimSpace(d)); err != nil {
							return fmt.Errorf("incorrect date format: %w", err)
						}
					}
					return nil
				}),
		)).Run(); err != nil {
			return base, err
		}
		for _, d := range strings.Split(raw, ",") {
			holidays = append(holidays, strings.TrimSpace(d))
		}
	}

	var ot bool
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Do you want to plan with OT").
			Affirmative("Y").Negative("n").
			Value(&ot),
	)).Run(); err != nil {
		return base, err
	}

	return config.NewSettings(sched,
		config.WithDebug(base.Debug),
		config.WithStartWorkingDate(startDate),
		config.WithHolidays(holidays),
		config.WithOT(ot),
		config.WithRunTimeLimit(base.RunTimeLimit),
	), nil
}
