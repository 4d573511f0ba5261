package config

import (
	"fmt"
	"time"

	"github.com/metaldraw/planner/pkg/types"
)

// Settings is the immutable per-invocation configuration the Python
// original kept as a mutable global singleton. It is built once by
// NewSettings and threaded explicitly through the orchestrator.
type Settings struct {
	Debug            bool
	StartWorkingDate time.Time // midnight of the chosen start day
	RunTimeLimit     time.Duration
	Holidays         []string // YYYY-MM-DD
	OT               bool
}

// SettingsOption mutates a Settings value under construction.
type SettingsOption func(*Settings)

// WithDebug sets the debug flag.
func WithDebug(v bool) SettingsOption { return func(s *Settings) { s.Debug = v } }

// WithStartWorkingDate overrides the default (tomorrow) start date.
func WithStartWorkingDate(t time.Time) SettingsOption {
	return func(s *Settings) { s.StartWorkingDate = t }
}

// WithRunTimeLimit overrides the solver time budget.
func WithRunTimeLimit(d time.Duration) SettingsOption {
	return func(s *Settings) { s.RunTimeLimit = d }
}

// WithHolidays sets the holiday date list.
func WithHolidays(dates []string) SettingsOption {
	return func(s *Settings) { s.Holidays = dates }
}

// WithOT enables the overtime working-hour windows.
func WithOT(v bool) SettingsOption { return func(s *Settings) { s.OT = v } }

// NewSettings builds an immutable Settings value. The default start
// working date is tomorrow, matching the original's
// `datetime.now() + timedelta(days=1)`.
func NewSettings(sched Schedule, opts ...SettingsOption) Settings {
	tomorrow := time.Now().AddDate(0, 0, 1)
	s := Settings{
		StartWorkingDate: time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location()),
		RunTimeLimit:     sched.DefaultRunTimeLimit,
		Holidays:         nil,
		OT:               false,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ParseStartDate parses a YYYY-MM-DD string as the original's
// is_date_format validation does, returning a ConfigError on failure.
func ParseStartDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, types.NewError(types.ConfigError, "config.ParseStartDate",
			fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err))
	}
	return t, nil
}
