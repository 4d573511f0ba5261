// Package config loads the pipeline's two configuration layers: the
// database connection file and the schedule constants, plus the
// immutable per-invocation settings value built from CLI/interactive
// input. None of these are ever held as a package-level mutable
// global; callers build a value once and thread it through explicitly.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metaldraw/planner/pkg/types"
)

// DBConfig is the parsed contents of dbconfig.json (spec §6).
type DBConfig struct {
	User     string `json:"user"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Database string `json:"database"`
}

// Validate reports a *types.Error(ConfigError) if any required key is
// missing, matching the original's CONFIG_KEYS check.
func (c DBConfig) Validate() error {
	missing := map[string]bool{
		"user":     c.User == "",
		"password": c.Password == "",
		"host":     c.Host == "",
		"database": c.Database == "",
	}
	for key, isMissing := range missing {
		if isMissing {
			return types.NewError(types.ConfigError, "config.DBConfig.Validate",
				fmt.Errorf("database configuration incomplete: missing %q", key))
		}
	}
	return nil
}

// DSN formats the config as a go-sql-driver/mysql data source name.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", c.User, c.Password, c.Host, c.Database)
}

// LoadDBConfig reads and validates dbconfig.json from path.
func LoadDBConfig(path string) (DBConfig, error) {
	var cfg DBConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, types.NewError(types.ConfigError, "config.LoadDBConfig", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, types.NewError(types.ConfigError, "config.LoadDBConfig", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ResourcePath resolves relative to the running executable's
// directory, so a packaged binary finds dbconfig.json/schedule.yaml
// next to itself rather than relative to the caller's working
// directory (original's resource_path helper).
func ResourcePath(relative string) string {
	exe, err := os.Executable()
	if err != nil {
		return relative
	}
	return filepath.Join(filepath.Dir(exe), relative)
}
