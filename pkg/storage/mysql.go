package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
	"github.com/metaldraw/planner/pkg/log"
	"github.com/metaldraw/planner/pkg/types"
)

// MySQLStore is the MariaDB/MySQL-backed Store.
type MySQLStore struct {
	db *sql.DB
}

// Connect opens the database connection, retrying with bounded
// exponential backoff (the idiomatic analogue of the original's
// single, unretried mariadb.connect() call).
func Connect(ctx context.Context, dsn string) (*MySQLStore, error) {
	logger := log.WithComponent("storage")

	var db *sql.DB
	operation := func() error {
		var err error
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		return db.PingContext(ctx)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.RetryNotify(operation, bo, func(err error, d time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", d).Msg("database connect failed, retrying")
	}); err != nil {
		return nil, types.NewError(types.ConfigError, "storage.Connect", err)
	}

	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(s.db)
}

func (s *MySQLStore) Machines(ctx context.Context) ([]types.Machine, error) {
	rows, err := s.builder().Select("machine_id", "machine_type_id", "machine_weight_hour", "machine_spd_mul", "machine_change_time").
		From("machine_master").QueryContext(ctx)
	if err != nil {
		return nil, types.NewError(types.DataError, "storage.Machines", err)
	}
	defer rows.Close()

	var out []types.Machine
	for rows.Next() {
		var m types.Machine
		if err := rows.Scan(&m.MachineID, &m.MachineTypeID, &m.MachineWeightHour, &m.MachineSpdMul, &m.MachineChangeTime); err != nil {
			return nil, types.NewError(types.DataError, "storage.Machines", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MySQLStore) Materials(ctx context.Context) ([]types.Material, error) {
	rows, err := s.builder().Select("mat_id", "mat_size").From("material_master").QueryContext(ctx)
	if err != nil {
		return nil, types.NewError(types.DataError, "storage.Materials", err)
	}
	defer rows.Close()

	var out []types.Material
	for rows.Next() {
		var m types.Material
		if err := rows.Scan(&m.MatID, &m.MatSize); err != nil {
			return nil, types.NewError(types.DataError, "storage.Materials", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MySQLStore) Compatibility(ctx context.Context) ([]types.Compatibility, error) {
	rows, err := s.builder().Select("machine_id", "mat_id").From("machine_material").QueryContext(ctx)
	if err != nil {
		return nil, types.NewError(types.DataError, "storage.Compatibility", err)
	}
	defer rows.Close()

	var out []types.Compatibility
	for rows.Next() {
		var c types.Compatibility
		if err := rows.Scan(&c.MachineID, &c.MatID); err != nil {
			return nil, types.NewError(types.DataError, "storage.Compatibility", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// pendingJobQuery is the derived so_item view from spec §6: so_item
// joined to so, a delivered-quantity buffer (do_item filtered to
// do_status_id < 90), and a draft-plan buffer (draft_do_item joined
// to pd_item), restricted to so_status_id < 9.
const pendingJobQuery = `
SELECT
	so_item.mat_id,
	so.so_id,
	so_item.sale_volume,
	COALESCE(do_buffer.weight, 0) AS sent_volume,
	COALESCE(draft_buffer.weight, 0) AS draft_volume,
	so.so_pub_date
FROM so_item
LEFT JOIN so ON so.so_id = so_item.so_id
LEFT JOIN (
	SELECT do_item.mat_id, do.so_id, SUM(do_item.weight_deliver) AS weight
	FROM do_item
	LEFT JOIN do ON do.do_id = do_item.do_id
	WHERE do_item.do_id IN (SELECT do.do_id FROM do WHERE do.do_status_id < 90)
	GROUP BY do_item.mat_id, do.so_id
) do_buffer ON so_item.mat_id = do_buffer.mat_id AND so_item.so_id = do_buffer.so_id
LEFT JOIN (
	SELECT result_id, so_id, SUM(pd_weight) AS weight
	FROM draft_do_item
	INNER JOIN pd_item USING (pd_item_id)
	GROUP BY result_id
) draft_buffer ON so_item.mat_id = draft_buffer.result_id AND so_item.so_id = draft_buffer.so_id
WHERE so_status_id < 9
`

func (s *MySQLStore) PendingJobs(ctx context.Context) ([]types.PendingJob, error) {
	rows, err := s.db.QueryContext(ctx, pendingJobQuery)
	if err != nil {
		return nil, types.NewError(types.DataError, "storage.PendingJobs", err)
	}
	defer rows.Close()

	var out []types.PendingJob
	for rows.Next() {
		var j types.PendingJob
		if err := rows.Scan(&j.MatID, &j.SoID, &j.SaleVolume, &j.SentVolume, &j.DraftVolume, &j.SoPubDate); err != nil {
			return nil, types.NewError(types.DataError, "storage.PendingJobs", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ReplacePlan deletes the stored plan and bulk-inserts rows inside
// one transaction (spec §5: delete then insert, rollback on failure
// leaves the previous plan intact).
func (s *MySQLStore) ReplacePlan(ctx context.Context, rows []types.PlanRow) error {
	return WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM pd_plan"); err != nil {
			return err
		}

		insert := sq.Insert("pd_plan").
			Columns("so_id", "mat_id", "res_volume", "start_timestamp", "end_timestamp", "machine_id", "pd_plan_pub_date", "batch_volume", "remaining_volume").
			RunWith(tx)

		for _, r := range rows {
			insert = insert.Values(r.SoID, r.MatID, r.ResVolume, r.StartTimestamp, r.EndTimestamp, r.MachineID, time.Now(), r.BatchVolume, r.RemainingVolume)
		}

		_, err := insert.ExecContext(ctx)
		return err
	})
}

// WithTransaction commits fn's work on success and rolls back
// (surfacing fn's error, not the rollback error) on failure, matching
// the original's run_in_transaction semantics.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return types.NewError(types.PersistError, "storage.WithTransaction", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return types.NewError(types.PersistError, "storage.WithTransaction",
				fmt.Errorf("%w (rollback also failed: %v)", err, rbErr))
		}
		return types.NewError(types.PersistError, "storage.WithTransaction", err)
	}

	if err := tx.Commit(); err != nil {
		return types.NewError(types.PersistError, "storage.WithTransaction", err)
	}
	return nil
}
