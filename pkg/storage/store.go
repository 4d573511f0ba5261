// Package storage is the relational store (spec §6): machine,
// material and compatibility catalogues, the derived pending-job
// view, and the transactional plan writer.
package storage

import (
	"context"

	"github.com/metaldraw/planner/pkg/types"
)

// Store is the persistence surface the pipeline depends on.
type Store interface {
	Machines(ctx context.Context) ([]types.Machine, error)
	Materials(ctx context.Context) ([]types.Material, error)
	Compatibility(ctx context.Context) ([]types.Compatibility, error)
	PendingJobs(ctx context.Context) ([]types.PendingJob, error)

	// ReplacePlan atomically deletes the stored plan and inserts rows,
	// in one transaction (spec §5/§7: rollback on failure leaves the
	// previous plan intact).
	ReplacePlan(ctx context.Context, rows []types.PlanRow) error

	Close() error
}
