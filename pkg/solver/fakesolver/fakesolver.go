// Package fakesolver is a fixed, table-driven solver.Solver test
// double: it returns a caller-supplied assignment list instead of
// running any search, so planner/scheduler tests never depend on the
// real constraint-programming engine.
package fakesolver

import (
	"context"
	"fmt"

	"github.com/metaldraw/planner/pkg/solver"
)

// Fake returns a fixed Solution (or a fixed error) regardless of the
// Model it is given.
type Fake struct {
	Solution solver.Solution
	Err      error
}

// New builds a Fake that always returns assignments.
func New(assignments []solver.Assignment) *Fake {
	return &Fake{Solution: solver.Solution{Assignments: assignments}}
}

// NewFailing builds a Fake that always fails with msg.
func NewFailing(msg string) *Fake {
	return &Fake{Err: fmt.Errorf("fakesolver: %s", msg)}
}

func (f *Fake) Solve(ctx context.Context, model solver.Model) (solver.Solution, error) {
	if f.Err != nil {
		return solver.Solution{}, f.Err
	}
	return f.Solution, nil
}
