// Package prehension runs the twelve organs for one V0 cycle concurrently.
// Organs are conceptually parallel (spec.md §4.5/§9): ordering among them
// within a cycle is not observable, so each organ is dispatched onto its
// own goroutine via golang.org/x/sync/errgroup, writing into a private
// result slot — no shared mutable state is touched, so no lock is needed
// across organs. A single organ's panic is caught by organs.Safe and never
// propagates to the group.
package prehension

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

// Run executes all organs for one cycle and returns their results keyed by
// organ name. catalog is forwarded to organs.Safe so a panicking organ's
// recovered Neutral result still carries that organ's own atom names.
func Run(roster []organs.Organ, catalog *atoms.Catalog, c organs.Context) map[atoms.Organ]organs.Result {
	if c.Ctx == nil {
		c.Ctx = context.Background()
	}
	results := make([]organs.Result, len(roster))

	g, _ := errgroup.WithContext(c.Ctx)
	for i, o := range roster {
		i, o := i, o
		g.Go(func() error {
			results[i] = organs.Safe(o, catalog, c)
			return nil
		})
	}
	_ = g.Wait() // organs.Safe never returns an error; Wait only joins goroutines

	out := make(map[atoms.Organ]organs.Result, len(roster))
	for _, r := range results {
		out[r.Organ] = r
	}
	return out
}
