package widget

import (
	"context"

	"github.com/alfredjeanlab/orgwidget/internal/client"
	"github.com/alfredjeanlab/orgwidget/internal/model"
	"golang.org/x/sync/errgroup"
)

// SlotState is the resolution state of one lookup.
type SlotState int

const (
	// Absent covers skipped, in-flight and not-found lookups.
	Absent SlotState = iota
	Ready
	Failed
)

func (s SlotState) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "absent"
	}
}

// Slot holds the result of one lookup.
type Slot[T any] struct {
	State SlotState
	Value *T
	Err   error
}

// Present reports whether the slot holds a record.
func (s Slot[T]) Present() bool {
	return s.State == Ready && s.Value != nil
}

// Lookup is a remote query for the current shopper's record.
// A nil record with a nil error means the record does not exist.
type Lookup[T any] func(ctx context.Context) (*T, error)

// Fetch runs lookup unless skip is set. Skipping makes no call and yields
// an Absent slot.
func Fetch[T any](ctx context.Context, skip bool, lookup Lookup[T]) Slot[T] {
	if skip || lookup == nil {
		return Slot[T]{}
	}
	v, err := lookup(ctx)
	switch {
	case err != nil:
		return Slot[T]{State: Failed, Err: err}
	case v == nil:
		return Slot[T]{}
	default:
		return Slot[T]{State: Ready, Value: v}
	}
}

// Fetchers are the three independent lookups the widget depends on.
type Fetchers struct {
	Permission   Lookup[model.Permission]
	Organization Lookup[model.Organization]
	CostCenter   Lookup[model.CostCenter]
}

// NewFetchers binds the lookups to a storefront client and session.
// Not-found responses become nil records.
func NewFetchers(c client.StorefrontClient, sessionID string) Fetchers {
	return Fetchers{
		Permission: func(ctx context.Context) (*model.Permission, error) {
			return notFoundAsNil(c.CheckUserPermission(ctx, sessionID))
		},
		Organization: func(ctx context.Context) (*model.Organization, error) {
			return notFoundAsNil(c.GetOrganization(ctx, sessionID))
		},
		CostCenter: func(ctx context.Context) (*model.CostCenter, error) {
			return notFoundAsNil(c.GetCostCenter(ctx, sessionID))
		},
	}
}

func notFoundAsNil[T any](v *T, err error) (*T, error) {
	if client.IsNotFound(err) {
		return nil, nil
	}
	return v, err
}

// Results are the three slots of one render cycle.
type Results struct {
	Permission   Slot[model.Permission]
	Organization Slot[model.Organization]
	CostCenter   Slot[model.CostCenter]
}

// Resolve runs the three lookups concurrently and waits for all of them.
// Lookup failures land in the slots; Resolve itself never fails.
func Resolve(ctx context.Context, skip bool, f Fetchers) Results {
	var r Results
	if skip {
		return r
	}
	var g errgroup.Group
	g.Go(func() error {
		r.Permission = Fetch(ctx, false, f.Permission)
		return nil
	})
	g.Go(func() error {
		r.Organization = Fetch(ctx, false, f.Organization)
		return nil
	})
	g.Go(func() error {
		r.CostCenter = Fetch(ctx, false, f.CostCenter)
		return nil
	})
	_ = g.Wait()
	return r
}
