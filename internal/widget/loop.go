package widget

import (
	"context"

	"github.com/alfredjeanlab/orgwidget/internal/model"
)

// Trigger tells the event loop which input changed.
type Trigger int

const (
	// TriggerSession means the session snapshot may have changed.
	TriggerSession Trigger = iota
	// TriggerData means the records may have changed and should be looked up again.
	TriggerData
)

func (t Trigger) String() string {
	if t == TriggerData {
		return "data"
	}
	return "session"
}

// Slot indexes for the per-slot request sequences.
const (
	slotPermission = iota
	slotOrganization
	slotCostCenter
	slotCount
)

// lookupResult is a finished lookup tagged with the auth epoch and the
// per-slot sequence number that issued it.
type lookupResult struct {
	epoch uint64
	slot  int
	seq   uint64
	name  string
	apply func(*Inputs)
}

// Run drives render cycles until ctx is done or triggers is closed. It
// emits the initial view and then every view that differs from the last
// one emitted.
//
// Lookups run in their own goroutines. Each result carries the auth epoch
// it was issued in and a sequence number for its slot. The epoch advances
// only when the auth flag turns false or on a fresh login; results from an
// older epoch are dropped, as are results older than the slot's last
// applied one. Repeated data refreshes therefore never discard a lookup
// that is still in flight for the same login.
func (w *Widget) Run(ctx context.Context, triggers <-chan Trigger, emit func(View)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan lookupResult)
	lookups := w.instrumented()

	var (
		epoch   uint64
		seq     uint64
		applied [slotCount]uint64
		auth    bool
		in      Inputs
		last    *View
	)

	publish := func() {
		in.Authenticated = auth
		v := Decide(in, w.rootPath)
		w.metrics.ObserveEvaluation(v.State)
		if last != nil && last.Equal(v) {
			return
		}
		last = &v
		emit(v)
	}

	issue := func() {
		seq++
		req := request{epoch: epoch, seq: seq}
		start(ctx, results, req, slotPermission, LookupPermission, lookups.Permission, func(in *Inputs, s Slot[model.Permission]) { in.Permission = s })
		start(ctx, results, req, slotOrganization, LookupOrganization, lookups.Organization, func(in *Inputs, s Slot[model.Organization]) { in.Organization = s })
		start(ctx, results, req, slotCostCenter, LookupCostCenter, lookups.CostCenter, func(in *Inputs, s Slot[model.CostCenter]) { in.CostCenter = s })
	}

	onSession := func() {
		prev := auth
		auth = w.syncFlag()
		switch {
		case !auth && prev:
			w.logger.Debug("widget: auth flag cleared, re-gating lookups")
			epoch++
			in = Inputs{}
		case auth && !prev:
			epoch++
			in = Inputs{}
			issue()
		}
	}

	onSession()
	publish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-triggers:
			if !ok {
				return nil
			}
			switch t {
			case TriggerSession:
				onSession()
			case TriggerData:
				// Records already shown stay until their replacements arrive.
				if auth {
					issue()
				}
			}
			publish()
		case r := <-results:
			if r.epoch != epoch || !auth || r.seq <= applied[r.slot] {
				w.metrics.ObserveStaleResult(r.name)
				w.logger.Debug("widget: dropping stale lookup result",
					"lookup", r.name, "epoch", r.epoch, "current", epoch, "seq", r.seq, "applied", applied[r.slot])
				continue
			}
			applied[r.slot] = r.seq
			r.apply(&in)
			publish()
		}
	}
}

// request identifies one round of lookups.
type request struct {
	epoch uint64
	seq   uint64
}

// start runs one lookup in a goroutine and posts its slot to results.
func start[T any](ctx context.Context, results chan<- lookupResult, req request, idx int, name string, l Lookup[T], set func(*Inputs, Slot[T])) {
	go func() {
		slot := Fetch(ctx, false, l)
		select {
		case results <- lookupResult{epoch: req.epoch, slot: idx, seq: req.seq, name: name, apply: func(in *Inputs) { set(in, slot) }}:
		case <-ctx.Done():
		}
	}()
}
