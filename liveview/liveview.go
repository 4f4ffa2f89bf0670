package liveview

import (
	"context"
	"fmt"
	"sync"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/monitoring"
	"github.com/ViBaTo/panel-control-tm/realtime"
	"github.com/ViBaTo/panel-control-tm/repositories"
)

// Row is one untyped table row.
type Row = map[string]interface{}

// Source runs generic selects.
type Source interface {
	Select(ctx context.Context, q repositories.TableQuery) (*repositories.TableResult, error)
}

// Notifier delivers change events for a table.
type Notifier interface {
	Subscribe(ctx context.Context, table string) (*realtime.Subscription, error)
}

// Options shape the query behind a view.
type Options struct {
	Columns   []string
	Limit     int
	OrderBy   string
	Ascending bool
	// Fallback is shown when the query fails or returns no rows.
	Fallback []Row
	// Realtime refetches on every change event for the table.
	Realtime bool
}

// State is a snapshot of a view. Error is set only when the query failed,
// so an empty table and an unreachable one can be told apart.
type State struct {
	Table           string `json:"table"`
	Data            []Row  `json:"data"`
	Loading         bool   `json:"loading"`
	Error           string `json:"error,omitempty"`
	IsUsingFallback bool   `json:"isUsingFallback"`
}

// Deps groups the collaborators of a view.
type Deps struct {
	Source   Source
	Notifier Notifier
	Log      *logger.Logger
	Metrics  *monitoring.DashboardMetrics
}

// View keeps the latest state of one table query.
type View struct {
	table string
	opts  Options
	deps  Deps

	mu    sync.RWMutex
	state State

	updates chan State
	cancel  context.CancelFunc
	done    chan struct{}
}

// Fetch runs the query once and returns the settled state.
func Fetch(ctx context.Context, deps Deps, table string, opts Options) State {
	v := &View{table: table, opts: opts, deps: deps}
	return v.fetch(ctx)
}

// Watch starts a view. The first fetch runs in the background; Snapshot
// reports Loading until it completes. With opts.Realtime the view refetches
// on every change event until Close is called or ctx ends.
func Watch(ctx context.Context, deps Deps, table string, opts Options) *View {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	deps.Log = deps.Log.Component("liveview")

	ctx, cancel := context.WithCancel(ctx)
	v := &View{
		table:   table,
		opts:    opts,
		deps:    deps,
		state:   State{Table: table, Data: []Row{}, Loading: true},
		updates: make(chan State, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	var sub *realtime.Subscription
	if opts.Realtime && deps.Notifier != nil {
		s, err := deps.Notifier.Subscribe(ctx, table)
		if err != nil {
			deps.Log.WithError(err).Warnf("realtime disabled for %s", table)
		} else {
			sub = s
		}
	}

	go v.loop(ctx, sub)
	return v
}

func (v *View) loop(ctx context.Context, sub *realtime.Subscription) {
	defer close(v.done)
	defer close(v.updates)
	if sub != nil {
		defer sub.Close()
	}

	v.set(v.fetch(ctx))

	if sub == nil {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
			v.deps.Metrics.ObserveRefetch(v.table)
			st := v.fetch(ctx)
			if ctx.Err() != nil {
				return
			}
			v.set(st)
		}
	}
}

func (v *View) fetch(ctx context.Context) (st State) {
	st = State{Table: v.table}
	defer func() {
		if r := recover(); r != nil {
			st = v.fallback(fmt.Sprint(r))
		}
	}()

	res, err := v.deps.Source.Select(ctx, repositories.TableQuery{
		Table:     v.table,
		Columns:   v.opts.Columns,
		Limit:     v.opts.Limit,
		OrderBy:   v.opts.OrderBy,
		Ascending: v.opts.Ascending,
	})
	if err != nil {
		if v.deps.Log != nil {
			v.deps.Log.WithError(err).Errorf("error fetching %s", v.table)
		}
		return v.fallback(err.Error())
	}
	if len(res.Rows) == 0 {
		return v.fallback("")
	}
	st.Data = res.Rows
	return st
}

func (v *View) fallback(errMsg string) State {
	reason := "empty"
	if errMsg != "" {
		reason = "error"
	}
	v.deps.Metrics.ObserveFallback(v.table, reason)

	data := v.opts.Fallback
	if data == nil {
		data = []Row{}
	}
	return State{Table: v.table, Data: data, Error: errMsg, IsUsingFallback: true}
}

// set stores st and offers it on Updates, replacing an unread older state.
func (v *View) set(st State) {
	v.mu.Lock()
	v.state = st
	v.mu.Unlock()

	select {
	case v.updates <- st:
		return
	default:
	}
	select {
	case <-v.updates:
	default:
	}
	v.updates <- st
}

// Snapshot returns the current state.
func (v *View) Snapshot() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Updates yields every settled state. Slow readers only see the latest one.
// The channel is closed when the view stops.
func (v *View) Updates() <-chan State {
	return v.updates
}

// Done is closed once the view has stopped.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// Close stops the view and releases its subscription.
func (v *View) Close() {
	v.cancel()
	<-v.done
}
