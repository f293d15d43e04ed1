package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"riskview/internal/alerts"
	"riskview/internal/backend"
	"riskview/internal/logger"
	"riskview/internal/metrics"
	"riskview/internal/poller"
	"riskview/internal/projector"
	"riskview/pkg/models"
)

var log = logger.For("view")

// Slice names one independently fetched part of the view.
type Slice string

const (
	SliceEntities      Slice = "entities"
	SliceAlerts        Slice = "alerts"
	SliceThreats       Slice = "threats"
	SliceThreatSummary Slice = "threat_summary"
)

// Slices lists every slice in refresh order.
var Slices = []Slice{SliceEntities, SliceAlerts, SliceThreats, SliceThreatSummary}

var (
	// ErrClosed is returned when refreshing a closed view.
	ErrClosed = errors.New("view closed")
	// ErrStale is returned when a fetch finished after a newer one had already committed.
	ErrStale = errors.New("stale fetch result discarded")
)

// Source fetches raw backend documents. *backend.Client satisfies it.
type Source interface {
	Entities(ctx context.Context) ([]byte, error)
	Alerts(ctx context.Context) ([]byte, error)
	Threats(ctx context.Context) ([]byte, error)
	ThreatSummary(ctx context.Context) ([]byte, error)
}

// EntitySink receives every committed entity slice.
type EntitySink interface {
	WriteEntities(ctx context.Context, entities []models.Entity) error
}

// Status describes the fetch state of a slice.
type Status struct {
	Loading   bool
	Loaded    bool
	Err       error
	UpdatedAt time.Time
}

type sliceState struct {
	Status
	issued    uint64
	committed uint64
}

type localStatus struct {
	status   models.AlertStatus
	assignee string
}

// View holds the projected dashboard data. All methods are safe for
// concurrent use.
type View struct {
	source    Source
	projector *projector.Projector
	sink      EntitySink
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	closed   bool
	states   map[Slice]*sliceState
	entities []models.Entity
	alerts   []models.Alert
	threats  []models.Threat
	summary  models.ThreatSummary
	local    map[string]localStatus
	pollers  *poller.Group
}

// Option configures a View.
type Option func(*View)

// WithEntitySink mirrors committed entities to sink.
func WithEntitySink(sink EntitySink) Option {
	return func(v *View) { v.sink = sink }
}

// WithClock sets the clock used for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *View) { v.now = now }
}

// New creates an open view.
func New(source Source, p *projector.Projector, opts ...Option) *View {
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		source:    source,
		projector: p,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		states:    make(map[Slice]*sliceState, len(Slices)),
		entities:  []models.Entity{},
		alerts:    []models.Alert{},
		threats:   []models.Threat{},
		local:     make(map[string]localStatus),
	}
	for _, s := range Slices {
		v.states[s] = &sliceState{}
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Refresh runs one fetch cycle for slice. The result is committed only if
// the view is still open, ctx is not done and no newer cycle for the same
// slice has committed first.
func (v *View) Refresh(ctx context.Context, slice Slice) error {
	token, err := v.begin(slice)
	if err != nil {
		return err
	}

	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(v.ctx, cancel)
	defer stop()

	start := time.Now()
	apply, records, fetchErr := v.fetch(fctx, slice)
	metrics.FetchDuration.WithLabelValues(string(slice)).Observe(time.Since(start).Seconds())

	committed, err := v.finish(fctx, slice, token, apply, fetchErr)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues(string(slice), outcome(err)).Inc()
		return err
	}
	metrics.FetchesTotal.WithLabelValues(string(slice), "committed").Inc()
	metrics.SliceRecords.WithLabelValues(string(slice)).Set(float64(records))
	metrics.LastCommitTimestamp.WithLabelValues(string(slice)).Set(float64(v.now().Unix()))

	if slice == SliceEntities {
		v.observeEntities(fctx, committed)
	}
	return nil
}

// RefreshAll refreshes every slice concurrently and joins their errors.
func (v *View) RefreshAll(ctx context.Context) error {
	errs := make([]error, len(Slices))
	var g errgroup.Group
	for i, s := range Slices {
		g.Go(func() error {
			errs[i] = v.Refresh(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// StartPolling refreshes every slice once per interval until Close.
func (v *View) StartPolling(interval time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if v.pollers != nil {
		return nil
	}
	v.pollers = poller.NewGroup(v.ctx)
	for _, s := range Slices {
		v.pollers.Go(string(s), interval, func(ctx context.Context) error {
			err := v.Refresh(ctx, s)
			if errors.Is(err, ErrStale) || errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		})
	}
	return nil
}

// Close cancels in-flight fetches, stops pollers and discards any result
// that completes afterwards.
func (v *View) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	pollers := v.pollers
	v.mu.Unlock()

	v.cancel()
	if pollers != nil {
		return pollers.Stop()
	}
	return nil
}

func (v *View) begin(slice Slice) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return 0, ErrClosed
	}
	st, ok := v.states[slice]
	if !ok {
		return 0, fmt.Errorf("unknown slice %q", slice)
	}
	st.issued++
	st.Loading = true
	return st.issued, nil
}

// fetch loads and projects one slice. The returned apply func installs the
// projected data and must be called with mu held.
func (v *View) fetch(ctx context.Context, slice Slice) (func() any, int, error) {
	switch slice {
	case SliceEntities:
		raw, err := v.source.Entities(ctx)
		if err != nil {
			return nil, 0, err
		}
		items, err := v.projector.Entities(raw)
		if err != nil {
			return nil, 0, err
		}
		return func() any {
			v.entities = items
			return cloneSlice(items)
		}, len(items), nil
	case SliceAlerts:
		raw, err := v.source.Alerts(ctx)
		if err != nil {
			return nil, 0, err
		}
		items, err := v.projector.Alerts(raw)
		if err != nil {
			return nil, 0, err
		}
		return func() any {
			v.alerts = v.overlayLocal(items)
			return nil
		}, len(items), nil
	case SliceThreats:
		raw, err := v.source.Threats(ctx)
		if err != nil {
			return nil, 0, err
		}
		items, err := v.projector.Threats(raw)
		if err != nil {
			return nil, 0, err
		}
		return func() any {
			v.threats = items
			return nil
		}, len(items), nil
	case SliceThreatSummary:
		raw, err := v.source.ThreatSummary(ctx)
		if err != nil {
			return nil, 0, err
		}
		summary, err := v.projector.ThreatSummary(raw)
		if err != nil {
			return nil, 0, err
		}
		return func() any {
			v.summary = summary
			return nil
		}, 1, nil
	}
	return nil, 0, fmt.Errorf("unknown slice %q", slice)
}

func (v *View) finish(ctx context.Context, slice Slice, token uint64, apply func() any, fetchErr error) (any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := v.states[slice]
	if v.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		if token == st.issued {
			st.Loading = false
		}
		return nil, err
	}
	if token < st.committed {
		log.Debugf("%s: discarding fetch %d, %d already committed", slice, token, st.committed)
		return nil, ErrStale
	}

	st.committed = token
	if token == st.issued {
		st.Loading = false
	}
	if fetchErr != nil {
		st.Err = fetchErr
		log.Warnf("%s: %v", slice, fetchErr)
		return nil, fetchErr
	}

	committed := apply()
	st.Err = nil
	st.Loaded = true
	st.UpdatedAt = v.now()
	return committed, nil
}

func (v *View) observeEntities(ctx context.Context, committed any) {
	entities, _ := committed.([]models.Entity)
	stats := projector.EntityBandStats(entities)
	for _, b := range models.Bands {
		metrics.EntitiesByBand.WithLabelValues(string(b)).Set(float64(stats.Count(b)))
	}
	if v.sink == nil {
		return
	}
	if err := v.sink.WriteEntities(ctx, entities); err != nil {
		log.Warnf("mirror entities: %v", err)
	}
}

// statusRank orders alert statuses by triage progress.
var statusRank = map[models.AlertStatus]int{
	models.AlertNew:           0,
	models.AlertAcknowledged:  1,
	models.AlertInvestigating: 2,
	models.AlertResolved:      3,
}

// overlayLocal reapplies local triage actions to a freshly fetched alert
// list. The further-progressed of the local and backend status wins; once
// the backend has caught up the local entry is dropped. Must be called with
// mu held.
func (v *View) overlayLocal(items []models.Alert) []models.Alert {
	if len(v.local) == 0 {
		return items
	}
	keep := make(map[string]struct{}, len(v.local))
	for i := range items {
		ls, ok := v.local[items[i].ID]
		if !ok || statusRank[items[i].Status] >= statusRank[ls.status] {
			continue
		}
		keep[items[i].ID] = struct{}{}
		items[i].Status = ls.status
		if ls.assignee != "" {
			items[i].AssignedTo = ls.assignee
		}
	}
	for id := range v.local {
		if _, ok := keep[id]; !ok {
			delete(v.local, id)
		}
	}
	return items
}

// Acknowledge moves a new alert to acknowledged and records assignee.
func (v *View) Acknowledge(id, assignee string) (models.Alert, bool, error) {
	return v.act(id, alerts.ActionAcknowledge, assignee)
}

// Resolve moves an open alert to resolved.
func (v *View) Resolve(id string) (models.Alert, bool, error) {
	return v.act(id, alerts.ActionResolve, "")
}

func (v *View) act(id string, action alerts.Action, assignee string) (models.Alert, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	next, changed, err := alerts.Apply(v.alerts, id, action, assignee)
	if err != nil {
		return models.Alert{}, false, err
	}
	metrics.AlertActionsTotal.WithLabelValues(string(action), strconv.FormatBool(changed)).Inc()
	v.alerts = next

	var got models.Alert
	for _, a := range next {
		if a.ID == id {
			got = a
			break
		}
	}
	if changed {
		v.local[id] = localStatus{status: got.Status, assignee: got.AssignedTo}
		log.Infof("alert %s %s", id, got.Status)
	}
	return got, changed, nil
}

// Status returns the fetch state of slice.
func (v *View) Status(slice Slice) Status {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if st, ok := v.states[slice]; ok {
		return st.Status
	}
	return Status{}
}

// Entities returns a copy of the entity slice and its status.
func (v *View) Entities() ([]models.Entity, Status) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneSlice(v.entities), v.states[SliceEntities].Status
}

// Alerts returns a copy of the alert slice and its status.
func (v *View) Alerts() ([]models.Alert, Status) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneSlice(v.alerts), v.states[SliceAlerts].Status
}

// Threats returns a copy of the threat slice and its status.
func (v *View) Threats() ([]models.Threat, Status) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneSlice(v.threats), v.states[SliceThreats].Status
}

// ThreatSummary returns the current threat summary and its status.
func (v *View) ThreatSummary() (models.ThreatSummary, Status) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.summary, v.states[SliceThreatSummary].Status
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func outcome(err error) string {
	var netErr *backend.NetworkError
	var mapErr *projector.MappingError
	switch {
	case errors.Is(err, ErrStale):
		return "stale"
	case errors.Is(err, ErrClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "discarded"
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &mapErr):
		return "mapping_error"
	}
	return "error"
}
