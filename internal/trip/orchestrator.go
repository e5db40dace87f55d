package trip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/i474232898/road-trip-weather/internal/observability"
	"github.com/i474232898/road-trip-weather/internal/weather"
)

// Gateway performs one location+time weather lookup.
type Gateway interface {
	Lookup(ctx context.Context, q weather.Query) (weather.Report, error)
}

// Phase is the orchestrator's position in the batch lifecycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDispatching Phase = "dispatching"
	PhaseSettling    Phase = "settling"
)

// Options configures an Orchestrator.
type Options struct {
	// LookupTimeout bounds each lookup. Zero means no per-lookup deadline.
	LookupTimeout time.Duration
	Logger        *slog.Logger
	Metrics       *observability.Metrics
}

// State is the observable state consumed by the presentation layer.
type State struct {
	Modality        Modality        `json:"modality"`
	Entries         []QueryEntry    `json:"entries"`
	Results         []WeatherSample `json:"results"`
	Loading         bool            `json:"loading"`
	Phase           Phase           `json:"phase"`
	SelectedEntryID *int            `json:"selectedEntryId"`
	BatchID         string          `json:"batchId,omitempty"`
}

// Orchestrator drives one surface's entries through validation, concurrent
// lookup and result publication. All methods are safe for concurrent use.
type Orchestrator struct {
	gateway       Gateway
	lookupTimeout time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics

	mu       sync.Mutex
	registry *Registry
	phase    Phase
	loading  bool
	results  []WeatherSample
	current  *Batch
	lastID   string
	closed   bool
}

// NewOrchestrator creates an orchestrator for the given surface.
func NewOrchestrator(m Modality, gateway Gateway, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewUnregistered()
	}
	return &Orchestrator{
		gateway:       gateway,
		lookupTimeout: opts.LookupTimeout,
		logger:        opts.Logger.With("modality", string(m)),
		metrics:       opts.Metrics,
		registry:      NewRegistry(m),
		phase:         PhaseIdle,
	}
}

func (o *Orchestrator) Modality() Modality {
	return o.registry.Modality()
}

// AddEntry appends a new entry.
func (o *Orchestrator) AddEntry(in EntryInput) (QueryEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return QueryEntry{}, ErrClosed
	}
	return o.registry.Add(in)
}

// UpdateEntry replaces one field of an entry. In-flight batches are unaffected.
func (o *Orchestrator) UpdateEntry(id int, field Field, value string) (QueryEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return QueryEntry{}, ErrClosed
	}
	return o.registry.Update(id, field, value)
}

// RemoveEntry deletes an entry. In-flight batches are unaffected.
func (o *Orchestrator) RemoveEntry(id int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	return o.registry.Remove(id)
}

func (o *Orchestrator) SelectEntry(id int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	return o.registry.Select(id)
}

func (o *Orchestrator) ClearSelection() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.registry.ClearSelection()
}

func (o *Orchestrator) Entries() []QueryEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.registry.Entries()
}

// Loading reports whether a batch is between acceptance and publication.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Results returns the published results of the last settled batch.
func (o *Orchestrator) Results() []WeatherSample {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]WeatherSample(nil), o.results...)
}

// State returns a consistent copy of the observable state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := State{
		Modality: o.registry.Modality(),
		Entries:  o.registry.Entries(),
		Results:  append([]WeatherSample{}, o.results...),
		Loading:  o.loading,
		Phase:    o.phase,
		BatchID:  o.lastID,
	}
	if id, ok := o.registry.Selected(); ok {
		s.SelectedEntryID = &id
	}
	return s
}

// Submit validates the current entries and, if any are eligible, starts a
// batch that looks each of them up concurrently. It returns as soon as the
// batch is dispatched. The batch outlives ctx's cancellation; use Close to
// abandon it.
func (o *Orchestrator) Submit(ctx context.Context) (*Batch, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, ErrClosed
	}
	if o.current != nil {
		o.metrics.Batches.WithLabelValues("busy").Inc()
		return nil, fmt.Errorf("%w: %s", ErrBatchInFlight, o.current.ID)
	}

	snapshot, err := Validate(o.registry.Modality(), o.registry.Entries())
	if err != nil {
		o.metrics.Batches.WithLabelValues("rejected").Inc()
		o.logger.Info("batch rejected", "entries", o.registry.Len(), "error", err)
		return nil, err
	}

	bctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b := &Batch{
		ID:        ulid.Make().String(),
		StartedAt: time.Now(),
		snapshot:  snapshot,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	o.current = b
	o.lastID = b.ID
	o.phase = PhaseDispatching
	o.loading = true
	o.results = nil

	o.metrics.Batches.WithLabelValues("accepted").Inc()
	o.metrics.BatchesInFlight.Inc()
	o.metrics.BatchSize.Observe(float64(len(snapshot)))
	o.logger.Info("batch dispatched", "batch_id", b.ID, "entries", len(snapshot))

	go o.run(bctx, b)

	return b, nil
}

// Close abandons any in-flight batch; its results are discarded when they
// arrive. Further mutations and submissions return ErrClosed.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	if o.current != nil {
		o.logger.Info("abandoning in-flight batch", "batch_id", o.current.ID)
		o.current.cancel()
		o.current = nil
		o.loading = false
		o.phase = PhaseIdle
	}
}

type lookupOutcome struct {
	report weather.Report
	err    error
}

func (o *Orchestrator) run(ctx context.Context, b *Batch) {
	defer b.cancel()

	// Each lookup owns one slot; nothing else is shared until settle.
	outcomes := make([]lookupOutcome, len(b.snapshot))

	var wg sync.WaitGroup
	for i, e := range b.snapshot {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = o.lookup(ctx, e)
		}()
	}
	wg.Wait()

	o.settle(b, outcomes)
}

func (o *Orchestrator) lookup(ctx context.Context, e QueryEntry) (out lookupOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = lookupOutcome{err: fmt.Errorf("%w: gateway panic: %v", weather.ErrLookupFailed, r)}
		}
	}()

	if o.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.lookupTimeout)
		defer cancel()
	}

	report, err := o.gateway.Lookup(ctx, e.Query())
	return lookupOutcome{report: report, err: err}
}

// settle is the only place batch outcomes reach shared state.
func (o *Orchestrator) settle(b *Batch, outcomes []lookupOutcome) {
	o.mu.Lock()
	if o.current == b {
		o.phase = PhaseSettling
	}
	o.mu.Unlock()

	var (
		samples []WeatherSample
		failed  []int
	)
	for i, oc := range outcomes {
		e := b.snapshot[i]
		if oc.err != nil {
			o.metrics.Lookups.WithLabelValues("failure").Inc()
			o.logger.Warn("lookup failed",
				"batch_id", b.ID,
				"entry_id", e.ID,
				"location", e.LocationLabel(),
				"time", e.TimeValue,
				"error", oc.err,
			)
			failed = append(failed, e.ID)
			continue
		}
		o.metrics.Lookups.WithLabelValues("success").Inc()
		samples = append(samples, newSample(e, oc.report))
	}
	samples = Project(b.snapshot, samples)

	o.mu.Lock()
	defer o.mu.Unlock()

	b.results = samples
	b.failed = failed
	o.metrics.BatchesInFlight.Dec()
	o.metrics.BatchDuration.Observe(time.Since(b.StartedAt).Seconds())

	if o.current != b {
		b.discarded = true
		o.logger.Info("discarding results of abandoned batch", "batch_id", b.ID)
		close(b.done)
		return
	}

	o.results = samples
	o.loading = false
	o.current = nil
	o.phase = PhaseIdle

	o.logger.Info("batch settled",
		"batch_id", b.ID,
		"entries", len(b.snapshot),
		"succeeded", len(samples),
		"failed", len(failed),
	)
	close(b.done)
}

// Batch is the handle of one accepted submission.
type Batch struct {
	ID        string
	StartedAt time.Time

	snapshot []QueryEntry
	cancel   context.CancelFunc
	done     chan struct{}

	// written once before done is closed
	results   []WeatherSample
	failed    []int
	discarded bool
}

// Entries returns the immutable snapshot the batch was dispatched for.
func (b *Batch) Entries() []QueryEntry {
	out := make([]QueryEntry, len(b.snapshot))
	for i, e := range b.snapshot {
		out[i] = e.clone()
	}
	return out
}

// Done is closed once every lookup of the batch has resolved and the outcome
// has been published or discarded.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the batch settles or ctx is done.
func (b *Batch) Wait(ctx context.Context) ([]WeatherSample, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.done:
		return append([]WeatherSample(nil), b.results...), nil
	}
}

// Failed lists the entry ids whose lookup failed. Valid once Done is closed.
func (b *Batch) Failed() []int {
	<-b.done
	return append([]int(nil), b.failed...)
}

// Discarded reports whether the batch was abandoned before it settled.
// Valid once Done is closed.
func (b *Batch) Discarded() bool {
	<-b.done
	return b.discarded
}
