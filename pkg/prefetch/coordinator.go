package prefetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quickload/quickload/pkg/buffer"
	"github.com/quickload/quickload/pkg/events"
	"github.com/quickload/quickload/pkg/fetcher"
	"github.com/quickload/quickload/pkg/paginator"
	"github.com/quickload/quickload/pkg/query"
)

// Prometheus metrics for coordinator operations.
var (
	bufferItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quickload_buffer_items",
		Help: "Items currently buffered and undelivered",
	})

	itemsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickload_items_delivered_total",
		Help: "Total items delivered to callers",
	})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickload_requests_total",
		Help: "Total Request calls by serving path",
	}, []string{"path"})

	backgroundFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickload_background_fetches_total",
		Help: "Opportunistic background fetches started after a drain",
	})
)

// DefaultLowWater is the buffer size below which a background fetch is
// triggered after satisfying a request from the buffer.
const DefaultLowWater = 20

// Config holds the coordinator configuration. Only Endpoint is required.
type Config struct {
	// Endpoint is the item service URL (required).
	Endpoint string

	// LowWater is the low-item threshold (default 20).
	LowWater int

	// Query holds static query parameters sent with every fetch.
	Query query.Params

	// PageSize is the per-fetch batch size for the default offset
	// paginator (default 50). Ignored when Advance is set.
	PageSize int

	// InitialState overrides the starting pagination parameters.
	InitialState paginator.State

	// Advance overrides the pagination advancement policy. It must be a
	// pure function of the current state.
	Advance paginator.AdvanceFunc

	// Extract overrides the response item extractor.
	Extract fetcher.ExtractFunc

	// Exhausted overrides the response exhaustion predicate.
	Exhausted fetcher.ExhaustedFunc

	// Client is the HTTP transport used for fetches.
	Client fetcher.Doer

	// Events overrides the event namespace and names.
	Events events.Names

	// Emitter receives lifecycle events (default: discard).
	Emitter events.Emitter

	// Logger for coordinator diagnostics.
	Logger zerolog.Logger
}

// DefaultConfig returns a safe default configuration for the endpoint.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint: endpoint,
		LowWater: DefaultLowWater,
		PageSize: paginator.DefaultPageSize,
		Events:   events.DefaultNames(),
		Logger:   log.With().Str("component", "prefetch").Logger(),
	}
}

// operation is the single in-flight fetch slot. Waiters block on done and
// re-evaluate their request once the operation settles.
type operation struct {
	done chan struct{}
}

// Coordinator owns the item buffer and the single in-flight fetch slot.
// It decides when and how many fetches are needed to satisfy a request,
// serializes concurrent callers through the in-flight fetch, and emits
// lifecycle notifications.
type Coordinator struct {
	exec     *fetcher.Executor
	advance  paginator.AdvanceFunc
	emitter  events.Emitter
	names    events.Names
	logger   zerolog.Logger
	lowWater int

	mu       sync.Mutex
	buf      *buffer.Buffer
	state    paginator.State
	inflight *operation
}

// New creates a coordinator. Construction fails synchronously when the
// endpoint is missing; no partial coordinator is returned.
func New(cfg Config) (*Coordinator, error) {
	if cfg.LowWater == 0 {
		cfg.LowWater = DefaultLowWater
	}
	if cfg.Emitter == nil {
		cfg.Emitter = events.Nop{}
	}

	advance := cfg.Advance
	state := cfg.InitialState
	if advance == nil {
		offset := paginator.NewOffset(cfg.PageSize)
		advance = offset.Advance
		if state.Len() == 0 {
			state = offset.InitialState()
		}
	}

	exec, err := fetcher.New(fetcher.Config{
		Endpoint:  cfg.Endpoint,
		Query:     cfg.Query,
		Client:    cfg.Client,
		Extract:   cfg.Extract,
		Exhausted: cfg.Exhausted,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create fetch executor: %w", err)
	}

	return &Coordinator{
		exec:     exec,
		advance:  advance,
		emitter:  cfg.Emitter,
		names:    cfg.Events.Merge(events.DefaultNames()),
		logger:   cfg.Logger,
		lowWater: cfg.LowWater,
		buf:      buffer.New(),
		state:    state,
	}, nil
}

// Request returns up to n items, fetching from the item service as needed.
// Concurrent calls coalesce onto the single in-flight fetch: while one is
// outstanding no additional fetch is issued, and every waiter re-evaluates
// its request once the fetch settles.
//
// The result holds exactly n items unless the service exhausts first, in
// which case whatever accumulated is returned. A fetch failure fails the
// call; no partial result is reported as success.
func (c *Coordinator) Request(ctx context.Context, n int) ([]buffer.Item, error) {
	if n < 0 {
		return nil, fmt.Errorf("item count must be non-negative (got %d)", n)
	}
	if n == 0 {
		return []buffer.Item{}, nil
	}

	for {
		c.mu.Lock()

		if op := c.inflight; op != nil {
			c.mu.Unlock()
			requestsTotal.WithLabelValues("wait").Inc()
			select {
			case <-op.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		if c.buf.Len() >= n {
			items := c.buf.PopN(n)
			var op *operation
			if c.buf.Len() < c.lowWater {
				op = c.begin()
			}
			buffered := c.buf.Len()
			c.mu.Unlock()

			requestsTotal.WithLabelValues("drain").Inc()
			itemsDelivered.Add(float64(len(items)))
			bufferItems.Set(float64(buffered))

			if op != nil {
				backgroundFetches.Inc()
				go c.backgroundFetch(op)
			}

			c.logger.Debug().
				Int("requested", n).
				Int("buffered", buffered).
				Bool("background_fetch", op != nil).
				Msg("Request served from buffer")
			return items, nil
		}

		op := c.begin()
		c.mu.Unlock()
		requestsTotal.WithLabelValues("fetch").Inc()
		return c.fetchChain(ctx, op, n)
	}
}

// emit resolves a kind to its configured name and hands it to the emitter.
func (c *Coordinator) emit(ctx context.Context, kind events.Kind) {
	c.emitter.Emit(ctx, c.names.For(kind))
}

// begin claims the in-flight slot. Caller must hold c.mu.
func (c *Coordinator) begin() *operation {
	op := &operation{done: make(chan struct{})}
	c.inflight = op
	return op
}

// settle releases the in-flight slot and wakes all waiters. Caller must
// hold c.mu; the slot is cleared exactly once per operation.
func (c *Coordinator) settle(op *operation) {
	c.inflight = nil
	close(op.done)
}

// fetchChain issues fetches until the buffer can satisfy n items or the
// service exhausts, advancing pagination state only after each success.
func (c *Coordinator) fetchChain(ctx context.Context, op *operation, n int) ([]buffer.Item, error) {
	c.emit(ctx, events.LoadStarted)

	fetches := 0
	for {
		c.mu.Lock()
		state := c.state.Clone()
		c.mu.Unlock()

		page, err := c.exec.Fetch(ctx, state)
		fetches++
		if err != nil {
			c.mu.Lock()
			c.settle(op)
			c.mu.Unlock()

			c.emit(ctx, events.LoadFinished)
			c.emit(ctx, events.Error)

			c.logger.Error().
				Err(err).
				Int("requested", n).
				Int("fetches", fetches).
				Msg("Fetch chain failed")
			return nil, err
		}

		exhausted := page.Exhausted
		if len(page.Items) == 0 && !exhausted {
			// A zero-item page without the exhaustion flag would loop
			// forever; treat it as exhaustion.
			c.logger.Warn().Msg("Zero-item page without exhaustion flag, treating as exhausted")
			exhausted = true
		}

		c.mu.Lock()
		c.buf.Append(page.Items...)
		c.state = c.advance(c.state)
		done := exhausted || c.buf.Len() >= n

		var items []buffer.Item
		if done {
			items = c.buf.PopN(n)
			c.settle(op)
		}
		buffered := c.buf.Len()
		c.mu.Unlock()

		bufferItems.Set(float64(buffered))

		if exhausted {
			c.emit(ctx, events.Exhausted)
		}

		if done {
			itemsDelivered.Add(float64(len(items)))
			c.emit(ctx, events.LoadFinished)

			c.logger.Debug().
				Int("requested", n).
				Int("delivered", len(items)).
				Int("buffered", buffered).
				Int("fetches", fetches).
				Bool("exhausted", exhausted).
				Msg("Fetch chain complete")
			return items, nil
		}
	}
}

// backgroundFetch replenishes the buffer with a single fetch after a drain
// left it below the low-item threshold. No caller waits on it and no
// load-started/load-finished events are emitted for it.
func (c *Coordinator) backgroundFetch(op *operation) {
	ctx := context.Background()

	c.mu.Lock()
	state := c.state.Clone()
	c.mu.Unlock()

	page, err := c.exec.Fetch(ctx, state)
	if err != nil {
		c.mu.Lock()
		c.settle(op)
		c.mu.Unlock()

		c.logger.Warn().Err(err).Msg("Background fetch failed")
		return
	}

	exhausted := page.Exhausted
	if len(page.Items) == 0 && !exhausted {
		exhausted = true
	}

	c.mu.Lock()
	c.buf.Append(page.Items...)
	c.state = c.advance(c.state)
	c.settle(op)
	buffered := c.buf.Len()
	c.mu.Unlock()

	bufferItems.Set(float64(buffered))

	if exhausted {
		c.emit(ctx, events.Exhausted)
	}

	c.logger.Debug().
		Int("items", len(page.Items)).
		Int("buffered", buffered).
		Bool("exhausted", exhausted).
		Msg("Background fetch complete")
}

// Buffered returns the number of undelivered items currently held.
func (c *Coordinator) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// Items returns a read-only copy of the internal buffer.
func (c *Coordinator) Items() []buffer.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Items()
}

// State returns a copy of the current pagination state.
func (c *Coordinator) State() paginator.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// URL returns the request URL the next fetch would use.
func (c *Coordinator) URL() string {
	c.mu.Lock()
	state := c.state.Clone()
	c.mu.Unlock()
	return c.exec.URL(state)
}
