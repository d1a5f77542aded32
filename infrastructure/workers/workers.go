// Package workers runs a fixed-size pool of goroutines that pull jobs
// from a Processor. Polling is adaptive: workers poll fast while work is
// flowing and back off to an idle interval when the processor reports
// nothing to do.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jrazmi/taskhub/sdk/environment"
)

var (
	ErrWorkerShutdown  = errors.New("worker should shutdown")
	ErrPoolShutdown    = errors.New("pool should shutdown")
	ErrNoWorkAvailable = errors.New("no work available")
)

// Options is the environment-driven pool configuration.
type Options struct {
	Name         string        `env:"WORKER_NAME" default:"worker"`
	WorkerCount  int           `env:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" default:"5s"`
	IdleInterval time.Duration `env:"WORKER_IDLE_INTERVAL" default:"1m"`
	MaxRetries   int           `env:"WORKER_MAX_RETRIES" default:"3"`
}

type options struct {
	name         string
	workerCount  int
	pollInterval time.Duration
	idleInterval time.Duration
	maxRetries   int
	middlewares  []Middleware
	logger       *slog.Logger
}

type Option func(*options)

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithWorkerCount(count int) Option {
	return func(o *options) {
		o.workerCount = count
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		o.pollInterval = interval
	}
}

func WithIdleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.idleInterval = interval
	}
}

func WithMaxRetries(maxRetries int) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMiddleware(middlewares ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

// Pool runs jobs from a Processor across a fixed number of workers.
type Pool[J Job] struct {
	processor    Processor[J]
	name         string
	workerCount  int
	pollInterval time.Duration
	idleInterval time.Duration
	maxRetries   int
	log          *slog.Logger

	workFunc    WorkFunc
	middlewares []Middleware
	metrics     counters

	ctx       context.Context
	cancel    context.CancelFunc
	workers   sync.WaitGroup
	runMutex  sync.Mutex
	running   bool
	startTime time.Time
}

// NewPoolFromEnv builds a pool configured from prefixed environment
// variables.
func NewPoolFromEnv[J Job](prefix string, processor Processor[J], opts ...Option) (*Pool[J], error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing worker config: %w", err)
	}
	return newPool(processor, cfg, opts...)
}

// NewPool builds a pool with the given name and worker count.
func NewPool[J Job](name string, workerCount int, processor Processor[J], opts ...Option) (*Pool[J], error) {
	cfg := Options{
		Name:         name,
		WorkerCount:  workerCount,
		PollInterval: time.Second,
		IdleInterval: time.Minute,
		MaxRetries:   3,
	}
	return newPool(processor, cfg, opts...)
}

func newPool[J Job](processor Processor[J], cfg Options, opts ...Option) (*Pool[J], error) {
	o := &options{
		name:         cfg.Name,
		workerCount:  cfg.WorkerCount,
		pollInterval: cfg.PollInterval,
		idleInterval: cfg.IdleInterval,
		maxRetries:   cfg.MaxRetries,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.workerCount <= 0 {
		o.workerCount = 1
	}
	if o.pollInterval <= 0 {
		o.pollInterval = 5 * time.Second
	}
	if o.idleInterval <= 0 {
		o.idleInterval = time.Minute
	}

	p := &Pool[J]{
		processor:    processor,
		name:         o.name,
		workerCount:  o.workerCount,
		pollInterval: o.pollInterval,
		idleInterval: o.idleInterval,
		maxRetries:   o.maxRetries,
		log:          o.logger,
		middlewares:  o.middlewares,
	}
	p.buildChain()

	return p, nil
}

// Start runs the workers until the context is canceled or Stop is called.
func (p *Pool[J]) Start(ctx context.Context) error {
	p.runMutex.Lock()
	if p.running {
		p.runMutex.Unlock()
		return fmt.Errorf("pool %s already running", p.name)
	}
	p.startTime = time.Now()
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.runMutex.Unlock()

	p.log.InfoContext(ctx, "starting worker pool",
		"name", p.name,
		"worker_count", p.workerCount,
		"poll_interval", p.pollInterval,
		"idle_interval", p.idleInterval,
	)

	for i := 0; i < p.workerCount; i++ {
		workerID := fmt.Sprintf("%s-worker-%d", p.name, i+1)
		p.workers.Add(1)
		go p.worker(workerID)
	}
	p.workers.Wait()

	p.runMutex.Lock()
	p.running = false
	p.runMutex.Unlock()

	p.log.InfoContext(ctx, "worker pool stopped",
		"name", p.name,
		"total_runtime", time.Since(p.startTime),
	)
	return nil
}

// Stop cancels the workers. It is safe to call more than once.
func (p *Pool[J]) Stop() {
	p.runMutex.Lock()
	defer p.runMutex.Unlock()

	if !p.running {
		return
	}
	p.log.Info("stopping worker pool", "name", p.name)
	p.cancel()
}

// Metrics returns a snapshot of the pool counters.
func (p *Pool[J]) Metrics() Snapshot {
	return p.metrics.snapshot()
}

func (p *Pool[J]) worker(workerID string) {
	defer p.workers.Done()

	p.metrics.workersActive.Add(1)
	defer p.metrics.workersActive.Add(-1)

	p.log.Info("worker started", "worker_id", workerID, "pool", p.name)
	defer p.log.Info("worker stopped", "worker_id", workerID, "pool", p.name)

	// Start eagerly, then settle on the poll or idle interval.
	currentInterval := time.Millisecond
	ticker := time.NewTicker(currentInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return

		case <-ticker.C:
			err := p.runGuarded(p.ctx, workerID)

			newInterval := p.pollInterval
			switch {
			case err == nil:

			case errors.Is(err, ErrWorkerShutdown):
				p.log.Info("worker shutting down as requested", "worker_id", workerID)
				return

			case errors.Is(err, ErrPoolShutdown):
				p.log.Error("worker requested pool shutdown", "worker_id", workerID, "error", err)
				p.cancel()
				return

			case errors.Is(err, ErrNoWorkAvailable):
				newInterval = p.idleInterval

			default:
				p.log.Error("work cycle error", "worker_id", workerID, "error", err)
			}

			if newInterval != currentInterval {
				currentInterval = newInterval
				ticker.Reset(newInterval)
			}
		}
	}
}

// runGuarded keeps a panicking job from taking the worker down.
func (p *Pool[J]) runGuarded(ctx context.Context, workerID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.workerPanics.Add(1)
			p.log.Error("panic recovered in worker",
				"worker_id", workerID,
				"panic", r,
				"stack_trace", string(debug.Stack()),
			)
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	return p.workFunc(ctx, workerID)
}

// work runs one checkout-process-settle cycle.
func (p *Pool[J]) work(ctx context.Context, workerID string) error {
	job, err := p.processor.Checkout(ctx, workerID)
	if err != nil {
		p.metrics.checkoutErrors.Add(1)
		if errors.Is(err, ErrNoWorkAvailable) {
			return err
		}
		return fmt.Errorf("checkout failed: %w", err)
	}
	p.metrics.jobsCheckedOut.Add(1)

	start := time.Now()
	processed, processErr := p.processWithRetry(ctx, job)
	elapsed := time.Since(start)
	p.metrics.recordDuration(elapsed)

	if processErr != nil {
		p.metrics.jobsFailed.Add(1)
		if failErr := p.processor.Fail(ctx, job, processErr); failErr != nil {
			p.log.Error("failed to settle failed job",
				"job_id", job.JobID(),
				"error", failErr,
			)
		}
		return fmt.Errorf("job %s: %w", job.JobID(), processErr)
	}

	p.metrics.jobsCompleted.Add(1)
	if completeErr := p.processor.Complete(ctx, processed, int(elapsed.Milliseconds())); completeErr != nil {
		p.log.Error("failed to settle completed job",
			"job_id", job.JobID(),
			"error", completeErr,
		)
	}

	p.log.InfoContext(ctx, "job completed",
		"worker_id", workerID,
		"job_id", job.JobID(),
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}

func (p *Pool[J]) processWithRetry(ctx context.Context, job J) (J, error) {
	maxAttempts := p.maxRetries
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var processed J
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			p.metrics.retryAttempts.Add(1)

			// Exponential backoff from one second.
			delay := time.Second << (attempt - 2)
			select {
			case <-ctx.Done():
				return processed, ctx.Err()
			case <-time.After(delay):
			}
		}

		processed, lastErr = p.processor.Process(ctx, job)
		if lastErr == nil {
			return processed, nil
		}
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		p.log.Error("job attempt failed",
			"job_id", job.JobID(),
			"attempt", attempt,
			"error", lastErr,
		)
	}

	return processed, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
