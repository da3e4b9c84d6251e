// Package pool implements the worker pool dispatcher. A pool lives through
// generations: every Start retires the running generation and opens a new
// one with its own slot count, while executors launched by older
// generations finish on their own and still have their outcome applied.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/queue"
	"github.com/joshu-sajeev/queuectl/internal/worker"
)

const applyTimeout = 10 * time.Second

// JobStore is the part of the record store the dispatcher drives state
// transitions through.
type JobStore interface {
	Claim(ctx context.Context, id string) (bool, error)
	Complete(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, reason string) error
}

// Executor runs one descriptor to completion or exhaustion.
type Executor interface {
	Run(ctx context.Context, d queue.Descriptor) (int, error)
}

// Status is a point-in-time view of the dispatcher.
type Status struct {
	Running    bool
	Generation uint64
	Slots      int
	Active     int
	InFlight   int
	Queued     int
}

type generation struct {
	id       uint64
	slots    int
	active   int
	retired  bool
	stop     chan struct{}
	wake     chan struct{}
	loopDone chan struct{}
	wg       sync.WaitGroup
}

func newGeneration(id uint64, slots int) *generation {
	return &generation{
		id:       id,
		slots:    slots,
		stop:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
		loopDone: make(chan struct{}),
	}
}

// retire must be called with Dispatcher.mu held.
func (g *generation) retire() {
	if !g.retired {
		g.retired = true
		close(g.stop)
	}
}

func (g *generation) signal() {
	select {
	case g.wake <- struct{}{}:
	default:
	}
}

type Dispatcher struct {
	queue    *queue.Queue
	store    JobStore
	executor Executor
	logger   *slog.Logger

	defaultSlots int
	stopTimeout  time.Duration
	retryDelay   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	current  *generation
	last     uint64
	inFlight map[string]struct{}
	parked   map[string][]queue.Descriptor
}

type Option func(*Dispatcher)

// WithDefaultSlots sets the slot count used when Start is given n <= 0.
func WithDefaultSlots(n int) Option {
	return func(p *Dispatcher) {
		if n > 0 {
			p.defaultSlots = n
		}
	}
}

// WithStopTimeout bounds how long Stop waits for running executors before
// detaching from them.
func WithStopTimeout(d time.Duration) Option {
	return func(p *Dispatcher) { p.stopTimeout = d }
}

// WithRetryDelay sets the pause after a failed claim.
func WithRetryDelay(d time.Duration) Option {
	return func(p *Dispatcher) { p.retryDelay = d }
}

func NewDispatcher(q *queue.Queue, store JobStore, executor Executor, logger *slog.Logger, opts ...Option) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Dispatcher{
		queue:        q,
		store:        store,
		executor:     executor,
		logger:       logger,
		defaultSlots: config.DefaultWorkers,
		stopTimeout:  5 * time.Second,
		retryDelay:   time.Second,
		ctx:          ctx,
		cancel:       cancel,
		inFlight:     make(map[string]struct{}),
		parked:       make(map[string][]queue.Descriptor),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start retires the running generation, if any, and opens a new one with n
// slots. It returns the new generation number.
func (p *Dispatcher) Start(n int) (uint64, error) {
	if n <= 0 {
		n = p.defaultSlots
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx.Err() != nil {
		return 0, fmt.Errorf("%w: dispatcher is shut down", common.ErrPoolNotRunning)
	}

	prev := p.current
	if prev != nil {
		prev.retire()
	}

	p.last++
	g := newGeneration(p.last, n)
	p.current = g
	go p.loop(g, prev)

	p.logger.Info("worker pool started",
		slog.Uint64("generation", g.id),
		slog.Int("slots", n),
	)
	return g.id, nil
}

// Stop retires the running generation and waits up to the stop timeout for
// its executors. Executors still running afterwards are detached; their
// results are applied whenever they finish.
func (p *Dispatcher) Stop(ctx context.Context) error {
	p.mu.Lock()
	g := p.current
	if g == nil {
		p.mu.Unlock()
		return common.ErrPoolNotRunning
	}
	g.retire()
	p.current = nil
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		<-g.loopDone
		g.wg.Wait()
		close(drained)
	}()

	timer := time.NewTimer(p.stopTimeout)
	defer timer.Stop()

	select {
	case <-drained:
		p.logger.Info("worker pool stopped", slog.Uint64("generation", g.id))
	case <-timer.C:
		p.logger.Warn("worker pool stop timed out, detaching running jobs",
			slog.Uint64("generation", g.id),
			slog.Duration("waited", p.stopTimeout),
		)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Resize changes the slot count of the running generation. Shrinking never
// cancels running executors; it only delays new dispatches.
func (p *Dispatcher) Resize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: slot count must be positive", common.ErrInvalidConfig)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	g := p.current
	if g == nil {
		return common.ErrPoolNotRunning
	}
	g.slots = n
	g.signal()

	p.logger.Info("worker pool resized",
		slog.Uint64("generation", g.id),
		slog.Int("slots", n),
	)
	return nil
}

func (p *Dispatcher) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Status{
		Generation: p.last,
		InFlight:   len(p.inFlight),
		Queued:     p.queue.Len(),
	}
	if g := p.current; g != nil {
		s.Running = true
		s.Slots = g.slots
		s.Active = g.active
	}
	return s
}

// Shutdown stops the pool and cancels every executor, then waits for them
// until ctx expires. Jobs interrupted this way stay in processing and are
// picked up by recovery on the next start.
func (p *Dispatcher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.current != nil {
		p.current.retire()
		p.current = nil
	}
	p.mu.Unlock()

	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Dispatcher) loop(g *generation, prev *generation) {
	defer close(g.loopDone)

	// One dispatch loop at a time: the new generation takes over the queue
	// only after the old loop has returned.
	if prev != nil {
		select {
		case <-prev.loopDone:
		case <-g.stop:
			return
		}
	}

	for {
		select {
		case <-g.stop:
			return
		case <-p.ctx.Done():
			return
		default:
		}

		d, ok := p.take(g)
		if !ok {
			select {
			case <-p.queue.Ready():
			case <-g.wake:
			case <-g.stop:
				return
			case <-p.ctx.Done():
				return
			}
			continue
		}

		claimed, err := p.store.Claim(p.ctx, d.ID)
		if err != nil {
			p.unreserve(g, d.ID)
			p.queue.PushFront(d)
			p.logger.Error("failed to claim job, will retry",
				slog.String("job_id", d.ID),
				slog.String("error", err.Error()),
			)
			select {
			case <-time.After(p.retryDelay):
			case <-g.stop:
				return
			case <-p.ctx.Done():
				return
			}
			continue
		}
		if !claimed {
			p.logger.Debug("dropping descriptor for unclaimable job", slog.String("job_id", d.ID))
			p.finish(g, d.ID)
			continue
		}

		g.wg.Add(1)
		p.wg.Add(1)
		go p.run(g, d)
	}
}

// take reserves a slot and the job id, then returns the next runnable
// descriptor. Descriptors whose id is already executing are parked until
// that execution ends.
func (p *Dispatcher) take(g *generation) (queue.Descriptor, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if g.retired || g.active >= g.slots {
		return queue.Descriptor{}, false
	}

	for {
		d, ok := p.queue.Dequeue()
		if !ok {
			return queue.Descriptor{}, false
		}
		if _, busy := p.inFlight[d.ID]; busy {
			p.parked[d.ID] = append(p.parked[d.ID], d)
			continue
		}
		p.inFlight[d.ID] = struct{}{}
		g.active++
		return d, true
	}
}

// unreserve undoes take without touching parked descriptors.
func (p *Dispatcher) unreserve(g *generation, id string) {
	p.mu.Lock()
	delete(p.inFlight, id)
	g.active--
	p.mu.Unlock()
}

// finish frees the slot and the id, then requeues anything parked on it.
func (p *Dispatcher) finish(g *generation, id string) {
	p.mu.Lock()
	delete(p.inFlight, id)
	parked := p.parked[id]
	delete(p.parked, id)
	g.active--
	p.mu.Unlock()

	for _, d := range parked {
		p.queue.Enqueue(d)
	}
	g.signal()
}

func (p *Dispatcher) run(g *generation, d queue.Descriptor) {
	defer p.wg.Done()
	defer g.wg.Done()
	defer p.finish(g, d.ID)

	attempts, err := p.executor.Run(p.ctx, d)
	p.apply(d, attempts, err)
}

func (p *Dispatcher) apply(d queue.Descriptor, attempts int, runErr error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), applyTimeout)
	defer cancel()

	log := p.logger.With(slog.String("job_id", d.ID), slog.Int("attempts", attempts))

	switch {
	case runErr == nil:
		if p.complete(log, d.ID) {
			log.Info("job completed")
		}

	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		log.Warn("job interrupted, left for recovery")

	case worker.IsStoreFailure(runErr):
		if err := p.store.Release(ctx, d.ID); err != nil {
			log.Error("failed to release job", slog.String("error", err.Error()))
		}
		d.Attempts = attempts
		p.queue.Enqueue(d)
		log.Warn("job requeued after store failure", slog.String("error", runErr.Error()))

	default:
		if err := p.store.Fail(ctx, d.ID, runErr.Error()); err != nil {
			// attempts are spent, so the requeued descriptor only retries
			// the transition
			d.Attempts = attempts
			p.queue.Enqueue(d)
			log.Error("failed to move job to dlq, requeued", slog.String("error", err.Error()))
			return
		}
		log.Warn("job moved to dlq", slog.String("reason", runErr.Error()))
	}
}

// complete marks a succeeded job completed, retrying the transition while
// the store is unavailable. The command is never run again; the id stays in
// flight until the transition lands or the dispatcher shuts down, in which
// case the job is left processing for recovery.
func (p *Dispatcher) complete(log *slog.Logger, id string) bool {
	for {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), applyTimeout)
		err := p.store.Complete(ctx, id)
		cancel()

		switch {
		case err == nil:
			return true
		case errors.Is(err, common.ErrNotFound):
			log.Error("completed job is no longer processing", slog.String("error", err.Error()))
			return false
		}

		log.Error("failed to mark job completed, will retry", slog.String("error", err.Error()))
		select {
		case <-time.After(p.retryDelay):
		case <-p.ctx.Done():
			log.Warn("shutdown before completion was recorded, left for recovery")
			return false
		}
	}
}
