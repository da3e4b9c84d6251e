// Package worker runs a single job to completion or exhaustion: it records
// each attempt, executes the command and sleeps an exponential backoff
// between failures.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/joshu-sajeev/queuectl/internal/queue"
	"gorm.io/datatypes"
)

// maxBackoff caps a single sleep so large attempt counts cannot overflow
// time.Duration.
const maxBackoff = 24 * time.Hour

// AttemptStore is the part of the record store the executor writes to.
type AttemptStore interface {
	SetAttempts(ctx context.Context, id string, attempts int) error
	SaveResult(ctx context.Context, id string, result datatypes.JSON, errMsg string) error
}

type Executor struct {
	store  AttemptStore
	runner Runner
	logger *slog.Logger
	unit   time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

type Option func(*Executor)

// WithBackoffUnit sets the duration of one base_time unit. Defaults to a
// second.
func WithBackoffUnit(d time.Duration) Option {
	return func(e *Executor) { e.unit = d }
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = fn }
}

func NewExecutor(store AttemptStore, runner Runner, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		store:  store,
		runner: runner,
		logger: logger,
		unit:   time.Second,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes d until it succeeds or its attempts reach MaxRetries. It
// returns the attempt count reached and nil on success. Failure errors wrap
// common.ErrRetriesExhausted or, when an attempt could not be recorded,
// common.ErrStoreUnavailable. Only cancellation of ctx interrupts a
// backoff sleep.
func (e *Executor) Run(ctx context.Context, d queue.Descriptor) (int, error) {
	attempts := d.Attempts
	log := e.logger.With(slog.String("job_id", d.ID))

	for {
		if attempts >= d.MaxRetries {
			return attempts, fmt.Errorf("job %s after %d attempts: %w", d.ID, attempts, common.ErrRetriesExhausted)
		}
		if err := ctx.Err(); err != nil {
			return attempts, err
		}

		attempts++
		if err := e.store.SetAttempts(ctx, d.ID, attempts); err != nil {
			return attempts - 1, fmt.Errorf("record attempt %d of job %s: %w: %w",
				attempts, d.ID, common.ErrStoreUnavailable, err)
		}

		res, runErr := e.runner.Run(ctx, d.Command)
		if runErr != nil && ctx.Err() != nil {
			// killed by shutdown, not a real failure
			return attempts, ctx.Err()
		}
		e.saveResult(ctx, log, d.ID, res, runErr)

		if runErr == nil {
			log.Info("job attempt succeeded",
				slog.Int("attempt", attempts),
				slog.Duration("took", res.Duration),
			)
			return attempts, nil
		}

		if attempts >= d.MaxRetries {
			log.Warn("job attempt failed, no retries left",
				slog.Int("attempt", attempts),
				slog.String("error", runErr.Error()),
			)
			return attempts, fmt.Errorf("job %s after %d attempts: %w: %w",
				d.ID, attempts, common.ErrRetriesExhausted, runErr)
		}

		delay := Backoff(d.BaseTime, attempts, e.unit)
		log.Info("job attempt failed, retrying",
			slog.Int("attempt", attempts),
			slog.Int("max_retries", d.MaxRetries),
			slog.Duration("backoff", delay),
			slog.String("error", runErr.Error()),
		)

		if err := e.sleep(ctx, delay); err != nil {
			return attempts, err
		}
	}
}

func (e *Executor) saveResult(ctx context.Context, log *slog.Logger, id string, res Result, runErr error) {
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}

	payload, err := json.Marshal(dto.AttemptResult{
		ExitCode:   res.ExitCode,
		Output:     res.Output,
		DurationMs: res.Duration.Milliseconds(),
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error("encode attempt result", slog.String("error", err.Error()))
		return
	}

	if err := e.store.SaveResult(ctx, id, datatypes.JSON(payload), errMsg); err != nil {
		log.Warn("failed to save attempt result", slog.String("error", err.Error()))
	}
}

// Backoff returns base^attempt units, capped at maxBackoff.
func Backoff(base, attempt int, unit time.Duration) time.Duration {
	if base < 1 {
		base = 1
	}
	f := math.Pow(float64(base), float64(attempt)) * float64(unit)
	if f >= float64(maxBackoff) || math.IsInf(f, 0) {
		return maxBackoff
	}
	return time.Duration(f)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsStoreFailure reports whether err came from a failed attempt write.
func IsStoreFailure(err error) bool {
	return errors.Is(err, common.ErrStoreUnavailable)
}
