package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type attemptStoreMock struct {
	mock.Mock
}

func (m *attemptStoreMock) SetAttempts(ctx context.Context, id string, attempts int) error {
	args := m.Called(ctx, id, attempts)
	return args.Error(0)
}

func (m *attemptStoreMock) SaveResult(ctx context.Context, id string, result datatypes.JSON, errMsg string) error {
	args := m.Called(ctx, id, result, errMsg)
	return args.Error(0)
}

// scriptedRunner fails the first `failures` calls and succeeds afterwards.
type scriptedRunner struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (r *scriptedRunner) Run(ctx context.Context, command string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failures {
		return Result{ExitCode: 1, Output: "nope"}, fmt.Errorf("%w: exit status 1", common.ErrCommandFailed)
	}
	return Result{Output: "ok"}, nil
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func newStoreMock() *attemptStoreMock {
	m := new(attemptStoreMock)
	m.On("SaveResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

func TestExecutor_Run(t *testing.T) {
	tests := []struct {
		name         string
		desc         queue.Descriptor
		failures     int
		wantAttempts int
		wantErr      error
		wantCalls    int
		wantDelays   []time.Duration
	}{
		{
			name:         "succeeds first time",
			desc:         queue.Descriptor{ID: "a", Command: "true", MaxRetries: 3, BaseTime: 2},
			failures:     0,
			wantAttempts: 1,
			wantCalls:    1,
			wantDelays:   nil,
		},
		{
			name:         "succeeds on second attempt",
			desc:         queue.Descriptor{ID: "b", Command: "flaky", MaxRetries: 3, BaseTime: 2},
			failures:     1,
			wantAttempts: 2,
			wantCalls:    2,
			wantDelays:   []time.Duration{2 * time.Second},
		},
		{
			name:         "always fails with three retries",
			desc:         queue.Descriptor{ID: "c", Command: "false", MaxRetries: 3, BaseTime: 2},
			failures:     100,
			wantAttempts: 3,
			wantErr:      common.ErrRetriesExhausted,
			wantCalls:    3,
			wantDelays:   []time.Duration{2 * time.Second, 4 * time.Second},
		},
		{
			name:         "base three backoff",
			desc:         queue.Descriptor{ID: "d", Command: "false", MaxRetries: 3, BaseTime: 3},
			failures:     100,
			wantAttempts: 3,
			wantErr:      common.ErrRetriesExhausted,
			wantCalls:    3,
			wantDelays:   []time.Duration{3 * time.Second, 9 * time.Second},
		},
		{
			name:         "recovered mid retry resumes count",
			desc:         queue.Descriptor{ID: "e", Command: "false", Attempts: 2, MaxRetries: 3, BaseTime: 2},
			failures:     100,
			wantAttempts: 3,
			wantErr:      common.ErrRetriesExhausted,
			wantCalls:    1,
			wantDelays:   nil,
		},
		{
			name:         "recovered with no attempts left does not run",
			desc:         queue.Descriptor{ID: "f", Command: "false", Attempts: 3, MaxRetries: 3, BaseTime: 2},
			failures:     100,
			wantAttempts: 3,
			wantErr:      common.ErrRetriesExhausted,
			wantCalls:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStoreMock()
			for i := tt.desc.Attempts + 1; i <= tt.wantAttempts; i++ {
				store.On("SetAttempts", mock.Anything, tt.desc.ID, i).Return(nil).Once()
			}
			runner := &scriptedRunner{failures: tt.failures}
			sleeper := &sleepRecorder{}

			e := NewExecutor(store, runner, discard, WithSleep(sleeper.sleep))
			attempts, err := e.Run(context.Background(), tt.desc)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantCalls, runner.calls)
			assert.Equal(t, tt.wantDelays, sleeper.delays)
			store.AssertExpectations(t)
		})
	}
}

func TestExecutor_AttemptsNeverExceedMax(t *testing.T) {
	store := newStoreMock()
	var mu sync.Mutex
	seen := []int{}
	store.On("SetAttempts", mock.Anything, "x", mock.AnythingOfType("int")).
		Run(func(args mock.Arguments) {
			mu.Lock()
			seen = append(seen, args.Int(2))
			mu.Unlock()
		}).Return(nil)

	e := NewExecutor(store, &scriptedRunner{failures: 1000}, discard, WithSleep((&sleepRecorder{}).sleep))
	attempts, err := e.Run(context.Background(), queue.Descriptor{ID: "x", MaxRetries: 5, BaseTime: 1})

	require.ErrorIs(t, err, common.ErrRetriesExhausted)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestExecutor_StoreFailureStopsRun(t *testing.T) {
	store := newStoreMock()
	store.On("SetAttempts", mock.Anything, "a", 1).Return(nil).Once()
	store.On("SetAttempts", mock.Anything, "a", 2).Return(errors.New("connection reset")).Once()
	runner := &scriptedRunner{failures: 100}

	e := NewExecutor(store, runner, discard, WithSleep((&sleepRecorder{}).sleep))
	attempts, err := e.Run(context.Background(), queue.Descriptor{ID: "a", MaxRetries: 3, BaseTime: 2})

	require.Error(t, err)
	assert.True(t, IsStoreFailure(err))
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, runner.calls, "an unrecorded attempt must not run")
}

func TestExecutor_SaveResultFailureIsNotFatal(t *testing.T) {
	store := new(attemptStoreMock)
	store.On("SetAttempts", mock.Anything, "a", 1).Return(nil)
	store.On("SaveResult", mock.Anything, "a", mock.Anything, "").Return(errors.New("disk full"))

	e := NewExecutor(store, &scriptedRunner{}, discard)
	attempts, err := e.Run(context.Background(), queue.Descriptor{ID: "a", MaxRetries: 3, BaseTime: 2})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestExecutor_CancelInterruptsSleep(t *testing.T) {
	store := newStoreMock()
	store.On("SetAttempts", mock.Anything, "a", 1).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	e := NewExecutor(store, &scriptedRunner{failures: 100}, discard, WithBackoffUnit(time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := e.Run(ctx, queue.Descriptor{ID: "a", MaxRetries: 3, BaseTime: 2})
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("executor did not return after cancel")
	}
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, Backoff(2, 1, time.Second))
	assert.Equal(t, 8*time.Second, Backoff(2, 3, time.Second))
	assert.Equal(t, 27*time.Millisecond, Backoff(3, 3, time.Millisecond))
	assert.Equal(t, time.Second, Backoff(0, 5, time.Second))
	assert.Equal(t, maxBackoff, Backoff(10, 40, time.Second))
}

func TestShellRunner(t *testing.T) {
	r := NewShellRunner()

	t.Run("success captures output", func(t *testing.T) {
		res, err := r.Run(context.Background(), "echo hello")
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "hello\n", res.Output)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		res, err := r.Run(context.Background(), "echo oops >&2; exit 3")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrCommandFailed)
		assert.Equal(t, 3, res.ExitCode)
		assert.Contains(t, res.Output, "oops")
	})

	t.Run("launch failure", func(t *testing.T) {
		bad := &ShellRunner{Shell: "/definitely/not/a/shell"}
		res, err := bad.Run(context.Background(), "true")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrCommandFailed)
		assert.Equal(t, -1, res.ExitCode)
	})

	t.Run("output is truncated to the tail", func(t *testing.T) {
		res, err := r.Run(context.Background(), "head -c 10000 /dev/zero | tr '\\0' 'a'; echo END")
		require.NoError(t, err)
		assert.Len(t, res.Output, maxOutput)
		assert.Contains(t, res.Output, "END")
	})
}
