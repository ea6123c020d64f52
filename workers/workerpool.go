package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/myLogic207/boundedbuf/logger"
	"golang.org/x/sync/errgroup"
)

type contextKey string

var (
	workerId   = contextKey("worker_id")
	workerRole = contextKey("worker_role")
)

// WorkerID returns the id of the worker running the task that received ctx.
func WorkerID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(workerId).(int)
	return id, ok
}

func WorkerRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(workerRole).(string)
	return role, ok
}

type PoolOption func(*WorkerPool)

// WithDelay sets the pause taken before every task run. Defaults to no pause.
func WithDelay(delay DelayFunc) PoolOption {
	return func(w *WorkerPool) {
		w.delay = delay
	}
}

// WorkerPool runs looping workers. Every worker sleeps, checks for cancellation,
// runs its task once and starts over until the pool is stopped.
type WorkerPool struct {
	logger  logger.Logger
	delay   DelayFunc
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	mu      sync.Mutex
	nextId  int
	workers map[string]int
}

func NewWorkerPool(ctx context.Context, log logger.Logger, opts ...PoolOption) *WorkerPool {
	poolCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(poolCtx)
	pool := &WorkerPool{
		logger:  log,
		delay:   FixedDelay(0),
		ctx:     groupCtx,
		cancel:  cancel,
		group:   group,
		nextId:  1,
		workers: make(map[string]int),
	}
	for _, opt := range opts {
		opt(pool)
	}
	pool.logger.Debug(ctx, "Worker pool initialized")
	return pool
}

// Spawn starts count workers for role. factory builds the task for each worker id.
// Ids are unique across the pool.
func (w *WorkerPool) Spawn(role string, count int, factory func(id int) Task) WorkerError {
	if count < 0 {
		return &InitError{nested: fmt.Errorf("negative worker count %d for %s", count, role)}
	}
	if factory == nil {
		return &InitError{nested: fmt.Errorf("no task factory for %s", role)}
	}
	if err := w.ctx.Err(); err != nil {
		return &InitError{nested: errors.Join(ErrPoolStopped, err)}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.logger.Debug(w.ctx, "Creating %d %s workers", count, role)
	for i := 0; i < count; i++ {
		id := w.nextId
		w.nextId++
		workerCtx := context.WithValue(w.ctx, workerId, id)
		workerCtx = context.WithValue(workerCtx, workerRole, role)
		workerCtx = logger.WithFields(workerCtx, "role", role, "worker", id)
		task := factory(id)
		w.group.Go(func() error {
			return w.worker(workerCtx, task)
		})
	}
	w.workers[role] += count
	return nil
}

func (w *WorkerPool) worker(ctx context.Context, task Task) error {
	for {
		if err := sleep(ctx, w.delay()); err != nil {
			w.logger.Debug(ctx, "Worker received quit signal")
			return nil
		}
		// cancellation is only honoured between runs, never in the middle of OnFinish
		if ctx.Err() != nil {
			return nil
		}
		err := task.Do(ctx)
		if err != nil && ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			w.logger.Debug(ctx, "Worker cancelled while running task")
			return nil
		}
		task.OnFinish(ctx, err)
		if errors.Is(err, ErrStopPool) {
			w.logger.Warn(ctx, "Task requested pool stop: %s", err.Error())
			return err
		}
	}
}

// Workers returns the number of workers spawned per role.
func (w *WorkerPool) Workers() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	counts := make(map[string]int, len(w.workers))
	for role, count := range w.workers {
		counts[role] = count
	}
	return counts
}

// Wait blocks until every worker returned. It reports the error of a task that stopped the pool.
func (w *WorkerPool) Wait() error {
	return w.group.Wait()
}

// Stop cancels all workers and waits for them to return.
func (w *WorkerPool) Stop() error {
	w.logger.Info(w.ctx, "Stopping worker pool")
	w.cancel()
	err := w.group.Wait()
	w.logger.Info(context.Background(), "Worker pool finished")
	return err
}
