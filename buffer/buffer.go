// Package buffer implements a fixed-capacity buffer shared by concurrent producers and consumers.
//
// Admission is controlled by two counting permits, one for free slots and one for filled slots,
// and every mutation of the slots happens under a single mutex. Producers wait for a free-slot
// permit before inserting, consumers wait for a filled-slot permit before removing. The lock is
// never held while waiting for a permit.
//
// The default MODE_STACK hands out the most recently inserted item first. MODE_QUEUE hands out
// items in insertion order.
package buffer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/myLogic207/boundedbuf/config"
	"github.com/myLogic207/boundedbuf/logger"
	"golang.org/x/sync/semaphore"
)

type BufferMode int

const (
	MODE_STACK BufferMode = iota
	MODE_QUEUE
)

var (
	// ErrBufferFull is returned by an insert on a full buffer.
	ErrBufferFull = errors.New("buffer is full")
	// ErrBufferEmpty is returned by a remove on an empty buffer.
	ErrBufferEmpty     = errors.New("buffer is empty")
	ErrInvalidCapacity = errors.New("buffer capacity must be positive")
	ErrInvalidMode     = errors.New("invalid mode")
	bufferConfigBase   = map[string]interface{}{
		"NAME": "buffer",
		"MODE": "STACK",
		"SIZE": 10,
	}
)

func (m BufferMode) String() string {
	switch m {
	case MODE_STACK:
		return "STACK"
	case MODE_QUEUE:
		return "QUEUE"
	default:
		return "UNKNOWN"
	}
}

// ParseMode accepts STACK/LIFO, QUEUE/FIFO (any case) or the numeric mode.
func ParseMode(raw string) (BufferMode, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "STACK", "LIFO":
		return MODE_STACK, nil
	case "QUEUE", "FIFO":
		return MODE_QUEUE, nil
	}
	if num, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		mode := BufferMode(num)
		if mode == MODE_STACK || mode == MODE_QUEUE {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, raw)
}

type bufferStore[T any] interface {
	add(element T) bool
	get() (T, bool)
	len() int
}

// Observer is called after every successful mutation while the buffer lock is held.
// ctx is the one passed to Produce or Consume, context.Background() for raw operations.
// An observer must not call back into the buffer.
type Observer[T any] func(ctx context.Context, operation string, item T)

type BoundedBuffer[T any] struct {
	mu       sync.Mutex
	name     string
	mode     BufferMode
	size     int
	store    bufferStore[T]
	free     *semaphore.Weighted
	filled   *semaphore.Weighted
	observer Observer[T]
	metrics  *Metrics
	logger   logger.Logger
}

// New creates an empty buffer holding up to size items.
func New[T any](size int, mode BufferMode, opts ...Option) (*BoundedBuffer[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, size)
	}
	store, err := resolveModeToStore[T](mode, size)
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts...)

	filled := semaphore.NewWeighted(int64(size))
	// no filled slots yet: hold every filled permit until an insert hands one out
	filled.TryAcquire(int64(size))

	buffer := &BoundedBuffer[T]{
		name:    o.name,
		mode:    mode,
		size:    size,
		store:   store,
		free:    semaphore.NewWeighted(int64(size)),
		filled:  filled,
		metrics: o.metrics,
		logger:  o.logger,
	}
	buffer.logger.Debug(context.Background(), "Created %s buffer %s with size %d", mode, buffer.name, size)
	return buffer, nil
}

// NewBuffer creates a buffer from config keys SIZE, MODE and NAME.
// Options given explicitly take precedence over NAME.
func NewBuffer[T any](ctx context.Context, options *config.Config, opts ...Option) (*BoundedBuffer[T], error) {
	cfg, err := config.WithInitialValuesAndOptions(ctx, bufferConfigBase, options)
	if err != nil {
		return nil, err
	}

	size, err := cfg.GetInt(ctx, "SIZE")
	if err != nil {
		return nil, errors.Join(ErrInvalidCapacity, err)
	}
	rawMode, _ := cfg.Get(ctx, "MODE")
	mode, err := ParseMode(rawMode)
	if err != nil {
		return nil, err
	}
	name, _ := cfg.Get(ctx, "NAME")

	return New[T](size, mode, append([]Option{WithName(name)}, opts...)...)
}

func resolveModeToStore[T any](mode BufferMode, size int) (bufferStore[T], error) {
	switch mode {
	case MODE_STACK:
		return newStackStore[T](size), nil
	case MODE_QUEUE:
		return newQueueStore[T](size), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
}

// Insert stores item without waiting for a permit.
// It fails with ErrBufferFull when every slot is occupied.
func (b *BoundedBuffer[T]) Insert(item T) error {
	return b.insert(context.Background(), item)
}

// Remove takes the next item without waiting for a permit.
// It fails with ErrBufferEmpty when no slot is occupied.
func (b *BoundedBuffer[T]) Remove() (T, error) {
	return b.remove(context.Background())
}

func (b *BoundedBuffer[T]) insert(ctx context.Context, item T) error {
	b.mu.Lock()
	ok := b.store.add(item)
	count := b.store.len()
	assertBounds(count, b.size)
	if ok {
		b.metrics.setOccupancy(b.name, count)
		if b.observer != nil {
			b.observer(ctx, OpInsert, item)
		}
	}
	b.mu.Unlock()

	if !ok {
		b.metrics.recordFailure(b.name, OpInsert)
		return ErrBufferFull
	}
	b.metrics.recordSuccess(b.name, OpInsert)
	return nil
}

func (b *BoundedBuffer[T]) remove(ctx context.Context) (T, error) {
	b.mu.Lock()
	item, ok := b.store.get()
	count := b.store.len()
	assertBounds(count, b.size)
	if ok {
		b.metrics.setOccupancy(b.name, count)
		if b.observer != nil {
			b.observer(ctx, OpRemove, item)
		}
	}
	b.mu.Unlock()

	if !ok {
		b.metrics.recordFailure(b.name, OpRemove)
		return item, ErrBufferEmpty
	}
	b.metrics.recordSuccess(b.name, OpRemove)
	return item, nil
}

// Observe installs fn as the buffer observer, replacing any previous one. nil removes it.
func (b *BoundedBuffer[T]) Observe(fn Observer[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = fn
}

// Produce waits for a free slot, inserts item and hands out a filled-slot permit.
// If ctx ends while waiting, ctx.Err() is returned and the buffer is untouched.
func (b *BoundedBuffer[T]) Produce(ctx context.Context, item T) error {
	if err := b.acquire(ctx, b.free, OpInsert); err != nil {
		return err
	}
	if err := b.insert(ctx, item); err != nil {
		b.free.Release(1)
		return err
	}
	b.filled.Release(1)
	return nil
}

// Consume waits for a filled slot, removes the next item and hands out a free-slot permit.
// If ctx ends while waiting, ctx.Err() is returned and the buffer is untouched.
func (b *BoundedBuffer[T]) Consume(ctx context.Context) (T, error) {
	if err := b.acquire(ctx, b.filled, OpRemove); err != nil {
		var zero T
		return zero, err
	}
	item, err := b.remove(ctx)
	if err != nil {
		b.filled.Release(1)
		return item, err
	}
	b.free.Release(1)
	return item, nil
}

// TryProduce is Produce without waiting: it returns ErrBufferFull if no free slot permit is available.
func (b *BoundedBuffer[T]) TryProduce(item T) error {
	if !b.free.TryAcquire(1) {
		b.metrics.recordFailure(b.name, OpInsert)
		return ErrBufferFull
	}
	if err := b.Insert(item); err != nil {
		b.free.Release(1)
		return err
	}
	b.filled.Release(1)
	return nil
}

// TryConsume is Consume without waiting: it returns ErrBufferEmpty if no filled slot permit is available.
func (b *BoundedBuffer[T]) TryConsume() (T, error) {
	if !b.filled.TryAcquire(1) {
		var zero T
		b.metrics.recordFailure(b.name, OpRemove)
		return zero, ErrBufferEmpty
	}
	item, err := b.Remove()
	if err != nil {
		b.filled.Release(1)
		return item, err
	}
	b.free.Release(1)
	return item, nil
}

func (b *BoundedBuffer[T]) acquire(ctx context.Context, permits *semaphore.Weighted, operation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	if err := permits.Acquire(ctx, 1); err != nil {
		return err
	}
	b.metrics.observeWait(b.name, operation, time.Since(start))
	return nil
}

// Len returns the number of items currently held.
func (b *BoundedBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.len()
}

func (b *BoundedBuffer[T]) Cap() int {
	return b.size
}

func (b *BoundedBuffer[T]) Mode() BufferMode {
	return b.mode
}

func (b *BoundedBuffer[T]) Name() string {
	return b.name
}
