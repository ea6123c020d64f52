// Package simulation runs producers and consumers against one shared bounded buffer.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/myLogic207/boundedbuf/buffer"
	"github.com/myLogic207/boundedbuf/config"
	log "github.com/myLogic207/boundedbuf/logger"
	"github.com/myLogic207/boundedbuf/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fastrand"
)

const (
	ROLE_PRODUCER = "producer"
	ROLE_CONSUMER = "consumer"
)

var (
	ErrInitConfig         = errors.New("error initializing simulation config")
	ErrInvalidWorkers     = errors.New("worker count must not be negative")
	ErrAlreadyInitialized = errors.New("simulation already running")
	defaultConfig         = map[string]interface{}{
		"PRODUCERS": 1,
		"CONSUMERS": 1,
		"MAXDELAY":  "8s",
		"BUFFER": map[string]interface{}{
			"NAME": "buffer",
			"SIZE": 10,
			"MODE": "STACK",
		},
		"LOGGER": map[string]interface{}{
			"PREFIX": "SIMULATION",
		},
	}
)

// Stats counts the outcome of a run.
type Stats struct {
	Produced  uint64
	Consumed  uint64
	Failures  uint64
	Occupancy int
}

type Simulation struct {
	reporter *Reporter
	registry prometheus.Registerer
	mu       sync.Mutex
	logger   log.Logger
	buffer   *buffer.BoundedBuffer[int]
	pool     *workers.WorkerPool
	produced atomic.Uint64
	consumed atomic.Uint64
	failures atomic.Uint64
}

// New creates a simulation narrating to reporter. Buffer metrics are registered with registry,
// which may be nil.
func New(reporter *Reporter, registry prometheus.Registerer) *Simulation {
	if reporter == nil {
		reporter = NewReporter(nil, nil)
	}
	return &Simulation{
		reporter: reporter,
		registry: registry,
		logger:   log.Nop(),
	}
}

// Init builds the buffer and starts PRODUCERS producers and CONSUMERS consumers.
// Workers run until Shutdown or until ctx ends.
func (s *Simulation) Init(ctx context.Context, options *config.Config) error {
	cfg, err := config.WithInitialValuesAndOptions(ctx, defaultConfig, options)
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	producers, err := cfg.GetInt(ctx, "PRODUCERS")
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	consumers, err := cfg.GetInt(ctx, "CONSUMERS")
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	if producers < 0 || consumers < 0 {
		return fmt.Errorf("%w: %d producers, %d consumers", ErrInvalidWorkers, producers, consumers)
	}
	maxDelay, err := cfg.GetDuration(ctx, "MAXDELAY")
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	bufferConfig, err := cfg.GetConfig(ctx, "BUFFER")
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	loggerConfig, err := cfg.GetConfig(ctx, "LOGGER")
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		return ErrAlreadyInitialized
	}
	logger, err := log.Init(ctx, loggerConfig)
	if err != nil {
		return errors.Join(ErrInitConfig, err)
	}
	s.logger = logger

	buf, err := buffer.NewBuffer[int](ctx, bufferConfig,
		buffer.WithMetrics(buffer.NewMetrics(s.registry)),
		buffer.WithLogger(logger.Named("BUFFER")),
	)
	if err != nil {
		return errors.Join(err, logger.Shutdown(ctx))
	}
	buf.Observe(s.narrate)
	s.buffer = buf

	pool := workers.NewWorkerPool(ctx, logger.Named("WORKERS"), workers.WithDelay(workers.RandomDelay(maxDelay)))
	if err := pool.Spawn(ROLE_PRODUCER, producers, s.producer); err != nil {
		return errors.Join(err, pool.Stop(), logger.Shutdown(ctx))
	}
	if err := pool.Spawn(ROLE_CONSUMER, consumers, s.consumer); err != nil {
		return errors.Join(err, pool.Stop(), logger.Shutdown(ctx))
	}
	s.pool = pool

	s.logger.Info(ctx, "Started %d producers and %d consumers on %s buffer of size %d, max delay %s",
		producers, consumers, buf.Mode(), buf.Cap(), maxDelay)
	return nil
}

func (s *Simulation) producer(id int) workers.Task {
	return workers.NewTask(func(ctx context.Context) error {
		item := int(fastrand.Uint32() >> 1)
		if err := s.buffer.Produce(ctx, item); err != nil {
			return err
		}
		s.produced.Add(1)
		return nil
	}, s.report)
}

func (s *Simulation) consumer(id int) workers.Task {
	return workers.NewTask(func(ctx context.Context) error {
		if _, err := s.buffer.Consume(ctx); err != nil {
			return err
		}
		s.consumed.Add(1)
		return nil
	}, s.report)
}

// narrate runs under the buffer lock, so lines appear in the order the buffer changed.
func (s *Simulation) narrate(ctx context.Context, operation string, item int) {
	id, _ := workers.WorkerID(ctx)
	switch operation {
	case buffer.OpInsert:
		s.reporter.Produced(id, item)
	case buffer.OpRemove:
		s.reporter.Consumed(id, item)
	}
}

func (s *Simulation) report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	s.failures.Add(1)
	s.reporter.ErrorCondition(err)
	s.logger.Warn(ctx, "Buffer operation failed: %s", err.Error())
}

// Stats returns the counters of the current run.
func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	buf := s.buffer
	s.mu.Unlock()
	stats := Stats{
		Produced: s.produced.Load(),
		Consumed: s.consumed.Load(),
		Failures: s.failures.Load(),
	}
	if buf != nil {
		stats.Occupancy = buf.Len()
	}
	return stats
}

// Shutdown cancels all workers and waits until every one of them returned.
func (s *Simulation) Shutdown() error {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()

	ctx := context.Background()
	if pool == nil {
		return s.logger.Shutdown(ctx)
	}
	err := pool.Stop()
	stats := s.Stats()
	s.logger.Info(ctx, "Produced %d, consumed %d, %d failures, %d items left in buffer",
		stats.Produced, stats.Consumed, stats.Failures, stats.Occupancy)
	return errors.Join(err, s.logger.Shutdown(ctx))
}
