package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/myLogic207/boundedbuf/config"
	log "github.com/myLogic207/boundedbuf/logger"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNoSystem           = errors.New("system not found")
	ErrSystemRegistered   = errors.New("system already registered")
	ErrNothingToInit      = errors.New("nothing to init")
	ErrInitConfig         = errors.New("error initializing, config issue")
	ErrInitSystem         = errors.New("error initializing system")
	ErrShutdownSystem     = errors.New("error shutting down system")
	ErrTimeout            = errors.New("operation timed out")
)

var defaultConfig = map[string]interface{}{
	"LOGGER": map[string]interface{}{
		"PREFIX": "LIFECYCLE",
	},
	"TIMEOUT": "5s",
}

// CatchInterrupt starts a goroutine that cancels on SIGINT or SIGTERM.
func CatchInterrupt(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		signal.Stop(c)
		cancel()
	}()
}

// Initializer starts and stops a set of subsystems.
// Systems are initialized and shut down concurrently, each phase bounded by TIMEOUT.
type Initializer struct {
	mu          sync.Mutex
	initialized bool
	logger      log.Logger
	timeout     time.Duration
	order       []string
	systems     map[string]*systemWrapper
}

func NewInitializer(ctx context.Context, options *config.Config) (*Initializer, error) {
	cfg, err := config.WithInitialValuesAndOptions(ctx, defaultConfig, options)
	if err != nil {
		return nil, errors.Join(ErrInitConfig, err)
	}
	timeout, err := cfg.GetDuration(ctx, "TIMEOUT")
	if err != nil {
		return nil, errors.Join(ErrInitConfig, err)
	}
	loggerConfig, err := cfg.GetConfig(ctx, "LOGGER")
	if err != nil {
		return nil, errors.Join(ErrInitConfig, err)
	}
	logger, err := log.Init(ctx, loggerConfig)
	if err != nil {
		return nil, errors.Join(ErrInitConfig, err)
	}

	return &Initializer{
		logger:  logger,
		timeout: timeout,
		systems: make(map[string]*systemWrapper),
	}, nil
}

func (i *Initializer) AddSystem(name string, system SubSystem, configOptions *config.Config) error {
	if system == nil {
		return ErrInvalidSystem
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.systems[name]; ok {
		return fmt.Errorf("%w: %s", ErrSystemRegistered, name)
	}
	if configOptions == nil {
		var err error
		if configOptions, err = config.New(context.Background()); err != nil {
			return errors.Join(ErrInitConfig, err)
		}
	}
	i.systems[name] = &systemWrapper{
		SubSystem: system,
		name:      name,
		config:    configOptions,
	}
	i.order = append(i.order, name)
	i.logger.Debug(context.Background(), "System added: %s", name)
	return nil
}

// RemoveSystem unregisters a system without shutting it down.
func (i *Initializer) RemoveSystem(name string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.systems[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSystem, name)
	}
	delete(i.systems, name)
	for idx, registered := range i.order {
		if registered == name {
			i.order = append(i.order[:idx], i.order[idx+1:]...)
			break
		}
	}
	i.logger.Info(context.Background(), "Removed system %s", name)
	return nil
}

func (i *Initializer) snapshot() []*systemWrapper {
	systems := make([]*systemWrapper, 0, len(i.order))
	for _, name := range i.order {
		systems = append(systems, i.systems[name])
	}
	return systems
}

func (i *Initializer) Init(ctx context.Context) error {
	i.mu.Lock()
	if len(i.systems) == 0 {
		i.mu.Unlock()
		return ErrNothingToInit
	}
	if i.initialized {
		i.mu.Unlock()
		return ErrAlreadyInitialized
	}
	i.initialized = true
	systems := i.snapshot()
	i.mu.Unlock()

	i.logger.Info(ctx, "Initializing %d systems", len(systems))
	var group errgroup.Group
	errs := make([]error, len(systems))
	for idx, system := range systems {
		idx, system := idx, system
		group.Go(func() error {
			i.logger.Debug(ctx, "Initializing %s", system.name)
			if err := system.Init(ctx, system.config); err != nil {
				errs[idx] = fmt.Errorf("%w %s: %w", ErrInitSystem, system.name, err)
			}
			return nil
		})
	}
	if err := i.awaitPhase(&group); err != nil {
		return err
	}
	if err := errors.Join(errs...); err != nil {
		i.logger.Error(ctx, "Initialization failed: %s", err.Error())
		return err
	}
	i.logger.Info(ctx, "All systems initialized")
	return nil
}

func (i *Initializer) Shutdown() error {
	i.mu.Lock()
	systems := i.snapshot()
	i.initialized = false
	i.mu.Unlock()

	ctx := context.Background()
	var group errgroup.Group
	errs := make([]error, len(systems))
	for idx, system := range systems {
		idx, system := idx, system
		group.Go(func() error {
			i.logger.Info(ctx, "Shutting down %s", system.name)
			if err := system.Shutdown(); err != nil {
				errs[idx] = fmt.Errorf("%w %s: %w", ErrShutdownSystem, system.name, err)
			}
			return nil
		})
	}
	if err := i.awaitPhase(&group); err != nil {
		return err
	}
	err := errors.Join(errs...)
	if err != nil {
		i.logger.Error(ctx, "Shutdown finished with errors: %s", err.Error())
	} else {
		i.logger.Info(ctx, "Finished")
	}
	return errors.Join(err, i.logger.Shutdown(ctx))
}

func (i *Initializer) awaitPhase(group *errgroup.Group) error {
	finished := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(finished)
	}()

	timer := time.NewTimer(i.timeout)
	defer timer.Stop()
	select {
	case <-finished:
		return nil
	case <-timer.C:
		i.logger.Warn(context.Background(), "Operation timed out after %s", i.timeout)
		return ErrTimeout
	}
}
