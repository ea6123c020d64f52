package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/myLogic207/boundedbuf/config"
	"github.com/myLogic207/boundedbuf/lifecycle"
	log "github.com/myLogic207/boundedbuf/logger"
	"github.com/myLogic207/boundedbuf/metrics"
	"github.com/myLogic207/boundedbuf/simulation"
)

const (
	ENV_PREFIX      = "BOUNDEDBUF"
	ENV_CONFIG_FILE = ENV_PREFIX + "_CONFIG"
	usage           = "usage: boundedbuf <sleep-seconds> <producers> <consumers>"
)

const (
	exitOK = iota
	exitFailure
	exitUsage
)

var (
	ErrArgCount = errors.New("expected exactly three arguments")
	ErrArgValue = errors.New("arguments must be non-negative integers")

	defaultConfig = map[string]interface{}{
		"TIMEOUT":  "5s",
		"MAXDELAY": "8s",
		"BUFFER": map[string]interface{}{
			"SIZE": 10,
			"MODE": "STACK",
		},
		"LOGGER": map[string]interface{}{
			"LEVEL":  "INFO",
			"FORMAT": "console",
			"WRITERS": map[string]interface{}{
				"STDOUT": false,
				"STDERR": true,
			},
		},
		"METRICS": map[string]interface{}{
			"ACTIVE":  false,
			"ADDRESS": ":9090",
		},
	}
)

type arguments struct {
	sleep     time.Duration
	producers int
	consumers int
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	lifecycle.CatchInterrupt(cancel)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func parseArgs(args []string) (arguments, error) {
	if len(args) != 3 {
		return arguments{}, fmt.Errorf("%w, got %d", ErrArgCount, len(args))
	}
	values := make([]int, len(args))
	for i, arg := range args {
		value, err := strconv.Atoi(arg)
		if err != nil || value < 0 {
			return arguments{}, fmt.Errorf("%w: %q", ErrArgValue, arg)
		}
		values[i] = value
	}
	return arguments{
		sleep:     time.Duration(values[0]) * time.Second,
		producers: values[1],
		consumers: values[2],
	}, nil
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	parsed, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n%s\n", err, usage)
		return exitUsage
	}

	cfg, err := config.Load(ctx, ENV_PREFIX, defaultConfig, os.Getenv(ENV_CONFIG_FILE))
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitFailure
	}

	logger, err := log.Init(ctx, mustSubConfig(ctx, cfg, "LOGGER", "BOUNDEDBUF"))
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer logger.Shutdown(context.Background())
	logger.Debug(ctx, "Configuration loaded:\n%s", cfg.Sprint())

	reporter := simulation.NewReporter(stdout, stderr)
	initializer, err := newInitializer(ctx, cfg, parsed, reporter)
	if err != nil {
		logger.Error(ctx, "Failed to set up systems: %s", err.Error())
		return exitFailure
	}
	if err := initializer.Init(ctx); err != nil {
		logger.Error(ctx, "Failed to start systems: %s", err.Error())
		_ = initializer.Shutdown()
		return exitFailure
	}

	logger.Info(ctx, "Running for %s", parsed.sleep)
	timer := time.NewTimer(parsed.sleep)
	select {
	case <-ctx.Done():
		logger.Info(ctx, "Interrupted")
	case <-timer.C:
	}
	timer.Stop()

	reporter.Exited()
	if err := initializer.Shutdown(); err != nil {
		logger.Warn(context.Background(), "Shutdown incomplete: %s", err.Error())
	}
	return exitOK
}

func newInitializer(ctx context.Context, cfg *config.Config, parsed arguments, reporter *simulation.Reporter) (*lifecycle.Initializer, error) {
	timeout, _ := cfg.Get(ctx, "TIMEOUT")
	initializerConfig, err := config.WithInitialValues(ctx, map[string]interface{}{
		"TIMEOUT": timeout,
		"LOGGER":  mustSubConfig(ctx, cfg, "LOGGER", "LIFECYCLE"),
	})
	if err != nil {
		return nil, err
	}
	initializer, err := lifecycle.NewInitializer(ctx, initializerConfig)
	if err != nil {
		return nil, err
	}

	metricsServer := metrics.NewServer()
	metricsConfig, err := cfg.GetConfig(ctx, "METRICS")
	if err != nil {
		return nil, err
	}
	if err := metricsConfig.Set(ctx, "LOGGER", mustSubConfig(ctx, cfg, "LOGGER", "METRICS"), true); err != nil {
		return nil, err
	}
	if err := initializer.AddSystem("METRICS", metricsServer, metricsConfig); err != nil {
		return nil, err
	}

	maxDelay, _ := cfg.Get(ctx, "MAXDELAY")
	bufferConfig, err := cfg.GetConfig(ctx, "BUFFER")
	if err != nil {
		return nil, err
	}
	simulationConfig, err := config.WithInitialValues(ctx, map[string]interface{}{
		"PRODUCERS": parsed.producers,
		"CONSUMERS": parsed.consumers,
		"MAXDELAY":  maxDelay,
		"BUFFER":    bufferConfig,
		"LOGGER":    mustSubConfig(ctx, cfg, "LOGGER", "SIMULATION"),
	})
	if err != nil {
		return nil, err
	}
	sim := simulation.New(reporter, metricsServer.Registry())
	if err := initializer.AddSystem("SIMULATION", sim, simulationConfig); err != nil {
		return nil, err
	}
	return initializer, nil
}

// mustSubConfig copies the subtree at key and sets its PREFIX. A missing subtree yields a config holding only PREFIX.
func mustSubConfig(ctx context.Context, cfg *config.Config, key string, prefix string) *config.Config {
	sub, err := cfg.GetConfig(ctx, key)
	if err != nil {
		sub, _ = config.New(ctx)
	}
	_ = sub.Set(ctx, "PREFIX", prefix, true)
	return sub
}
