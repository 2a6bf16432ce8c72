package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"forecast/internal/config"
	"forecast/internal/logging"
	"forecast/internal/plan"
	"forecast/internal/report"
	"forecast/internal/services/metrics"
	"forecast/internal/services/simulation"
	"forecast/internal/services/storage"
)

// app holds the dependencies shared by every subcommand
type app struct {
	out    io.Writer
	errOut io.Writer

	cfg      config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	engine   *simulation.Engine
	store    *storage.Store
	renderer *report.Renderer

	// passphrase supplies the key for encrypted plans
	passphrase func() (string, error)
	now        func() time.Time

	configPath string
	logLevel   string
	logJSON    bool
	jsonOut    bool
	metricsOut string
	workers    int
}

func newApp() *app {
	a := &app{out: os.Stdout, errOut: os.Stderr, now: time.Now}
	a.passphrase = a.promptPassphrase
	return a
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "forecast",
		Short:         "Stochastic financial forecasting",
		Long:          "Project savings, goals and retirement plans with Monte Carlo simulation and stress-test them against historical market shocks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.finish()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default "+config.ConfigPath()+")")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")
	pf.BoolVar(&a.jsonOut, "json", false, "Print results as JSON")
	pf.StringVar(&a.metricsOut, "metrics-out", "", "Write Prometheus metrics to this file after the run")
	pf.IntVar(&a.workers, "workers", 0, "Simulation workers (default from config)")

	root.AddCommand(
		newRunCmd(a),
		newGoalCmd(a),
		newRetireCmd(a),
		newScenarioCmd(a),
		newPlanCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads config and builds the shared services
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.workers > 0 {
		cfg.Simulation.Workers = a.workers
	}
	a.cfg = cfg

	a.logger = logging.New(logging.Options{Level: cfg.Logging.Level, JSON: a.logJSON, Out: a.errOut})
	a.registry = prometheus.NewRegistry()
	a.engine = simulation.NewEngine(
		simulation.WithWorkers(cfg.Simulation.Workers),
		simulation.WithLogger(a.logger),
		simulation.WithObserver(metrics.NewRecorder(a.registry)),
	)
	a.store = storage.New(cfg.Plans.Dir)
	if a.renderer, err = report.New(); err != nil {
		return err
	}

	a.logger.Debug().
		Int("workers", a.engine.Workers()).
		Int("iterations", cfg.Simulation.Iterations).
		Str("plans_dir", cfg.Plans.Dir).
		Msg("forecast ready")
	return nil
}

// finish flushes metrics when requested
func (a *app) finish() error {
	if a.metricsOut == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsOut, a.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// runContext applies the configured timeout to the command's context
func (a *app) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := a.cfg.Timeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func (a *app) clockSeed() int64 {
	return a.now().UnixNano()
}

func (a *app) defaults() plan.Defaults {
	return plan.Defaults{
		Iterations:       a.cfg.Simulation.Iterations,
		SuccessThreshold: a.cfg.Retirement.SuccessThreshold,
	}
}

// loadPlan reads a plan by name, asking for a passphrase when it is sealed
func (a *app) loadPlan(name string) (*plan.Plan, error) {
	data, err := a.store.ReadFile(name)
	if errors.Is(err, storage.ErrLocked) {
		if err := a.unlock(); err != nil {
			return nil, err
		}
		data, err = a.store.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", name, err)
	}
	p, err := plan.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", name, err)
	}
	a.logger.Debug().Str("plan", p.Name).Msg("plan loaded")
	return p, nil
}

func (a *app) unlock() error {
	pass, err := a.passphrase()
	if err != nil {
		return err
	}
	a.store.Unlock(pass)
	return nil
}

// promptPassphrase reads FORECAST_PASSPHRASE or asks on the terminal
func (a *app) promptPassphrase() (string, error) {
	if p := os.Getenv("FORECAST_PASSPHRASE"); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("plan is encrypted: set FORECAST_PASSPHRASE or run from a terminal")
	}
	fmt.Fprint(a.errOut, "Passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(a.errOut)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// emit writes v as JSON or through the text renderer
func (a *app) emit(v any, text func(io.Writer) error) error {
	if a.jsonOut {
		return report.JSON(a.out, v)
	}
	return text(a.out)
}
