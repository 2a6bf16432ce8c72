// Package simulation runs Monte Carlo projections of monthly balances under a
// discrete geometric Brownian motion approximation.
package simulation

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"forecast/internal/models"
)

// DefaultChunkSize is the number of iterations a worker handles per task
const DefaultChunkSize = 256

// Run kinds reported to observers
const (
	KindSimulation = "simulation"
	KindSurvival   = "survival"
)

// Observer receives one callback per finished run
type Observer interface {
	ObserveRun(kind string, iterations, periods int, elapsed time.Duration, err error)
}

// Engine fans iterations out across a bounded worker pool and reduces the
// resulting balance matrix into a SimulationResult. An Engine holds no
// per-run state and is safe for concurrent use.
type Engine struct {
	workers   int
	chunkSize int
	logger    zerolog.Logger
	observer  Observer
	now       func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithWorkers bounds the number of concurrent tasks. Values below 1 select
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithChunkSize sets how many iterations form one task
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithLogger sets the logger for run lifecycle events
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver registers a run observer such as a metrics recorder
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithClock overrides the clock used for result timestamps and unseeded runs
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine with one worker per available CPU
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		workers:   runtime.GOMAXPROCS(0),
		chunkSize: DefaultChunkSize,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the worker pool size
func (e *Engine) Workers() int {
	return e.workers
}

// PathOptions customizes a run beyond its SimulationConfig
type PathOptions struct {
	// StartingBalances gives each iteration its own opening balance. Its
	// length must equal the iteration count; nil uses InitialBalance.
	StartingBalances []float64
	// CashFlow replaces the constant MonthlyCashFlow.
	CashFlow CashFlowFunc
	// Override replaces the stochastic return for chosen periods.
	Override ReturnFunc
	// Stream selects an independent family of random draws for the same
	// seed. Runs that must see identical draws share a stream.
	Stream uint64
	// Kind labels the run for observers.
	Kind string
}

// Run executes a Monte Carlo simulation for cfg
func (e *Engine) Run(ctx context.Context, cfg models.SimulationConfig) (*models.SimulationResult, error) {
	return e.RunPaths(ctx, cfg, PathOptions{})
}

// RunPaths executes a simulation with per-iteration starting balances, a
// time-varying cash flow or a return override.
func (e *Engine) RunPaths(ctx context.Context, cfg models.SimulationConfig, opts PathOptions) (*models.SimulationResult, error) {
	kind := opts.Kind
	if kind == "" {
		kind = KindSimulation
	}
	start := time.Now()
	res, err := e.runPaths(ctx, cfg, opts)
	e.observe(kind, cfg, time.Since(start), err)
	return res, err
}

// FinalBalances runs the simulation but keeps only each iteration's final
// balance. It allocates one row per task instead of the full matrix, for
// searches that only count outcomes.
func (e *Engine) FinalBalances(ctx context.Context, cfg models.SimulationConfig, opts PathOptions) ([]float64, error) {
	start := time.Now()
	finals, err := e.finalBalances(ctx, cfg, opts)
	kind := opts.Kind
	if kind == "" {
		kind = KindSurvival
	}
	e.observe(kind, cfg, time.Since(start), err)
	return finals, err
}

func (e *Engine) observe(kind string, cfg models.SimulationConfig, elapsed time.Duration, err error) {
	if e.observer != nil {
		e.observer.ObserveRun(kind, cfg.Iterations, cfg.Periods, elapsed, err)
	}
}

// job is the resolved, validated description of one run
type job struct {
	cfg    models.SimulationConfig
	seed   int64
	model  PathModel
	flows  []float64
	starts []float64
	opts   PathOptions
}

func (e *Engine) prepare(cfg models.SimulationConfig, opts PathOptions) (*job, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := validateStartingBalances(opts.StartingBalances, cfg.Iterations); err != nil {
		return nil, err
	}

	seed := e.now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	cash := opts.CashFlow
	if cash == nil {
		cash = ConstantFlow(cfg.MonthlyCashFlow)
	}
	flows := make([]float64, cfg.Periods)
	for t := range flows {
		flows[t] = cash(t)
	}

	return &job{
		cfg:    cfg,
		seed:   seed,
		model:  NewPathModel(cfg.ExpectedReturn, cfg.Volatility),
		flows:  flows,
		starts: opts.StartingBalances,
		opts:   opts,
	}, nil
}

func (j *job) start(i int) float64 {
	if j.starts != nil {
		return j.starts[i]
	}
	return j.cfg.InitialBalance
}

// simulateRow runs iteration i into row and returns its depletion month
func (j *job) simulateRow(i int, row []float64) int {
	if j.cfg.Volatility == 0 {
		return j.model.SimulateDeterministic(row, j.start(i), j.flows, j.opts.Override)
	}
	rng := newIterationRand(j.seed, j.opts.Stream, i)
	return j.model.Simulate(row, j.start(i), j.flows, rng, j.opts.Override)
}

// identicalPaths reports whether every iteration follows the same path
func (j *job) identicalPaths() bool {
	return j.cfg.Volatility == 0 && j.starts == nil
}

// forEachChunk runs fn over [lo, hi) iteration ranges on the worker pool and
// stops scheduling new chunks once ctx is done.
func (e *Engine) forEachChunk(ctx context.Context, n int, fn func(lo, hi int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for lo := 0; lo < n; lo += e.chunkSize {
		if gctx.Err() != nil {
			break
		}
		hi := min(lo+e.chunkSize, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (e *Engine) runPaths(ctx context.Context, cfg models.SimulationConfig, opts PathOptions) (*models.SimulationResult, error) {
	j, err := e.prepare(cfg, opts)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := e.logger.With().Str("run_id", runID).Logger()
	log.Debug().
		Int("iterations", cfg.Iterations).
		Int("periods", cfg.Periods).
		Int("workers", e.workers).
		Int64("seed", j.seed).
		Str("kind", opts.Kind).
		Msg("simulation started")
	started := time.Now()

	n, p := cfg.Iterations, cfg.Periods
	matrix := make([]float64, n*p)
	depletion := make([]int, n)

	if j.identicalPaths() {
		depletion[0] = j.simulateRow(0, matrix[:p])
		for i := 1; i < n; i++ {
			copy(matrix[i*p:(i+1)*p], matrix[:p])
			depletion[i] = depletion[0]
		}
	} else {
		err = e.forEachChunk(ctx, n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				depletion[i] = j.simulateRow(i, matrix[i*p:(i+1)*p])
			}
		})
		if err != nil {
			log.Debug().Err(err).Msg("simulation cancelled")
			return nil, fmt.Errorf("simulation cancelled: %w", err)
		}
	}

	res, err := e.reduce(ctx, j, matrix, depletion)
	if err != nil {
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}
	res.RunID = runID

	log.Debug().
		Dur("duration", time.Since(started)).
		Float64("median", res.Summary.Median).
		Msg("simulation finished")
	return res, nil
}

func (e *Engine) finalBalances(ctx context.Context, cfg models.SimulationConfig, opts PathOptions) ([]float64, error) {
	j, err := e.prepare(cfg, opts)
	if err != nil {
		return nil, err
	}

	n, p := cfg.Iterations, cfg.Periods
	finals := make([]float64, n)
	if j.identicalPaths() {
		row := make([]float64, p)
		j.simulateRow(0, row)
		for i := range finals {
			finals[i] = row[p-1]
		}
		return finals, nil
	}

	err = e.forEachChunk(ctx, n, func(lo, hi int) {
		row := make([]float64, p)
		for i := lo; i < hi; i++ {
			j.simulateRow(i, row)
			finals[i] = row[p-1]
		}
	})
	if err != nil {
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}
	return finals, nil
}
