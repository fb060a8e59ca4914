// Package engine estimates the risk-normalized position size of a trading
// strategy from its historical per-trade returns: the largest capital
// fraction whose probability of breaching a drawdown tolerance stays at a
// target tail probability (safe-f), and the pessimistic-quartile compound
// annual return at that fraction (CAR25). Both come from Monte Carlo
// resampling of the trade list combined with a bisection search.
package engine

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/quantlab/risknorm/pkg/logger"
)

// ProgressFunc is invoked as each repetition trial completes. In parallel
// mode invocations are serialized but may arrive out of repetition order.
type ProgressFunc func(repetition int, safeF, car25 float64)

// Engine runs the full risk-normalization procedure. It holds no mutable
// run state of its own; every run is a pure function of trades, params
// and seed.
type Engine struct {
	log        *logger.Logger // optional; debug traces only
	progress   ProgressFunc   // optional
	progressMu sync.Mutex
}

// New creates an Engine. log may be nil.
func New(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

// OnProgress registers a per-repetition progress callback.
func (e *Engine) OnProgress(fn ProgressFunc) {
	e.progress = fn
}

// RunSequential executes all repetitions on the calling goroutine,
// threading a single seeded randomness stream through every trial in
// strict order. Bit-identical results for identical inputs and seed.
func (e *Engine) RunSequential(trades []float64, p Params, seed int64) (*Result, error) {
	if err := validateInputs(trades, p); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))

	safeFs := make([]float64, 0, p.Repetitions)
	car25s := make([]float64, 0, p.Repetitions)

	for rep := 0; rep < p.Repetitions; rep++ {
		safeF, car25, err := e.runTrial(trades, p, rep, rng)
		if err != nil {
			return nil, err
		}
		safeFs = append(safeFs, safeF)
		car25s = append(car25s, car25)

		e.reportProgress(rep, safeF, car25)
	}

	return aggregate(safeFs, car25s), nil
}

// RunParallel executes one repetition trial per worker-pool task. Before
// any goroutine starts, one independent seed per repetition is drawn from
// the master stream; each trial then owns a privately seeded stream, so
// no generator is ever shared across workers. The first trial error
// aborts the batch and no partial result is returned.
func (e *Engine) RunParallel(trades []float64, p Params, seed int64) (*Result, error) {
	if err := validateInputs(trades, p); err != nil {
		return nil, err
	}

	// Pre-materialize per-trial seeds so the master stream is never
	// touched concurrently.
	master := rand.New(rand.NewSource(seed))
	seeds := make([]int64, p.Repetitions)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > p.Repetitions {
		workers = p.Repetitions
	}

	type trialResult struct {
		rep   int
		safeF float64
		car25 float64
		err   error
	}

	jobs := make(chan int, p.Repetitions)
	results := make(chan trialResult, p.Repetitions)

	// Once a trial fails, remaining queued trials are skipped. A trial
	// already in flight runs to completion; its result is discarded.
	var failed atomic.Bool

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rep := range jobs {
				if failed.Load() {
					continue
				}
				rng := rand.New(rand.NewSource(seeds[rep]))
				safeF, car25, err := e.runTrial(trades, p, rep, rng)
				if err != nil {
					failed.Store(true)
				}
				results <- trialResult{rep: rep, safeF: safeF, car25: car25, err: err}
			}
		}()
	}

	for rep := 0; rep < p.Repetitions; rep++ {
		jobs <- rep
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	safeFs := make([]float64, 0, p.Repetitions)
	car25s := make([]float64, 0, p.Repetitions)
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		safeFs = append(safeFs, res.safeF)
		car25s = append(car25s, res.car25)

		e.reportProgress(res.rep, res.safeF, res.car25)
	}

	if firstErr != nil {
		return nil, firstErr
	}

	// Pool ordering is irrelevant: mean and standard deviation are
	// symmetric in their inputs.
	return aggregate(safeFs, car25s), nil
}

// runTrial performs one independent {calibrate -> aggregate} trial on the
// given randomness stream.
func (e *Engine) runTrial(trades []float64, p Params, rep int, rng *rand.Rand) (safeF, car25 float64, err error) {
	target := p.TailPercentile / 100.0

	safeF = calibrateSafeFraction(func(fraction float64) float64 {
		return estimateTailRisk(trades, fraction, p, rng)
	}, target)

	car25, err = aggregateCAR25(trades, safeF, p, rep, rng)
	if err != nil {
		return 0, 0, err
	}

	if e.log != nil {
		e.log.WithFields(map[string]interface{}{
			"repetition": rep,
			"safe_f":     safeF,
			"car25":      car25,
		}).Debug("Repetition trial completed")
	}

	return safeF, car25, nil
}

func (e *Engine) reportProgress(rep int, safeF, car25 float64) {
	if e.progress == nil {
		return
	}
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	e.progress(rep, safeF, car25)
}

func validateInputs(trades []float64, p Params) error {
	if len(trades) == 0 {
		return invalidInputf("trade series is empty")
	}
	return p.Validate()
}

func aggregate(safeFs, car25s []float64) *Result {
	safeFMean, safeFStdev := Statistics(safeFs)
	car25Mean, car25Stdev := Statistics(car25s)
	return &Result{
		SafeFMean:  safeFMean,
		SafeFStdev: safeFStdev,
		CAR25Mean:  car25Mean,
		CAR25Stdev: car25Stdev,
	}
}
