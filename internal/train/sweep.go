package train

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/netdyn/netdyn/internal/parallel"
)

// RunFunc builds and trains the experiment with index run. Runs execute
// concurrently, so each must own its backend and models.
type RunFunc func(ctx context.Context, run int) (*Result, error)

// SweepResult summarizes repeated runs of one experiment.
type SweepResult struct {
	Runs []*Result

	FinalMean float64 // Mean of the runs' final held-out loss
	FinalStd  float64 // Sample standard deviation; 0 for a single run

	// MeanEvals averages the held-out loss at each evaluation point.
	// Runs must share an evaluation schedule.
	MeanEvals []EvalPoint
}

// Sweep executes n runs with the given parallelism and aggregates their
// generalization errors. If any run fails the joined error is returned
// and the result is nil.
func Sweep(ctx context.Context, n int, run RunFunc, cfg parallel.Config) (*SweepResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sweep needs at least one run, got %d", n)
	}

	runs := make([]*Result, n)
	err := parallel.ForErr(n, func(i int) error {
		result, err := run(ctx, i)
		if err != nil {
			return fmt.Errorf("run %d: %w", i, err)
		}
		runs[i] = result
		return nil
	}, cfg)
	if err != nil {
		return nil, err
	}

	finals := make([]float64, n)
	for i, r := range runs {
		finals[i] = float64(r.FinalEval())
	}
	sweep := &SweepResult{Runs: runs}
	if n == 1 {
		sweep.FinalMean = finals[0]
	} else {
		sweep.FinalMean, sweep.FinalStd = stat.MeanStdDev(finals, nil)
	}

	evals := runs[0].Evals
	column := make([]float64, n)
	for j, point := range evals {
		for i, r := range runs {
			if len(r.Evals) != len(evals) || r.Evals[j].Step != point.Step {
				return nil, fmt.Errorf("run %d evaluation schedule differs from run 0", i)
			}
			column[i] = float64(r.Evals[j].Loss)
		}
		sweep.MeanEvals = append(sweep.MeanEvals, EvalPoint{Step: point.Step, Loss: float32(stat.Mean(column, nil))})
	}
	return sweep, nil
}
