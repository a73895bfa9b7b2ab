// Package train runs teacher-student online learning experiments.
//
// A frozen teacher model labels fresh standard-Gaussian inputs, and a
// student model is trained on those labels with an optimizer from
// package optim. The held-out generalization error is measured on a
// fixed test set drawn once from the experiment key.
//
// Example usage:
//
//	backend := autodiff.New(cpu.New())
//	teacherKey, studentKey, dataKey := ...
//	teacher := nn.NewSCM(nn.SCMConfig[Backend]{InFeatures: 100, HiddenFeatures: 2}, teacherKey, backend)
//	student := nn.NewSCM(nn.SCMConfig[Backend]{InFeatures: 100, HiddenFeatures: 4}, studentKey, backend)
//
//	result, err := train.TeacherStudent(ctx, teacher, student, train.Config{
//	    InFeatures: 100,
//	    Steps:      10_000,
//	    LR:         0.5,
//	    EvalEvery:  100,
//	}, dataKey, backend)
package train

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/netdyn/netdyn/internal/autodiff"
	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/optim"
	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Config configures a teacher-student run.
type Config struct {
	InFeatures int     // Input dimension shared by teacher and student (required)
	Steps      int     // Number of optimizer steps (default: 1000)
	BatchSize  int     // Fresh samples per step (default: 1, online learning)
	LR         float32 // Learning rate (default: 0.1)
	Optimizer  string  // "sgd" or "adam" (default: "sgd")
	HalfMSE    bool    // Use ½·MSE instead of MSE
	EvalEvery  int     // Evaluate every N steps; 0 evaluates only before and after training
	TestSize   int     // Held-out test set size (default: 1000)

	// Logger receives evaluation points. Nil disables logging.
	Logger *slog.Logger
}

// EvalPoint is the generalization error measured after Step updates.
type EvalPoint struct {
	Step int
	Loss float32
}

// Result holds the trajectory of a run.
type Result struct {
	Losses []float32   // Training loss of each step, before its update
	Evals  []EvalPoint // Held-out loss at step 0, every EvalEvery steps, and the last step
}

// FinalEval returns the last held-out loss.
func (r *Result) FinalEval() float32 {
	if len(r.Evals) == 0 {
		return 0
	}
	return r.Evals[len(r.Evals)-1].Loss
}

func (c Config) withDefaults() Config {
	if c.Steps == 0 {
		c.Steps = 1000
	}
	if c.BatchSize == 0 {
		c.BatchSize = 1
	}
	if c.LR == 0 {
		c.LR = 0.1
	}
	if c.TestSize == 0 {
		c.TestSize = 1000
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.InFeatures <= 0:
		return fmt.Errorf("in features must be positive, got %d", c.InFeatures)
	case c.Steps < 0, c.BatchSize < 0, c.TestSize < 0, c.EvalEvery < 0:
		return fmt.Errorf("steps, batch size, test size and eval interval must not be negative")
	}
	return nil
}

// TeacherStudent trains student on labels produced by teacher.
//
// Step i samples a [BatchSize, InFeatures] Gaussian batch from
// key.FoldIn(i), labels it with teacher while the tape is not recording,
// then records the student forward pass and loss, backpropagates, applies
// the optimizer, and clears the tape. Only the student's trainable
// parameters are updated.
//
// The run stops early with ctx.Err() if ctx is canceled; the partial
// result is returned alongside the error.
func TeacherStudent[B tensor.Backend](
	ctx context.Context,
	teacher, student nn.Module[*autodiff.AutodiffBackend[B]],
	cfg Config,
	key random.Key,
	backend *autodiff.AutodiffBackend[B],
) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	optimizer, err := optim.New(cfg.Optimizer, student.Parameters(), cfg.LR, backend)
	if err != nil {
		return nil, err
	}
	lossFn := nn.NewMSELoss(backend)
	if cfg.HalfMSE {
		lossFn = nn.NewHalfMSELoss(backend)
	}

	trainKey, testKey := key.Split2()
	tape := backend.Tape()
	tape.StopRecording()
	tape.Clear()

	testX := SampleInputs(testKey, cfg.TestSize, cfg.InFeatures, backend)
	testY := teacher.Forward(testX)
	if got := student.Forward(testX).Shape(); !got.Equal(testY.Shape()) {
		return nil, fmt.Errorf("student output %v does not match teacher output %v", got, testY.Shape())
	}

	result := &Result{Losses: make([]float32, 0, cfg.Steps)}
	evaluate := func(step int) {
		loss := lossFn.Forward(student.Forward(testX), testY).Item()
		result.Evals = append(result.Evals, EvalPoint{Step: step, Loss: loss})
		if cfg.Logger != nil {
			cfg.Logger.Info("eval", "step", step, "loss", loss, "lr", optimizer.GetLR())
		}
	}
	evaluate(0)

	for step := range cfg.Steps {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("training stopped at step %d: %w", step, err)
		}

		x := SampleInputs(trainKey.FoldIn(uint64(step)), cfg.BatchSize, cfg.InFeatures, backend)
		y := teacher.Forward(x)

		tape.StartRecording()
		optimizer.ZeroGrad()
		loss := lossFn.Forward(student.Forward(x), y)
		grads := autodiff.Backward(loss, backend)
		optimizer.Step(grads)
		tape.StopRecording()
		tape.Clear()

		result.Losses = append(result.Losses, loss.Item())

		done := step + 1
		if done == cfg.Steps || (cfg.EvalEvery > 0 && done%cfg.EvalEvery == 0) {
			evaluate(done)
		}
	}

	return result, nil
}

// SampleInputs draws a [batch, in] tensor of independent standard normals.
// The same key always yields the same batch.
func SampleInputs[B tensor.Backend](key random.Key, batch, in int, backend B) *tensor.Tensor[float32, B] {
	x := tensor.Zeros[float32](tensor.Shape{batch, in}, backend)
	dist := distuv.UnitNormal
	dist.Src = key.Source()
	data := x.Raw().AsFloat32()
	for i := range data {
		data[i] = float32(dist.Rand())
	}
	return x
}
