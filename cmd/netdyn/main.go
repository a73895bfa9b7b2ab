// Package main provides the netdyn CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/netdyn/netdyn/internal/autodiff"
	"github.com/netdyn/netdyn/internal/backend/cpu"
	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/parallel"
	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/serialization"
	"github.com/netdyn/netdyn/internal/train"
)

const version = "v0.1.0-dev"

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "netdyn: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "netdyn %s\n", version)
		return nil
	case "train":
		return runTrain(ctx, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "netdyn - learning dynamics of two-layer networks")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  train      Train a student on a teacher of the same architecture")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'netdyn train -h' for training flags.")
}

type trainFlags struct {
	model         string
	in            int
	hidden        int
	teacherHidden int
	act           string
	initName      string
	freeze        bool
	lr            float64
	optimizer     string
	steps         int
	batch         int
	half          bool
	seed          uint64
	evalEvery     int
	testSize      int
	runs          int
	workers       int
	save          string
	logLevel      string
	logJSON       bool
}

func parseTrainFlags(args []string, stderr io.Writer) (*trainFlags, error) {
	f := &trainFlags{}
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.model, "model", "scm", "Model architecture: scm, mlp or gated")
	fs.IntVar(&f.in, "in", 100, "Input dimension")
	fs.IntVar(&f.hidden, "hidden", 4, "Student hidden units")
	fs.IntVar(&f.teacherHidden, "teacher-hidden", 2, "Teacher hidden units")
	fs.StringVar(&f.act, "act", "erf", "Hidden activation: identity, relu, sigmoid, tanh or erf (not used by gated)")
	fs.StringVar(&f.initName, "init", "xavier", "Weight initializer: xavier, lecun, trunc or zeros")
	fs.BoolVar(&f.freeze, "freeze-first", false, "Freeze the student's first-layer weights (mlp only)")
	fs.Float64Var(&f.lr, "lr", 0.1, "Learning rate")
	fs.StringVar(&f.optimizer, "optim", "sgd", "Optimizer: sgd or adam")
	fs.IntVar(&f.steps, "steps", 1000, "Number of training steps (must be positive)")
	fs.IntVar(&f.batch, "batch", 1, "Fresh samples per step")
	fs.BoolVar(&f.half, "half", false, "Use half mean squared error")
	fs.Uint64Var(&f.seed, "seed", 0, "Random seed")
	fs.IntVar(&f.evalEvery, "eval-every", 100, "Evaluate generalization error every N steps (0 = only before and after training)")
	fs.IntVar(&f.testSize, "test-size", 1000, "Held-out test set size")
	fs.IntVar(&f.runs, "runs", 1, "Independent runs with derived seeds, executed concurrently")
	fs.IntVar(&f.workers, "workers", 0, "Concurrent runs (0 = number of CPUs)")
	fs.StringVar(&f.save, "save", "", "Write the trained student to this SafeTensors file")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.BoolVar(&f.logJSON, "log-json", false, "Log as JSON")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if f.model == "gated" {
		// GatedNet gates its pre-activations and has no activation.
		if set["act"] {
			return nil, errors.New("-act is not supported by -model gated")
		}
		f.act = "identity"
	}
	return f, nil
}

func newLogger(w io.Writer, level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseInit(name string) (nn.Initializer, error) {
	switch name {
	case "", "xavier":
		return nn.XavierNormal(), nil
	case "lecun":
		return nn.LecunNormal(), nil
	case "trunc":
		return nn.TruncNormal(), nil
	case "zeros":
		return nn.Zeros(), nil
	default:
		return nil, fmt.Errorf("unknown initializer %q", name)
	}
}

// buildModel constructs the named architecture. For mlp, FreezeWeight in
// linear applies to fc1 only.
func buildModel(name string, in, hidden int, act nn.Activation[Backend], linear nn.LinearConfig, key random.Key, backend Backend) (nn.Model[Backend], error) {
	switch name {
	case "scm":
		return nn.NewSCM(nn.SCMConfig[Backend]{
			InFeatures: in, HiddenFeatures: hidden, Act: act, Linear: linear,
		}, key, backend), nil
	case "mlp":
		fc2 := linear
		fc2.FreezeWeight = false
		return nn.NewMLP(nn.MLPConfig[Backend]{
			InFeatures: in, HiddenFeatures: hidden, Act: act, Linear: linear, FC2: &fc2,
		}, key, backend), nil
	case "gated":
		return nn.NewGatedNet(nn.GatedNetConfig[Backend]{
			InFeatures: in, HiddenFeatures: hidden, Linear: linear,
		}, key, backend), nil
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}

// sweepConfig honors an explicit worker count even on a single-CPU host.
func sweepConfig(workers int) parallel.Config {
	cfg := parallel.DefaultConfig()
	if workers > 0 {
		cfg.NumWorkers = workers
		cfg.Enabled = workers > 1
	}
	return cfg
}

func runTrain(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseTrainFlags(args, stderr)
	if err != nil {
		return err
	}
	logger, err := newLogger(stderr, f.logLevel, f.logJSON)
	if err != nil {
		return err
	}
	if f.in <= 0 || f.hidden <= 0 || f.teacherHidden <= 0 || f.runs <= 0 || f.steps <= 0 {
		return fmt.Errorf("-in, -hidden, -teacher-hidden, -runs and -steps must be positive")
	}
	if f.freeze && f.model != "mlp" {
		return fmt.Errorf("-freeze-first needs -model mlp: %s has no trainable second layer", f.model)
	}

	act, err := nn.ParseActivation[Backend](f.act)
	if err != nil {
		return err
	}
	initializer, err := parseInit(f.initName)
	if err != nil {
		return err
	}

	logger.Info("training",
		"model", f.model,
		"in", f.in,
		"hidden", f.hidden,
		"teacher_hidden", f.teacherHidden,
		"act", f.act,
		"optim", f.optimizer,
		"lr", f.lr,
		"steps", f.steps,
		"seed", f.seed,
		"runs", f.runs,
	)

	// Run 0 keeps the plain seed key so a single run is reproducible by -seed alone.
	students := make([]nn.Model[Backend], f.runs)
	runOne := func(ctx context.Context, run int) (*train.Result, error) {
		key := random.NewKey(f.seed)
		if run > 0 {
			key = key.FoldIn(uint64(run))
		}
		keys := key.Split(3)
		backend := autodiff.New(cpu.New())

		teacher, err := buildModel(f.model, f.in, f.teacherHidden, act, nn.LinearConfig{}, keys[0], backend)
		if err != nil {
			return nil, err
		}
		student, err := buildModel(f.model, f.in, f.hidden, act,
			nn.LinearConfig{Init: initializer, FreezeWeight: f.freeze}, keys[1], backend)
		if err != nil {
			return nil, err
		}
		students[run] = student

		return train.TeacherStudent(ctx, teacher, student, train.Config{
			InFeatures: f.in,
			Steps:      f.steps,
			BatchSize:  f.batch,
			LR:         float32(f.lr),
			Optimizer:  f.optimizer,
			HalfMSE:    f.half,
			EvalEvery:  f.evalEvery,
			TestSize:   f.testSize,
			Logger:     logger.With("run", run),
		}, keys[2], backend)
	}

	sweep, err := train.Sweep(ctx, f.runs, runOne, sweepConfig(f.workers))
	if err != nil {
		return err
	}

	logger.Info("done", "final_eval", sweep.FinalMean, "final_eval_std", sweep.FinalStd)
	if f.runs == 1 {
		fmt.Fprintf(stdout, "final generalization error: %g\n", sweep.FinalMean)
	} else {
		fmt.Fprintf(stdout, "final generalization error: %g ± %g over %d runs\n", sweep.FinalMean, sweep.FinalStd, f.runs)
	}

	if f.save == "" {
		return nil
	}
	metadata := map[string]string{
		"model":          f.model,
		"in_features":    strconv.Itoa(f.in),
		"hidden":         strconv.Itoa(f.hidden),
		"act":            f.act,
		"freeze_first":   strconv.FormatBool(f.freeze),
		"steps":          strconv.Itoa(f.steps),
		"seed":           strconv.FormatUint(f.seed, 10),
		"final_eval":     strconv.FormatFloat(float64(sweep.Runs[0].FinalEval()), 'g', -1, 32),
		"netdyn_version": version,
	}
	if err := serialization.WriteFile(f.save, students[0].StateDict(), metadata); err != nil {
		return fmt.Errorf("save %s: %w", f.save, err)
	}
	logger.Info("saved", "path", f.save, "run", 0)
	return nil
}
