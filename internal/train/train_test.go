package train_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/netdyn/netdyn/internal/autodiff"
	"github.com/netdyn/netdyn/internal/backend/cpu"
	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/train"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newSCM(backend Backend, in, hidden int, seed uint64) *nn.SCM[Backend] {
	return nn.NewSCM(nn.SCMConfig[Backend]{InFeatures: in, HiddenFeatures: hidden}, random.NewKey(seed), backend)
}

func toFloat64(data []float32) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

func TestSampleInputs(t *testing.T) {
	backend := cpu.New()
	key := random.NewKey(3)

	x := train.SampleInputs(key, 200, 50, backend)
	assert.Equal(t, []int{200, 50}, []int(x.Shape()))

	data := toFloat64(x.Data())
	assert.InDelta(t, 0, stat.Mean(data, nil), 0.05)
	assert.InDelta(t, 1, stat.StdDev(data, nil), 0.05)

	again := train.SampleInputs(key, 200, 50, backend)
	assert.Equal(t, x.Data(), again.Data())

	other := train.SampleInputs(key.FoldIn(1), 200, 50, backend)
	assert.False(t, floats.Equal(data, toFloat64(other.Data())))
}

func TestTeacherStudent_Learns(t *testing.T) {
	backend := autodiff.New(cpu.New())
	teacher := newSCM(backend, 4, 2, 1)
	student := newSCM(backend, 4, 2, 2)

	result, err := train.TeacherStudent(context.Background(), teacher, student, train.Config{
		InFeatures: 4,
		Steps:      500,
		BatchSize:  8,
		LR:         0.1,
		TestSize:   200,
	}, random.NewKey(9), backend)
	require.NoError(t, err)

	require.Len(t, result.Losses, 500)
	require.Len(t, result.Evals, 2)
	assert.Equal(t, 0, result.Evals[0].Step)
	assert.Equal(t, 500, result.Evals[1].Step)
	assert.Less(t, result.FinalEval(), 0.1*result.Evals[0].Loss)
	assert.Equal(t, 0, backend.Tape().NumOps())
}

func TestTeacherStudent_TeacherFrozen(t *testing.T) {
	backend := autodiff.New(cpu.New())
	teacher := newSCM(backend, 3, 2, 1)
	student := newSCM(backend, 3, 2, 2)

	before := make(map[string][]float32)
	for name, raw := range teacher.StateDict() {
		before[name] = append([]float32(nil), raw.AsFloat32()...)
	}
	studentBefore := append([]float32(nil), student.FC1().Weight().Tensor().Data()...)

	_, err := train.TeacherStudent(context.Background(), teacher, student, train.Config{
		InFeatures: 3,
		Steps:      20,
	}, random.NewKey(4), backend)
	require.NoError(t, err)

	for name, raw := range teacher.StateDict() {
		assert.Equal(t, before[name], raw.AsFloat32(), name)
	}
	assert.NotEqual(t, studentBefore, student.FC1().Weight().Tensor().Data())
}

func TestTeacherStudent_Deterministic(t *testing.T) {
	run := func() *train.Result {
		backend := autodiff.New(cpu.New())
		result, err := train.TeacherStudent(context.Background(),
			newSCM(backend, 3, 2, 1), newSCM(backend, 3, 3, 2),
			train.Config{InFeatures: 3, Steps: 25, Optimizer: "adam", LR: 0.01},
			random.NewKey(5), backend)
		require.NoError(t, err)
		return result
	}

	first, second := run(), run()
	assert.Equal(t, first.Losses, second.Losses)
	assert.Equal(t, first.Evals, second.Evals)
}

func TestTeacherStudent_EvalSchedule(t *testing.T) {
	backend := autodiff.New(cpu.New())
	result, err := train.TeacherStudent(context.Background(),
		newSCM(backend, 2, 2, 1), newSCM(backend, 2, 2, 2),
		train.Config{InFeatures: 2, Steps: 10, EvalEvery: 4, TestSize: 10, HalfMSE: true},
		random.NewKey(1), backend)
	require.NoError(t, err)

	steps := make([]int, len(result.Evals))
	for i, e := range result.Evals {
		steps[i] = e.Step
	}
	assert.Equal(t, []int{0, 4, 8, 10}, steps)
}

func TestTeacherStudent_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	backend := autodiff.New(cpu.New())
	_, err := train.TeacherStudent(context.Background(),
		newSCM(backend, 2, 2, 1), newSCM(backend, 2, 2, 2),
		train.Config{InFeatures: 2, Steps: 2, Logger: logger},
		random.NewKey(1), backend)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "msg=eval")
	assert.Contains(t, buf.String(), "step=2")
}

func TestTeacherStudent_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := autodiff.New(cpu.New())
	result, err := train.TeacherStudent(ctx,
		newSCM(backend, 2, 2, 1), newSCM(backend, 2, 2, 2),
		train.Config{InFeatures: 2, Steps: 5},
		random.NewKey(1), backend)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Losses)
}

func TestTeacherStudent_Errors(t *testing.T) {
	backend := autodiff.New(cpu.New())
	key := random.NewKey(1)
	teacher := newSCM(backend, 2, 2, 1)

	_, err := train.TeacherStudent(context.Background(), teacher, newSCM(backend, 2, 2, 2),
		train.Config{}, key, backend)
	require.Error(t, err, "missing input size")

	_, err = train.TeacherStudent(context.Background(), teacher, newSCM(backend, 2, 2, 2),
		train.Config{InFeatures: 2, Optimizer: "lbfgs"}, key, backend)
	require.Error(t, err, "unknown optimizer")

	mlp := nn.NewMLP(nn.MLPConfig[Backend]{InFeatures: 2}, random.NewKey(2), backend)
	_, err = train.TeacherStudent(context.Background(), teacher, mlp,
		train.Config{InFeatures: 2}, key, backend)
	require.Error(t, err, "output shape mismatch")
}
