package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdyn/netdyn/internal/autodiff"
	"github.com/netdyn/netdyn/internal/backend/cpu"
	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/parallel"
	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/serialization"
)

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &stdout, &stderr))
	assert.Equal(t, "netdyn "+version+"\n", stdout.String())
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Commands:")

	err := run(context.Background(), []string{"serve"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "Commands:")
}

func TestRun_Train(t *testing.T) {
	for _, model := range []string{"scm", "mlp", "gated"} {
		t.Run(model, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "student.safetensors")
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), []string{
				"train",
				"-model", model,
				"-in", "5",
				"-hidden", "3",
				"-steps", "20",
				"-eval-every", "10",
				"-test-size", "16",
				"-log-json",
				"-save", path,
			}, &stdout, &stderr)
			require.NoError(t, err)

			assert.Contains(t, stdout.String(), "final generalization error")
			assert.Contains(t, stderr.String(), `"msg":"eval"`)

			ckpt, err := serialization.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, model, ckpt.Metadata["model"])
			assert.Equal(t, "5", ckpt.Metadata["in_features"])
			assert.Contains(t, ckpt.Tensors, "fc1.weight")
		})
	}
}

func TestRun_TrainGatedHasNoActivation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gated.safetensors")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"train", "-model", "gated", "-in", "3", "-steps", "2", "-test-size", "4", "-save", path,
	}, &stdout, &stderr)
	require.NoError(t, err)

	ckpt, err := serialization.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "identity", ckpt.Metadata["act"])
}

func TestRun_TrainFreezeFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student.safetensors")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"train",
		"-model", "mlp",
		"-in", "5",
		"-hidden", "3",
		"-freeze-first",
		"-steps", "20",
		"-test-size", "16",
		"-seed", "4",
		"-save", path,
	}, &stdout, &stderr)
	require.NoError(t, err)

	ckpt, err := serialization.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "true", ckpt.Metadata["freeze_first"])

	// Rebuild the untrained student from the same key.
	act, err := nn.ParseActivation[Backend]("erf")
	require.NoError(t, err)
	initial, err := buildModel("mlp", 5, 3, act,
		nn.LinearConfig{Init: nn.XavierNormal(), FreezeWeight: true},
		random.NewKey(4).Split(3)[1], autodiff.New(cpu.New()))
	require.NoError(t, err)
	before := initial.StateDict()

	assert.Equal(t, before["fc1.weight"].AsFloat32(), ckpt.Tensors["fc1.weight"].AsFloat32(),
		"frozen first layer must not move")
	assert.NotEqual(t, before["fc2.weight"].AsFloat32(), ckpt.Tensors["fc2.weight"].AsFloat32(),
		"second layer must train")
}

func TestBuildModel_FreezeFirstOnlyFreezesFC1(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model, err := buildModel("mlp", 4, 2, nn.Identity[Backend](),
		nn.LinearConfig{FreezeWeight: true}, random.NewKey(0), backend)
	require.NoError(t, err)

	mlp, ok := model.(*nn.MLP[Backend])
	require.True(t, ok)
	assert.False(t, mlp.FC1().Weight().Trainable())
	assert.True(t, mlp.FC2().Weight().Trainable())
	assert.NotEmpty(t, mlp.Parameters())
}

func TestSweepConfig(t *testing.T) {
	assert.Equal(t, parallel.DefaultConfig(), sweepConfig(0))

	one := sweepConfig(1)
	assert.False(t, one.Enabled)

	four := sweepConfig(4)
	assert.True(t, four.Enabled)
	assert.Equal(t, 4, four.NumWorkers)
}

func TestRun_TrainInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"model", []string{"-model", "cnn"}},
		{"activation", []string{"-act", "gelu"}},
		{"initializer", []string{"-init", "orthogonal"}},
		{"optimizer", []string{"-optim", "rmsprop"}},
		{"log level", []string{"-log-level", "loud"}},
		{"dimension", []string{"-in", "0"}},
		{"runs", []string{"-runs", "0"}},
		{"steps", []string{"-steps", "0"}},
		{"gated activation", []string{"-model", "gated", "-act", "relu"}},
		{"freeze without second layer", []string{"-model", "scm", "-freeze-first"}},
		{"flag", []string{"-bogus"}},
		{"positional", []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			args := append([]string{"train", "-steps", "1"}, tt.args...)
			require.Error(t, run(context.Background(), args, &stdout, &stderr))
		})
	}
}

func TestRun_TrainSweep(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"train",
		"-in", "4",
		"-hidden", "2",
		"-steps", "10",
		"-test-size", "8",
		"-runs", "3",
		"-workers", "2",
		"-optim", "adam",
		"-lr", "0.01",
	}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "over 3 runs")
	assert.Contains(t, stderr.String(), "run=2")
}
