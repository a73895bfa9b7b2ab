package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdyn/netdyn/internal/autodiff"
	"github.com/netdyn/netdyn/internal/backend/cpu"
	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/optim"
	"github.com/netdyn/netdyn/internal/random"
	"github.com/netdyn/netdyn/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func scalarParam(t *testing.T, backend Backend, value float32) *nn.Parameter[Backend] {
	t.Helper()
	x, err := tensor.FromSlice([]float32{value}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	return nn.NewParameter("x", x)
}

func gradFor(param *nn.Parameter[Backend], value float32) map[*tensor.RawTensor]*tensor.RawTensor {
	grad := tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	grad.AsFloat32()[0] = value
	return map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): grad}
}

func TestSGD_SimpleUpdate(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 2)

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1}, backend)
	optimizer.Step(gradFor(param, 1))

	// x = 2 - 0.1 * 1
	assert.InDelta(t, 1.9, param.Tensor().Item(), 1e-6)
	require.NotNil(t, param.Grad())
	assert.Equal(t, float32(1), param.Grad().Item())

	optimizer.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestSGD_WithMomentum(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1)

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, backend)

	// v1 = 1, x1 = 0.9
	optimizer.Step(gradFor(param, 1))
	assert.InDelta(t, 0.9, param.Tensor().Item(), 1e-6)

	// v2 = 0.9 + 1 = 1.9, x2 = 0.9 - 0.19
	optimizer.Step(gradFor(param, 1))
	assert.InDelta(t, 0.71, param.Tensor().Item(), 1e-5)

	state := optimizer.StateDict()
	require.Contains(t, state, "velocity.0")
	assert.InDelta(t, 1.9, state["velocity.0"].AsFloat32()[0], 1e-6)

	restored := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, backend)
	require.NoError(t, restored.LoadStateDict(state))
	assert.InDelta(t, 1.9, restored.StateDict()["velocity.0"].AsFloat32()[0], 1e-6)

	bad := map[string]*tensor.RawTensor{"velocity.0": tensor.MustNewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)}
	assert.ErrorIs(t, restored.LoadStateDict(bad), nn.ErrShapeMismatch)
}

func TestSGD_Defaults(t *testing.T) {
	backend := autodiff.New(cpu.New())
	optimizer := optim.NewSGD[Backend](nil, optim.SGDConfig{}, backend)
	assert.Equal(t, float32(0.01), optimizer.GetLR())

	optimizer.SetLR(0.5)
	assert.Equal(t, float32(0.5), optimizer.GetLR())
	assert.Empty(t, optimizer.StateDict())
}

func TestSGD_SkipsMissingGradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	a := scalarParam(t, backend, 1)
	b := scalarParam(t, backend, 1)

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{a, b}, optim.SGDConfig{LR: 1}, backend)
	optimizer.Step(gradFor(a, 0.5))

	assert.InDelta(t, 0.5, a.Tensor().Item(), 1e-6)
	assert.Equal(t, float32(1), b.Tensor().Item())
	assert.Nil(t, b.Grad())
}

func TestAdam_FirstStep(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1)

	optimizer := optim.NewAdam([]*nn.Parameter[Backend]{param}, optim.AdamConfig{LR: 0.1}, backend)
	optimizer.Step(gradFor(param, 0.5))

	// With bias correction the first step moves by lr·sign(grad).
	assert.InDelta(t, 0.9, param.Tensor().Item(), 1e-5)
	assert.Equal(t, 1, optimizer.GetTimestep())

	state := optimizer.StateDict()
	assert.Contains(t, state, "m.0")
	assert.Contains(t, state, "v.0")

	restored := optim.NewAdam([]*nn.Parameter[Backend]{param}, optim.AdamConfig{}, backend)
	require.NoError(t, restored.LoadStateDict(state))
	assert.Equal(t, 1, restored.GetTimestep())
	assert.Equal(t, float32(0.001), restored.GetLR())
}

func TestAdam_WeightDecay(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1)

	optimizer := optim.NewAdam([]*nn.Parameter[Backend]{param}, optim.AdamConfig{LR: 0.1, WeightDecay: 0.5}, backend)
	optimizer.Step(gradFor(param, 0.5))

	// 1 - 0.1 * (1 + 0.5 * 1)
	assert.InDelta(t, 0.85, param.Tensor().Item(), 1e-5)
}

func TestNew(t *testing.T) {
	backend := autodiff.New(cpu.New())

	sgd, err := optim.New[Backend]("sgd", nil, 0.2, backend)
	require.NoError(t, err)
	assert.IsType(t, &optim.SGD[Backend]{}, sgd)
	assert.Equal(t, float32(0.2), sgd.GetLR())

	adam, err := optim.New[Backend]("adam", nil, 0.2, backend)
	require.NoError(t, err)
	assert.IsType(t, &optim.Adam[Backend]{}, adam)

	_, err = optim.New[Backend]("lbfgs", nil, 0.2, backend)
	assert.Error(t, err)
}

// Fitting an SCM to targets produced by a fixed linear map drives the loss down.
func TestConvergence_LinearSCM(t *testing.T) {
	backend := autodiff.New(cpu.New())

	model := nn.NewSCM(nn.SCMConfig[Backend]{InFeatures: 3, HiddenFeatures: 2}, random.NewKey(0), backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.5, Momentum: 0.5}, backend)
	mse := nn.NewMSELoss(backend)

	x, err := tensor.FromSlice([]float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 1, 1,
	}, tensor.Shape{4, 3}, backend)
	require.NoError(t, err)
	y, err := tensor.FromSlice([]float32{1, -1, 0.5, 0.5}, tensor.Shape{4}, backend)
	require.NoError(t, err)

	var first, last float32
	for step := range 200 {
		backend.Tape().StartRecording()
		loss := mse.Forward(model.Forward(x), y)
		grads := autodiff.Backward(loss, backend)
		optimizer.Step(grads)
		optimizer.ZeroGrad()
		backend.Tape().Clear()
		backend.Tape().StopRecording()

		if step == 0 {
			first = loss.Item()
		}
		last = loss.Item()
	}

	assert.Less(t, last, first/100)
	assert.Less(t, last, float32(1e-4))
}
