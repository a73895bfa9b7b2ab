package optim

import (
	"fmt"
	"math"

	"github.com/netdyn/netdyn/internal/nn"
	"github.com/netdyn/netdyn/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * (m_hat / (sqrt(v_hat) + eps) + weight_decay * param)
//
// A non-zero WeightDecay gives the decoupled (AdamW) variant.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[B tensor.Backend] struct {
	params      []*nn.Parameter[B]
	lr          float32
	beta1       float32
	beta2       float32
	eps         float32
	weightDecay float32
	t           int                                             // Timestep for bias correction
	m           map[*nn.Parameter[B]]*tensor.Tensor[float32, B] // First moment estimates
	v           map[*nn.Parameter[B]]*tensor.Tensor[float32, B] // Second moment estimates
	backend     B
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR          float32    // Learning rate (default: 0.001)
	Betas       [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps         float32    // Term for numerical stability (default: 1e-8)
	WeightDecay float32    // Decoupled weight decay (default: 0)
}

// NewAdam creates a new Adam optimizer, filling zero config fields with defaults.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig, backend B) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[B]{
		params:      params,
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
		m:           make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		v:           make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		backend:     backend,
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient are skipped.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++

	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := getGradient(param, grads, a.backend)
		if grad == nil {
			continue
		}

		m := a.moment(a.m, param)
		v := a.moment(a.v, param)

		gradData := grad.AsFloat32()
		mData, vData := m.Data(), v.Data()
		paramData := param.Tensor().Data()

		for i := range paramData {
			g := gradData[i]
			mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

			mHat := mData[i] / biasCorrection1
			vHat := vData[i] / biasCorrection2

			update := mHat/(float32(math.Sqrt(float64(vHat)))+a.eps) + a.weightDecay*paramData[i]
			paramData[i] -= a.lr * update
		}
	}
}

func (a *Adam[B]) moment(moments map[*nn.Parameter[B]]*tensor.Tensor[float32, B], param *nn.Parameter[B]) *tensor.Tensor[float32, B] {
	m, ok := moments[param]
	if !ok {
		m = tensor.Zeros[float32](param.Tensor().Shape(), a.backend)
		moments[param] = m
	}
	return m
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[B]) ZeroGrad() {
	zeroGrads(a.params)
}

// GetLR returns the current learning rate.
func (a *Adam[B]) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam[B]) SetLR(lr float32) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam[B]) GetTimestep() int {
	return a.t
}

// StateDict returns the moment buffers ("m.{i}", "v.{i}") and the timestep ("t").
func (a *Adam[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, param := range a.params {
		if m, ok := a.m[param]; ok {
			stateDict[fmt.Sprintf("m.%d", i)] = m.Raw()
		}
		if v, ok := a.v[param]; ok {
			stateDict[fmt.Sprintf("v.%d", i)] = v.Raw()
		}
	}

	t := tensor.MustNewRaw(tensor.Shape{}, tensor.Float64, a.backend.Device())
	t.AsFloat64()[0] = float64(a.t)
	stateDict["t"] = t

	return stateDict
}

// LoadStateDict restores moment buffers and the timestep.
func (a *Adam[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	m := make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B])
	v := make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B])

	for i, param := range a.params {
		for _, buf := range []struct {
			prefix string
			dst    map[*nn.Parameter[B]]*tensor.Tensor[float32, B]
		}{{"m", m}, {"v", v}} {
			name := fmt.Sprintf("%s.%d", buf.prefix, i)
			raw, ok := stateDict[name]
			if !ok {
				continue
			}
			loaded, err := loadBuffer(name, raw, param, a.backend)
			if err != nil {
				return err
			}
			buf.dst[param] = loaded
		}
	}

	if t, ok := stateDict["t"]; ok {
		a.t = int(t.ToFloat64()[0])
	}
	a.m, a.v = m, v
	return nil
}
