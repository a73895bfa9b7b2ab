package autodiff_test

import (
	"math"
	"testing"

	"github.com/netdyn/netdyn/internal/autodiff"
	"github.com/netdyn/netdyn/internal/backend/cpu"
	"github.com/netdyn/netdyn/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newRecording() Backend {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	return backend
}

func fromSlice(t *testing.T, data []float64, shape tensor.Shape, backend Backend) *tensor.Tensor[float64, Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, backend)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return x
}

func assertClose(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: len = %d, want %d", name, len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

// TestAutodiffBackend_Name tests the Name method.
func TestAutodiffBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	expected := "Autodiff(CPU)"
	if backend.Name() != expected {
		t.Errorf("Name() = %s, want %s", backend.Name(), expected)
	}
}

// TestAutodiffBackend_Device tests the Device method.
func TestAutodiffBackend_Device(t *testing.T) {
	backend := autodiff.New(cpu.New())
	if backend.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want %v", backend.Device(), tensor.CPU)
	}
}

// TestTape_Recording tests tape recording on/off.
func TestTape_Recording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	if tape.IsRecording() {
		t.Error("Tape should not be recording initially")
	}

	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("Tape should be recording after StartRecording()")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("Tape should not be recording after StopRecording()")
	}
}

// TestTape_Clear tests tape clearing.
func TestTape_Clear(t *testing.T) {
	backend := newRecording()
	tape := backend.Tape()

	a := fromSlice(t, []float64{1, 2}, tensor.Shape{2}, backend)
	_ = a.Add(a).Mul(a)

	if tape.NumOps() != 2 {
		t.Fatalf("NumOps() = %d, want 2", tape.NumOps())
	}

	tape.Clear()
	if tape.NumOps() != 0 {
		t.Errorf("NumOps() after Clear = %d, want 0", tape.NumOps())
	}
	if !tape.IsRecording() {
		t.Error("Clear should preserve recording state")
	}
}

// TestBackward_Square checks d(sum x²)/dx = 2x.
func TestBackward_Square(t *testing.T) {
	backend := newRecording()

	x := fromSlice(t, []float64{1, -2, 3}, tensor.Shape{3}, backend)
	y := x.Mul(x).Sum()

	grads := autodiff.Backward(y, backend)
	assertClose(t, "grad", grads[x.Raw()].AsFloat64(), []float64{2, -4, 6})
}

// TestBackward_Broadcast checks gradients are reduced over broadcast dims.
func TestBackward_Broadcast(t *testing.T) {
	backend := newRecording()

	x := fromSlice(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	b := fromSlice(t, []float64{10, 20, 30}, tensor.Shape{3}, backend)
	s := fromSlice(t, []float64{2}, tensor.Shape{}, backend)

	y := x.Add(b).Mul(s).Sum()
	grads := autodiff.Backward(y, backend)

	assertClose(t, "grad_x", grads[x.Raw()].AsFloat64(), []float64{2, 2, 2, 2, 2, 2})
	assertClose(t, "grad_b", grads[b.Raw()].AsFloat64(), []float64{4, 4, 4})
	// ds = sum(x + b) = 21 + 120
	assertClose(t, "grad_s", grads[s.Raw()].AsFloat64(), []float64{141})
}

// TestBackward_MatMul checks both matmul gradients against hand-computed values.
func TestBackward_MatMul(t *testing.T) {
	backend := newRecording()

	a := fromSlice(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	b := fromSlice(t, []float64{5, 6, 7, 8}, tensor.Shape{2, 2}, backend)

	y := a.MatMul(b).Sum()
	grads := autodiff.Backward(y, backend)

	// grad_a = ones @ b^T, grad_b = a^T @ ones
	assertClose(t, "grad_a", grads[a.Raw()].AsFloat64(), []float64{11, 15, 11, 15})
	assertClose(t, "grad_b", grads[b.Raw()].AsFloat64(), []float64{4, 4, 6, 6})
}

// TestBackward_Reuse checks gradient accumulation for tensors used twice.
func TestBackward_Reuse(t *testing.T) {
	backend := newRecording()

	x := fromSlice(t, []float64{3}, tensor.Shape{1}, backend)
	y := x.Mul(x).Add(x).Sum() // x² + x

	grads := autodiff.Backward(y, backend)
	assertClose(t, "grad", grads[x.Raw()].AsFloat64(), []float64{7})
}

// TestBackward_UnusedTensor checks that tensors off the path have no gradient.
func TestBackward_UnusedTensor(t *testing.T) {
	backend := newRecording()

	x := fromSlice(t, []float64{1, 2}, tensor.Shape{2}, backend)
	z := fromSlice(t, []float64{3, 4}, tensor.Shape{2}, backend)
	_ = z.Mul(z)
	y := x.Sum()

	grads := autodiff.Backward(y, backend)
	if _, ok := grads[z.Raw()]; ok {
		t.Error("unused tensor should have no gradient")
	}
}

// TestStopGradient checks that no gradient reaches a stopped tensor.
func TestStopGradient(t *testing.T) {
	backend := newRecording()

	w := fromSlice(t, []float64{1, 2}, tensor.Shape{2}, backend)
	frozen := tensor.New[float64](backend.StopGradient(w.Raw()), backend)
	x := fromSlice(t, []float64{3, 4}, tensor.Shape{2}, backend)

	y := frozen.Mul(x).Sum()
	if y.Item() != 11 {
		t.Fatalf("forward value = %v, want 11", y.Item())
	}

	grads := autodiff.Backward(y, backend)
	if _, ok := grads[w.Raw()]; ok {
		t.Error("stopped tensor should have no gradient")
	}
	assertClose(t, "grad_x", grads[x.Raw()].AsFloat64(), []float64{1, 2})
}

// TestBackward_NotRecording checks the panic for an empty tape.
func TestBackward_NotRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := fromSlice(t, []float64{1}, tensor.Shape{1}, backend)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty tape")
		}
	}()
	autodiff.Backward(x.Sum(), backend)
}

// TestBackward_NoGradientOpsRecorded checks the tape is not extended by backward.
func TestBackward_NoGradientOpsRecorded(t *testing.T) {
	backend := newRecording()

	x := fromSlice(t, []float64{1, 2}, tensor.Shape{2}, backend)
	y := x.Mul(x).Sum()
	before := backend.Tape().NumOps()

	autodiff.Backward(y, backend)
	if backend.Tape().NumOps() != before {
		t.Errorf("NumOps() = %d after backward, want %d", backend.Tape().NumOps(), before)
	}
	if !backend.Tape().IsRecording() {
		t.Error("backward should restore recording state")
	}
}
