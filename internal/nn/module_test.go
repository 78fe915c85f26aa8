package nn

import (
	"errors"
	"testing"

	"github.com/gaze-ml/gazenet/internal/backend/cpu"
	"github.com/gaze-ml/gazenet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cpuModule = Module[*cpu.CPUBackend]

func newStem(backend *cpu.CPUBackend) *Sequential[*cpu.CPUBackend] {
	return NewSequential[*cpu.CPUBackend](
		NewConv2D(3, 4, 3, 3, 1, 1, false, backend),
		NewBatchNorm2D(4, backend),
		NewReLU[*cpu.CPUBackend](),
	)
}

// TestSequential_Forward tests chaining and parameter collection.
func TestSequential_Forward(t *testing.T) {
	backend := cpu.New()
	stem := newStem(backend)

	out := stem.Forward(tensor.Zeros[float32](tensor.Shape{2, 3, 6, 10}, backend))
	assert.Equal(t, tensor.Shape{2, 4, 6, 10}, out.Shape())
	assert.Equal(t, 3, stem.Len())
	assert.Len(t, stem.Parameters(), 3)
	assert.Equal(t, 3*4*9+4+4, CountParameters(stem.Parameters()))
	assert.Panics(t, func() { stem.Module(3) })
}

// TestSequential_StateDictKeys tests index-prefixed names.
func TestSequential_StateDictKeys(t *testing.T) {
	stem := newStem(cpu.New())
	sd := stem.StateDict()

	assert.Len(t, sd, 5)
	for _, key := range []string{"0.weight", "1.weight", "1.bias", "1.running_mean", "1.running_var"} {
		assert.Contains(t, sd, key)
	}
}

// TestSequential_LoadStateDict tests copying state between two models.
func TestSequential_LoadStateDict(t *testing.T) {
	backend := cpu.New()
	src, dst := newStem(backend), newStem(backend)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	x := tensor.Randn[float32](tensor.Shape{1, 3, 4, 4}, nil, backend)
	assert.Equal(t, src.Forward(x).Data(), dst.Forward(x).Data())

	// Loading copies values; later edits to src do not leak into dst.
	Fill(src.Module(0).Parameters()[0], 0)
	assert.NotEqual(t, src.Forward(x).Data(), dst.Forward(x).Data())
}

// TestLoadStateDict_Errors tests missing tensors and shape mismatches.
func TestLoadStateDict_Errors(t *testing.T) {
	backend := cpu.New()
	stem := newStem(backend)

	sd := stem.StateDict()
	delete(sd, "1.running_var")
	err := newStem(backend).LoadStateDict(sd)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingTensor))
	assert.Contains(t, err.Error(), "running_var")

	sd = stem.StateDict()
	sd["0.weight"] = tensor.Zeros[float32](tensor.Shape{4, 3, 1, 1}, backend).Raw()
	err = newStem(backend).LoadStateDict(sd)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

// TestStateDictHelpers tests MergeStateDict and SubStateDict.
func TestStateDictHelpers(t *testing.T) {
	backend := cpu.New()
	w := tensor.Zeros[float32](tensor.Shape{1}, backend).Raw()

	merged := map[string]*tensor.RawTensor{}
	MergeStateDict(merged, "stage1.0", map[string]*tensor.RawTensor{"conv1.weight": w})
	assert.Contains(t, merged, "stage1.0.conv1.weight")

	sub := SubStateDict(merged, "stage1")
	assert.Contains(t, sub, "0.conv1.weight")
	assert.Empty(t, SubStateDict(merged, "stage"), "prefix must match a whole path segment")
}

// TestApply tests depth-first traversal and SetTraining.
func TestApply(t *testing.T) {
	backend := cpu.New()
	model := NewSequential[*cpu.CPUBackend](newStem(backend), NewStage(4, 8, 2, 2, backend))

	var visited int
	var convs int
	Apply[*cpu.CPUBackend](model, func(m cpuModule) {
		visited++
		if _, ok := m.(*Conv2D[*cpu.CPUBackend]); ok {
			convs++
		}
	})
	// model, stem(3 layers), stage, 2 blocks (5 and 4 children)
	assert.Equal(t, 1+1+3+1+2+5+4, visited)
	assert.Equal(t, 1+3+2, convs)

	SetTraining[*cpu.CPUBackend](model, true)
	Apply[*cpu.CPUBackend](model, func(m cpuModule) {
		if bn, ok := m.(*BatchNorm2D[*cpu.CPUBackend]); ok {
			assert.True(t, bn.Training())
		}
	})
}
