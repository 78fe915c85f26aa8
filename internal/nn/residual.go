package nn

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// BasicBlock is a pre-activation residual block (He et al., 2016):
//
//	x' = relu(bn1(x))
//	y  = conv2(relu(bn2(conv1(x'))))
//	out = y + shortcut(x')
//
// conv1 is 3x3 with the block's stride, conv2 is 3x3 with stride 1, both
// padded by 1 and without bias. The shortcut is the identity when the block
// keeps both channel count and resolution, otherwise a 1x1 convolution with
// the block's stride.
//
// Output shape: [N, out, ceil(H/stride), ceil(W/stride)].
type BasicBlock[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	stride      int

	bn1      *BatchNorm2D[B]
	conv1    *Conv2D[B]
	bn2      *BatchNorm2D[B]
	conv2    *Conv2D[B]
	relu     *ReLU[B]
	shortcut *Conv2D[B] // nil for identity
}

// NewBasicBlock creates a pre-activation residual block.
func NewBasicBlock[B tensor.Backend](inChannels, outChannels, stride int, backend B) *BasicBlock[B] {
	if stride <= 0 {
		panic(fmt.Sprintf("basic_block: invalid stride %d", stride))
	}
	b := &BasicBlock[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		stride:      stride,
		bn1:         NewBatchNorm2D(inChannels, backend),
		conv1:       NewConv2D(inChannels, outChannels, 3, 3, stride, 1, false, backend),
		bn2:         NewBatchNorm2D(outChannels, backend),
		conv2:       NewConv2D(outChannels, outChannels, 3, 3, 1, 1, false, backend),
		relu:        NewReLU[B](),
	}
	if inChannels != outChannels || stride != 1 {
		b.shortcut = NewConv2D(inChannels, outChannels, 1, 1, stride, 0, false, backend)
	}
	return b
}

// Forward performs the forward pass.
func (b *BasicBlock[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x := b.relu.Forward(b.bn1.Forward(input))

	y := b.conv1.Forward(x)
	y = b.conv2.Forward(b.relu.Forward(b.bn2.Forward(y)))

	residual := x
	if b.shortcut != nil {
		residual = b.shortcut.Forward(x)
	}
	return y.Add(residual)
}

// Children returns the block's layers in evaluation order.
func (b *BasicBlock[B]) Children() []Module[B] {
	children := []Module[B]{b.bn1, b.conv1, b.bn2, b.conv2}
	if b.shortcut != nil {
		children = append(children, b.shortcut)
	}
	return children
}

// Parameters returns all trainable parameters of the block.
func (b *BasicBlock[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range b.Children() {
		params = append(params, m.Parameters()...)
	}
	return params
}

func (b *BasicBlock[B]) named() map[string]Module[B] {
	m := map[string]Module[B]{
		"bn1":   b.bn1,
		"conv1": b.conv1,
		"bn2":   b.bn2,
		"conv2": b.conv2,
	}
	if b.shortcut != nil {
		m["shortcut"] = b.shortcut
	}
	return m
}

// StateDict returns the block's state under "bn1.", "conv1.", "bn2.",
// "conv2." and, for projecting blocks, "shortcut.".
func (b *BasicBlock[B]) StateDict() map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor)
	for name, m := range b.named() {
		MergeStateDict(sd, name, m.StateDict())
	}
	return sd
}

// LoadStateDict restores the block's layers.
func (b *BasicBlock[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for name, m := range b.named() {
		if err := m.LoadStateDict(SubStateDict(stateDict, name)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// HasProjection reports whether the shortcut is a 1x1 convolution.
func (b *BasicBlock[B]) HasProjection() bool {
	return b.shortcut != nil
}

// String returns a string representation of the block.
func (b *BasicBlock[B]) String() string {
	return fmt.Sprintf("BasicBlock(%d, %d, stride=%d, projection=%v)",
		b.inChannels, b.outChannels, b.stride, b.shortcut != nil)
}

// NewStage stacks nBlocks residual blocks. The first block maps inChannels to
// outChannels with the given stride, the rest keep outChannels at stride 1.
func NewStage[B tensor.Backend](inChannels, outChannels, nBlocks, stride int, backend B) *Sequential[B] {
	if nBlocks <= 0 {
		panic(fmt.Sprintf("stage: invalid number of blocks %d", nBlocks))
	}
	stage := NewSequential[B](NewBasicBlock(inChannels, outChannels, stride, backend))
	for i := 1; i < nBlocks; i++ {
		stage.Add(NewBasicBlock(outChannels, outChannels, 1, backend))
	}
	return stage
}
