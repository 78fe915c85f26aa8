package nn

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// SpatialAttention gates a downsampled feature map with a single-channel mask:
//
//	x = maxpool2x2(x)
//	z = sigmoid(conv3x3(x))  // [N, 1, H/2, W/2]
//	out = x*z + x
//
// The output has the input's channels and half its resolution (floor).
type SpatialAttention[B tensor.Backend] struct {
	channels int
	pool     *MaxPool2D[B]
	conv     *Conv2D[B]
	sigmoid  *Sigmoid[B]
}

// NewSpatialAttention creates a spatial attention gate over the given channel count.
func NewSpatialAttention[B tensor.Backend](channels int, backend B) *SpatialAttention[B] {
	return &SpatialAttention[B]{
		channels: channels,
		pool:     NewMaxPool2D(2, 2, backend),
		conv:     NewConv2D(channels, 1, 3, 3, 1, 1, true, backend),
		sigmoid:  NewSigmoid[B](),
	}
}

// Forward performs the forward pass.
func (s *SpatialAttention[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x := s.pool.Forward(input)
	z := s.sigmoid.Forward(s.conv.Forward(x))
	return x.Mul(z).Add(x)
}

// Conv returns the mask convolution.
func (s *SpatialAttention[B]) Conv() *Conv2D[B] {
	return s.conv
}

// Children returns the mask convolution.
func (s *SpatialAttention[B]) Children() []Module[B] {
	return []Module[B]{s.conv}
}

// Parameters returns the mask convolution's weight and bias.
func (s *SpatialAttention[B]) Parameters() []*Parameter[B] {
	return s.conv.Parameters()
}

// StateDict returns "conv.weight" and "conv.bias".
func (s *SpatialAttention[B]) StateDict() map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor)
	MergeStateDict(sd, "conv", s.conv.StateDict())
	return sd
}

// LoadStateDict restores the mask convolution.
func (s *SpatialAttention[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := s.conv.LoadStateDict(SubStateDict(stateDict, "conv")); err != nil {
		return fmt.Errorf("conv: %w", err)
	}
	return nil
}

// String returns a string representation of the gate.
func (s *SpatialAttention[B]) String() string {
	return fmt.Sprintf("SpatialAttention(channels=%d)", s.channels)
}
