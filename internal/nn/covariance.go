package nn

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// CovarianceGate re-weights a feature map with second-order channel
// statistics. For x of shape [N, d, H, W]:
//
//	z = triu(x xᵀ)         // [N, d(d+1)/2, H, W], per spatial location
//	A = proj(z)            // 1x1 conv d(d+1)/2 -> d, with bias
//	G = avgpool(A)         // [N, d, 1, 1]
//	D = A*G + A
//	out = x*D + x
//
// The projection is built once at construction and reused by every call.
// Output shape equals input shape.
type CovarianceGate[B tensor.Backend] struct {
	channels int
	proj     *Conv2D[B]
	pool     *AdaptiveAvgPool2D[B]
	backend  B
}

// NewCovarianceGate creates a gate over feature maps with the given channel count.
func NewCovarianceGate[B tensor.Backend](channels int, backend B) *CovarianceGate[B] {
	if channels <= 0 {
		panic(fmt.Sprintf("covariance_gate: invalid channels %d", channels))
	}
	return &CovarianceGate[B]{
		channels: channels,
		proj:     NewConv2D(tensor.TriuSize(channels), channels, 1, 1, 1, 0, true, backend),
		pool:     NewAdaptiveAvgPool2D(backend),
		backend:  backend,
	}
}

// Forward performs the forward pass.
func (g *CovarianceGate[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("covariance_gate: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != g.channels {
		panic(fmt.Sprintf("covariance_gate: input channels %d != expected %d", shape[1], g.channels))
	}

	z := tensor.New[float32, B](g.backend.TriuOuter(input.Raw()), g.backend)
	a := g.proj.Forward(z)
	d := a.Mul(g.pool.Forward(a)).Add(a)
	return input.Mul(d).Add(input)
}

// Projection returns the 1x1 convolution applied to the triangle features.
func (g *CovarianceGate[B]) Projection() *Conv2D[B] {
	return g.proj
}

// Children returns the projection.
func (g *CovarianceGate[B]) Children() []Module[B] {
	return []Module[B]{g.proj}
}

// Parameters returns the projection's weight and bias.
func (g *CovarianceGate[B]) Parameters() []*Parameter[B] {
	return g.proj.Parameters()
}

// StateDict returns "proj.weight" and "proj.bias".
func (g *CovarianceGate[B]) StateDict() map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor)
	MergeStateDict(sd, "proj", g.proj.StateDict())
	return sd
}

// LoadStateDict restores the projection.
func (g *CovarianceGate[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := g.proj.LoadStateDict(SubStateDict(stateDict, "proj")); err != nil {
		return fmt.Errorf("proj: %w", err)
	}
	return nil
}

// String returns a string representation of the gate.
func (g *CovarianceGate[B]) String() string {
	return fmt.Sprintf("CovarianceGate(channels=%d, triu=%d)", g.channels, tensor.TriuSize(g.channels))
}
