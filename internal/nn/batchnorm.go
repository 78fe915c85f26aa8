package nn

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// BatchNorm2D normalizes each channel of a [N, C, H, W] input.
//
//	y = (x - mean[c]) / sqrt(var[c] + eps) * gamma[c] + beta[c]
//
// In evaluation mode (the default) mean and var are the running statistics.
// In training mode they are the statistics of the current batch and the
// running buffers are updated with an exponential moving average:
//
//	running = (1 - momentum) * running + momentum * batch
//
// where the batch variance fed to the running buffer is unbiased
// (multiplied by m/(m-1), m = N*H*W).
//
// Example:
//
//	bn := nn.NewBatchNorm2D(16, backend)
//	y := bn.Forward(x) // same shape as x
type BatchNorm2D[B tensor.Backend] struct {
	numFeatures int
	eps         float64
	momentum    float64
	training    bool

	weight *Parameter[B] // gamma [C], initialized to 1
	bias   *Parameter[B] // beta [C], initialized to 0

	runningMean *tensor.Tensor[float32, B] // [C], initialized to 0
	runningVar  *tensor.Tensor[float32, B] // [C], initialized to 1

	backend B
}

// Default BatchNorm2D hyperparameters.
const (
	DefaultBatchNormEps      = 1e-5
	DefaultBatchNormMomentum = 0.1
)

// NewBatchNorm2D creates a batch normalization layer over numFeatures channels
// in evaluation mode.
func NewBatchNorm2D[B tensor.Backend](numFeatures int, backend B) *BatchNorm2D[B] {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid number of features %d", numFeatures))
	}
	shape := tensor.Shape{numFeatures}
	return &BatchNorm2D[B]{
		numFeatures: numFeatures,
		eps:         DefaultBatchNormEps,
		momentum:    DefaultBatchNormMomentum,
		weight:      NewParameter("weight", tensor.Ones[float32](shape, backend)),
		bias:        NewParameter("bias", tensor.Zeros[float32](shape, backend)),
		runningMean: tensor.Zeros[float32](shape, backend),
		runningVar:  tensor.Ones[float32](shape, backend),
		backend:     backend,
	}
}

// Forward normalizes input with batch or running statistics depending on the mode.
func (bn *BatchNorm2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != bn.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != expected %d", shape[1], bn.numFeatures))
	}

	mean, variance := bn.runningMean.Raw(), bn.runningVar.Raw()
	if bn.training {
		mean, variance = bn.backend.ChannelMoments(input.Raw())
		bn.updateRunning(mean.AsFloat32(), variance.AsFloat32(), shape[0]*shape[2]*shape[3])
	}

	out := bn.backend.BatchNorm2D(input.Raw(), mean, variance,
		bn.weight.Tensor().Raw(), bn.bias.Tensor().Raw(), bn.eps)
	return tensor.New[float32, B](out, bn.backend)
}

func (bn *BatchNorm2D[B]) updateRunning(mean, variance []float32, count int) {
	correction := 1.0
	if count > 1 {
		correction = float64(count) / float64(count-1)
	}
	m := bn.momentum
	rm, rv := bn.runningMean.Data(), bn.runningVar.Data()
	for c := range rm {
		rm[c] = float32((1-m)*float64(rm[c]) + m*float64(mean[c]))
		rv[c] = float32((1-m)*float64(rv[c]) + m*float64(variance[c])*correction)
	}
}

// SetTraining switches between batch statistics (true) and running statistics (false).
func (bn *BatchNorm2D[B]) SetTraining(training bool) {
	bn.training = training
}

// Training reports whether the layer normalizes with batch statistics.
func (bn *BatchNorm2D[B]) Training() bool {
	return bn.training
}

// Parameters returns gamma and beta. Running statistics are buffers.
func (bn *BatchNorm2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.weight, bn.bias}
}

// StateDict returns "weight", "bias", "running_mean" and "running_var".
func (bn *BatchNorm2D[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight":       bn.weight.Tensor().Raw(),
		"bias":         bn.bias.Tensor().Raw(),
		"running_mean": bn.runningMean.Raw(),
		"running_var":  bn.runningVar.Raw(),
	}
}

// LoadStateDict restores parameters and running statistics.
func (bn *BatchNorm2D[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for name, dst := range bn.StateDict() {
		if err := loadNamed(stateDict, name, dst); err != nil {
			return err
		}
	}
	return nil
}

// Weight returns gamma.
func (bn *BatchNorm2D[B]) Weight() *Parameter[B] {
	return bn.weight
}

// Bias returns beta.
func (bn *BatchNorm2D[B]) Bias() *Parameter[B] {
	return bn.bias
}

// RunningMean returns the running mean buffer.
func (bn *BatchNorm2D[B]) RunningMean() *tensor.Tensor[float32, B] {
	return bn.runningMean
}

// RunningVar returns the running variance buffer.
func (bn *BatchNorm2D[B]) RunningVar() *tensor.Tensor[float32, B] {
	return bn.runningVar
}

// String returns a string representation of the layer.
func (bn *BatchNorm2D[B]) String() string {
	return fmt.Sprintf("BatchNorm2D(%d, eps=%g, momentum=%g)", bn.numFeatures, bn.eps, bn.momentum)
}
