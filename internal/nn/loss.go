package nn

import (
	"fmt"

	"github.com/gaze-ml/gazenet/internal/tensor"
)

// MSELoss computes Mean Squared Error between predictions and targets.
//
// Loss = mean((predictions - targets)²)
//
// It is an evaluation metric: nothing is differentiated.
//
// Example:
//
//	mse := nn.NewMSELoss(backend)
//	angles, _ := model.Predict(image, pose)
//	loss := mse.Forward(angles, targets).Item()
type MSELoss[B tensor.Backend] struct {
	backend B
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return &MSELoss[B]{
		backend: backend,
	}
}

// Forward returns the loss as a tensor of shape [1].
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("mse_loss: shape mismatch %v vs %v", predictions.Shape(), targets.Shape()))
	}

	diff := predictions.Sub(targets)
	squared := diff.Mul(diff).Data()

	var sum float64
	for _, v := range squared {
		sum += float64(v)
	}
	var mean float32
	if len(squared) > 0 {
		mean = float32(sum / float64(len(squared)))
	}

	return tensor.Full[float32](tensor.Shape{1}, mean, m.backend)
}

// Parameters returns nil; losses have no trainable parameters.
func (m *MSELoss[B]) Parameters() []*Parameter[B] {
	return nil
}
