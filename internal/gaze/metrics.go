package gaze

import (
	"fmt"
	"math"

	"github.com/gaze-ml/gazenet/internal/nn"
	"github.com/gaze-ml/gazenet/internal/tensor"
)

// Metrics summarizes predictions against ground-truth gaze angles.
type Metrics struct {
	MSE          float64 // mean squared error over (pitch, yaw) in radians²
	AngularError float64 // mean angle between gaze vectors, degrees
}

// Vector converts a (pitch, yaw) pair in radians to a unit gaze direction in
// camera coordinates, looking down the negative z axis.
func Vector(pitch, yaw float64) [3]float64 {
	return [3]float64{
		-math.Cos(pitch) * math.Sin(yaw),
		-math.Sin(pitch),
		-math.Cos(pitch) * math.Cos(yaw),
	}
}

// AngularError returns the mean angle in degrees between predicted and target
// gaze directions. Both tensors are [N, 2] (pitch, yaw) in radians.
func AngularError[B tensor.Backend](pred, target *tensor.Tensor[float32, B]) (float64, error) {
	if err := checkAngles(pred, target); err != nil {
		return 0, err
	}
	p, g := pred.Data(), target.Data()
	n := pred.Shape()[0]
	if n == 0 {
		return 0, nil
	}

	var sum float64
	for i := range n {
		a := Vector(float64(p[2*i]), float64(p[2*i+1]))
		b := Vector(float64(g[2*i]), float64(g[2*i+1]))
		cos := a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
		sum += math.Acos(math.Max(-1, math.Min(1, cos)))
	}
	return sum / float64(n) * 180 / math.Pi, nil
}

// Evaluate runs Predict and scores the result against target ([N, 2]).
// It requires OutputDim == 2.
func (m *Model[B]) Evaluate(image, pose, target *tensor.Tensor[float32, B]) (Metrics, error) {
	pred, err := m.Predict(image, pose)
	if err != nil {
		return Metrics{}, err
	}
	angular, err := AngularError(pred, target)
	if err != nil {
		return Metrics{}, err
	}
	mse := nn.NewMSELoss(m.backend).Forward(pred, target).Item()
	return Metrics{MSE: float64(mse), AngularError: angular}, nil
}

func checkAngles[B tensor.Backend](pred, target *tensor.Tensor[float32, B]) error {
	if pred == nil || target == nil {
		return fmt.Errorf("%w: nil angles", ErrTargetShape)
	}
	if len(pred.Shape()) != 2 || pred.Shape()[1] != 2 {
		return fmt.Errorf("%w: predictions %v, expected [N 2]", ErrTargetShape, pred.Shape())
	}
	if !pred.Shape().Equal(target.Shape()) {
		return fmt.Errorf("%w: got %v, expected %v", ErrTargetShape, target.Shape(), pred.Shape())
	}
	return nil
}
