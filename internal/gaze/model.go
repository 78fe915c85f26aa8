// Package gaze implements the gaze-estimation network: a pre-activation
// ResNet backbone over eye images followed by a feature gate, plus an
// optional regression head that mixes in head pose.
package gaze

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/gaze-ml/gazenet/internal/nn"
	"github.com/gaze-ml/gazenet/internal/tensor"
)

// component is a named top-level module. Names prefix the state dict.
type component[B tensor.Backend] struct {
	name   string
	module nn.Module[B]
}

// Model is the gaze network.
//
//	conv(C->base) -> stage1(base, s1) -> stage2(2*base, s2) -> stage3(4*base, s2)
//	-> bn -> relu -> gate
//
// Predict additionally runs avgpool -> fc1 -> relu -> cat(pose) -> fc2.
//
// A Model in training mode mutates BatchNorm running statistics on every
// call and must not be used from several goroutines at once.
type Model[B tensor.Backend] struct {
	cfg     Config
	backend B

	conv   *nn.Conv2D[B]
	stages [3]*nn.Sequential[B]
	bn     *nn.BatchNorm2D[B]
	relu   *nn.ReLU[B]
	gate   nn.Module[B] // nil for GateNone
	pool   *nn.AdaptiveAvgPool2D[B]
	fc1    *nn.Linear[B]
	fc2    *nn.Linear[B]
}

// New builds a model from cfg and initializes its weights from cfg.Seed.
func New[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.InputShape = slices.Clone(cfg.InputShape)

	base := cfg.BaseChannels
	n := cfg.BlocksPerStage()
	width := 4 * base

	m := &Model[B]{
		cfg:     cfg,
		backend: backend,
		conv:    nn.NewConv2D(cfg.InputShape[0], base, 3, 3, 1, 1, false, backend),
		stages: [3]*nn.Sequential[B]{
			nn.NewStage(base, base, n, 1, backend),
			nn.NewStage(base, 2*base, n, 2, backend),
			nn.NewStage(2*base, width, n, 2, backend),
		},
		bn:   nn.NewBatchNorm2D(width, backend),
		relu: nn.NewReLU[B](),
		pool: nn.NewAdaptiveAvgPool2D(backend),
		fc1:  nn.NewLinear(width, cfg.HiddenDim, backend),
		fc2:  nn.NewLinear(cfg.HiddenDim+cfg.PoseDim, cfg.OutputDim, backend),
	}

	switch cfg.Gate {
	case GateCovariance:
		m.gate = nn.NewCovarianceGate(width, backend)
	case GateSpatial:
		m.gate = nn.NewSpatialAttention(width, backend)
	}

	m.initialize(rand.New(rand.NewSource(cfg.Seed))) //nolint:gosec // G404: seeded for reproducible weights
	m.SetTraining(cfg.Training)
	return m, nil
}

func (m *Model[B]) components() []component[B] {
	cs := []component[B]{
		{"conv", m.conv},
		{"stage1", m.stages[0]},
		{"stage2", m.stages[1]},
		{"stage3", m.stages[2]},
		{"bn", m.bn},
	}
	if m.gate != nil {
		cs = append(cs, component[B]{"gate", m.gate})
	}
	return append(cs, component[B]{"fc1", m.fc1}, component[B]{"fc2", m.fc2})
}

// initialize draws every weight from rng in a fixed order:
// backbone convolutions Kaiming normal (fan_out), BatchNorm 1/0, linear
// layers default uniform with zero bias. The covariance projection keeps
// the default uniform range; the spatial mask convolution uses N(0, 0.01²).
func (m *Model[B]) initialize(rng *rand.Rand) {
	backbone := []nn.Module[B]{m.conv, m.stages[0], m.stages[1], m.stages[2], m.bn}
	for _, c := range backbone {
		nn.Apply(c, func(mod nn.Module[B]) {
			switch l := mod.(type) {
			case *nn.Conv2D[B]:
				nn.KaimingNormal(l.Weight(), nn.FanOut, rng)
			case *nn.BatchNorm2D[B]:
				nn.Fill(l.Weight(), 1)
				nn.Fill(l.Bias(), 0)
			}
		})
	}

	switch g := m.gate.(type) {
	case *nn.CovarianceGate[B]:
		proj := g.Projection()
		bound := defaultBound(proj.Weight())
		nn.UniformFill(proj.Weight(), bound, rng)
		nn.UniformFill(proj.Bias(), bound, rng)
	case *nn.SpatialAttention[B]:
		conv := g.Conv()
		nn.Normal(conv.Weight(), 0, 0.01, rng)
		nn.UniformFill(conv.Bias(), defaultBound(conv.Weight()), rng)
	}

	for _, fc := range []*nn.Linear[B]{m.fc1, m.fc2} {
		nn.UniformFill(fc.Weight(), defaultBound(fc.Weight()), rng)
		nn.Fill(fc.Bias(), 0)
	}
}

// defaultBound returns 1/sqrt(fan_in) for a weight parameter.
func defaultBound[B tensor.Backend](w *nn.Parameter[B]) float64 {
	fanIn, _ := nn.Fans(w.Tensor().Shape())
	return 1 / math.Sqrt(float64(fanIn))
}

// Forward runs the backbone and gate. pose is validated but not used by the
// feature path; see Predict for the pose-aware head.
//
// Input: image [N, C, H, W] matching Config.InputShape, pose [N, PoseDim].
// Output: [N, 4*BaseChannels, H/4, W/4] ([N, 64, 9, 15] by default).
func (m *Model[B]) Forward(image, pose *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := m.checkImage(image); err != nil {
		return nil, err
	}
	if err := m.checkPose(pose, image.Shape()[0]); err != nil {
		return nil, err
	}
	return m.gated(image), nil
}

// Features runs the backbone only (no gate).
func (m *Model[B]) Features(image *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := m.checkImage(image); err != nil {
		return nil, err
	}
	return m.backbone(image), nil
}

// Predict regresses gaze angles: gated features are pooled, passed through
// relu(fc1), joined with pose and projected by fc2 to [N, OutputDim].
func (m *Model[B]) Predict(image, pose *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := m.checkImage(image); err != nil {
		return nil, err
	}
	if err := m.checkPose(pose, image.Shape()[0]); err != nil {
		return nil, err
	}

	h := m.pool.Forward(m.gated(image)).Flatten()
	h = m.relu.Forward(m.fc1.Forward(h))
	h = tensor.Cat([]*tensor.Tensor[float32, B]{h, pose}, 1)
	return m.fc2.Forward(h), nil
}

func (m *Model[B]) backbone(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x = m.conv.Forward(x)
	for _, stage := range m.stages {
		x = stage.Forward(x)
	}
	return m.relu.Forward(m.bn.Forward(x))
}

func (m *Model[B]) gated(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x = m.backbone(x)
	if m.gate != nil {
		x = m.gate.Forward(x)
	}
	return x
}

func (m *Model[B]) checkImage(image *tensor.Tensor[float32, B]) error {
	if image == nil {
		return fmt.Errorf("%w: image is nil", ErrImageShape)
	}
	shape := image.Shape()
	if len(shape) != 4 || !tensor.Shape(m.cfg.InputShape).Equal(shape[1:]) {
		return fmt.Errorf("%w: got %v, expected [N %d %d %d]", ErrImageShape, shape,
			m.cfg.InputShape[0], m.cfg.InputShape[1], m.cfg.InputShape[2])
	}
	return nil
}

func (m *Model[B]) checkPose(pose *tensor.Tensor[float32, B], batch int) error {
	if pose == nil {
		return fmt.Errorf("%w: pose is nil", ErrPoseShape)
	}
	if want := (tensor.Shape{batch, m.cfg.PoseDim}); !pose.Shape().Equal(want) {
		return fmt.Errorf("%w: got %v, expected %v", ErrPoseShape, pose.Shape(), want)
	}
	return nil
}

// OutputShape returns the shape Forward produces for a batch of the given size.
func (m *Model[B]) OutputShape(batch int) tensor.Shape {
	h, w := m.cfg.featureHW()
	if m.cfg.Gate == GateSpatial {
		h, w = h/2, w/2
	}
	return tensor.Shape{batch, 4 * m.cfg.BaseChannels, h, w}
}

// Parameters returns every trainable parameter in state-dict order of components.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, c := range m.components() {
		params = append(params, c.module.Parameters()...)
	}
	return params
}

// NumParameters returns the number of scalar weights.
func (m *Model[B]) NumParameters() int {
	return nn.CountParameters(m.Parameters())
}

// StateDict returns parameters and BatchNorm buffers keyed by dotted path,
// e.g. "stage2.0.shortcut.weight" or "gate.proj.bias".
func (m *Model[B]) StateDict() map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor)
	for _, c := range m.components() {
		nn.MergeStateDict(sd, c.name, c.module.StateDict())
	}
	return sd
}

// LoadStateDict copies a state dict produced by StateDict into the model.
// Missing tensors and shape mismatches are errors; extra entries are ignored.
func (m *Model[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, c := range m.components() {
		if err := c.module.LoadStateDict(nn.SubStateDict(stateDict, c.name)); err != nil {
			return fmt.Errorf("load %s: %w", c.name, err)
		}
	}
	return nil
}

// SetTraining switches every BatchNorm layer between batch statistics
// (true) and running statistics (false).
func (m *Model[B]) SetTraining(training bool) {
	m.cfg.Training = training
	for _, c := range m.components() {
		nn.SetTraining(c.module, training)
	}
}

// Training reports whether BatchNorm layers use batch statistics.
func (m *Model[B]) Training() bool {
	return m.cfg.Training
}

// Config returns a copy of the model's configuration.
func (m *Model[B]) Config() Config {
	cfg := m.cfg
	cfg.InputShape = slices.Clone(cfg.InputShape)
	return cfg
}

// Backend returns the compute backend.
func (m *Model[B]) Backend() B {
	return m.backend
}

// String returns a one-line summary of the model.
func (m *Model[B]) String() string {
	return fmt.Sprintf("GazeNet(depth=%d, base=%d, input=%v, gate=%s, params=%d)",
		m.cfg.Depth, m.cfg.BaseChannels, m.cfg.InputShape, m.cfg.Gate, m.NumParameters())
}
