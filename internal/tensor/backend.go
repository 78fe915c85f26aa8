package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations and panic on
// shape errors; callers validate user input before reaching them.
//
// Implementations:
//   - CPU: Pure Go, parallelized over channels (internal/backend/cpu)
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by scalar.
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Convolutional operations
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor

	// GlobalAvgPool2D averages every channel over its spatial extent:
	// [N, C, H, W] -> [N, C, 1, 1].
	GlobalAvgPool2D(input *RawTensor) *RawTensor

	// BatchNorm2D normalizes each channel of [N, C, H, W] input:
	// y = (x - mean[c]) / sqrt(variance[c] + eps) * weight[c] + bias[c].
	// mean, variance, weight and bias have shape [C].
	BatchNorm2D(input, mean, variance, weight, bias *RawTensor, eps float64) *RawTensor

	// ChannelMoments returns the per-channel mean and biased variance of
	// [N, C, H, W] input computed over the N, H and W axes. Both have shape [C].
	ChannelMoments(input *RawTensor) (mean, variance *RawTensor)

	// TriuOuter computes, at every spatial location of [N, C, H, W] input, the
	// upper triangle (diagonal included) of the channel outer product x xᵀ,
	// serialized row-major into C(C+1)/2 channels: [N, C(C+1)/2, H, W].
	TriuOuter(input *RawTensor) *RawTensor

	// Activation functions
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
