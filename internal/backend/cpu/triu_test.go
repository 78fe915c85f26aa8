package cpu

import (
	"testing"

	"github.com/gaze-ml/gazenet/internal/parallel"
	"github.com/gaze-ml/gazenet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTriuOuter_Order checks the serialized order for d=3 at one location:
// (0,0) (0,1) (0,2) (1,1) (1,2) (2,2).
func TestTriuOuter_Order(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 3, 1, 1}, 2, 3, 5)

	out := backend.TriuOuter(input)

	assert.True(t, out.Shape().Equal(tensor.Shape{1, 6, 1, 1}))
	assert.Equal(t, []float32{4, 6, 10, 9, 15, 25}, out.AsFloat32())
}

// TestTriuOuter_LastDiagonal checks that the final slot holds x[d-1]^2 and
// the first slot x[0]^2, i.e. no slot is overwritten.
func TestTriuOuter_LastDiagonal(t *testing.T) {
	backend := New()
	const d = 64
	data := make([]float32, d)
	for i := range data {
		data[i] = float32(i + 1)
	}
	input := rawFrom(t, tensor.Shape{1, d, 1, 1}, data...)

	out := backend.TriuOuter(input).AsFloat32()

	require.Len(t, out, d*(d+1)/2)
	assert.Equal(t, float32(1), out[0])
	assert.Equal(t, float32(d*d), out[len(out)-1])
}

// TestTriuOuter_AllPairs checks every slot against the index formula over a
// batch with several spatial locations.
func TestTriuOuter_AllPairs(t *testing.T) {
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1})
	const n, c, h, w = 2, 5, 2, 3
	input := rawFrom(t, tensor.Shape{n, c, h, w}, seq(n*c*h*w)...)
	in := input.AsFloat32()

	out := backend.TriuOuter(input)
	p := tensor.TriuSize(c)
	require.True(t, out.Shape().Equal(tensor.Shape{n, p, h, w}))
	data := out.AsFloat32()

	plane := h * w
	for b := 0; b < n; b++ {
		for r := 0; r < c; r++ {
			for col := r; col < c; col++ {
				k := tensor.TriuIndex(r, col, c)
				for i := 0; i < plane; i++ {
					want := in[(b*c+r)*plane+i] * in[(b*c+col)*plane+i]
					assert.Equal(t, want, data[(b*p+k)*plane+i], "b=%d r=%d c=%d i=%d", b, r, col, i)
				}
			}
		}
	}
}
