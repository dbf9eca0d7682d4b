package common

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if got := m[i*4+j]; got != want {
				t.Errorf("Identity[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestMul4Identity(t *testing.T) {
	id := make([]float32, 16)
	Identity(id)

	m := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	out := make([]float32, 16)

	Mul4(out, id, m)
	for i := range m {
		if !approxEqual(out[i], m[i]) {
			t.Errorf("I*M [%d] = %v, want %v", i, out[i], m[i])
		}
	}

	Mul4(out, m, id)
	for i := range m {
		if !approxEqual(out[i], m[i]) {
			t.Errorf("M*I [%d] = %v, want %v", i, out[i], m[i])
		}
	}
}

func TestMul4Aliasing(t *testing.T) {
	// out may alias an input; the result must still be correct.
	a := []float32{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 2, 0,
		0, 0, 0, 1,
	}
	b := []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		3, 4, 5, 1,
	}
	Mul4(a, a, b)
	// scale(2) * translate(3,4,5): translation column scaled by 2.
	if !approxEqual(a[12], 6) || !approxEqual(a[13], 8) || !approxEqual(a[14], 10) {
		t.Errorf("translation column = (%v, %v, %v), want (6, 8, 10)", a[12], a[13], a[14])
	}
}

func TestLookAtOriginOnAxis(t *testing.T) {
	// Camera at (0,5,15) looking at the origin: the origin must land on the
	// view-space -Z axis at the eye-to-target distance.
	view := make([]float32, 16)
	LookAt(view, 0, 5, 15, 0, 0, 0, 0, 1, 0)

	// Transform the origin (0,0,0,1): result is the translation column.
	x, y, z := view[12], view[13], view[14]
	dist := float32(math.Sqrt(5*5 + 15*15))
	if !approxEqual(x, 0) || !approxEqual(y, 0) || !approxEqual(z, -dist) {
		t.Errorf("view*origin = (%v, %v, %v), want (0, 0, %v)", x, y, z, -dist)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := make([]float32, 16)
	near, far := float32(1), float32(100)
	Perspective(proj, float32(math.Pi/4), 800.0/600.0, near, far)

	// A point at -near must map to clip z/w = 0, a point at -far to 1 (WebGPU convention).
	mapDepth := func(viewZ float32) float32 {
		z := proj[10]*viewZ + proj[14]
		w := -viewZ
		return z / w
	}
	if got := mapDepth(-near); !approxEqual(got, 0) {
		t.Errorf("depth at near = %v, want 0", got)
	}
	if got := mapDepth(-far); !approxEqual(got, 1) {
		t.Errorf("depth at far = %v, want 1", got)
	}
}

func TestSliceToBytes(t *testing.T) {
	tests := []struct {
		name string
		data []float32
		want int
	}{
		{"empty", nil, 0},
		{"single", []float32{1}, 4},
		{"vector", []float32{1, 2, 3, 4}, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SliceToBytes(tt.data)
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		name  string
		v     uint64
		align uint64
		want  uint64
	}{
		{"zero", 0, 256, 0},
		{"exact", 256, 256, 256},
		{"below", 100, 256, 256},
		{"above", 257, 256, 512},
		{"particles", 100 * 16, 256, 1792},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlignUp(tt.v, tt.align); got != tt.want {
				t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.v, tt.align, got, tt.want)
			}
		})
	}
}
