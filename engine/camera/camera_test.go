package camera

import (
	"encoding/binary"
	"math"
	"testing"
)

const epsilon = 1e-4

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

// transformPoint applies a column-major 4x4 matrix to a point (w=1) and
// performs the perspective divide.
func transformPoint(m [16]float32, x, y, z float32) (float32, float32, float32) {
	ox := m[0]*x + m[4]*y + m[8]*z + m[12]
	oy := m[1]*x + m[5]*y + m[9]*z + m[13]
	oz := m[2]*x + m[6]*y + m[10]*z + m[14]
	ow := m[3]*x + m[7]*y + m[11]*z + m[15]
	if ow != 0 && ow != 1 {
		ox /= ow
		oy /= ow
		oz /= ow
	}
	return ox, oy, oz
}

func TestNewCameraDefaults(t *testing.T) {
	cam := NewCamera()

	x, y, z := cam.Eye()
	if x != 0 || y != 5 || z != 15 {
		t.Errorf("Eye() = (%v, %v, %v), want (0, 5, 15)", x, y, z)
	}
	x, y, z = cam.Target()
	if x != 0 || y != 0 || z != 0 {
		t.Errorf("Target() = (%v, %v, %v), want origin", x, y, z)
	}
	if !almostEqual(cam.Fov(), 45.0*math.Pi/180.0) {
		t.Errorf("Fov() = %v, want 45 degrees in radians", cam.Fov())
	}
	if !almostEqual(cam.Aspect(), 800.0/600.0) {
		t.Errorf("Aspect() = %v, want 800/600", cam.Aspect())
	}
	if cam.Near() != 1 || cam.Far() != 100 {
		t.Errorf("Near()/Far() = %v/%v, want 1/100", cam.Near(), cam.Far())
	}
	if cam.BindGroupProvider() == nil {
		t.Error("BindGroupProvider() = nil, want a provider")
	}
}

func TestViewMatrixMapsEyeToOrigin(t *testing.T) {
	cam := NewCamera(WithEye(3, 4, 5))

	x, y, z := transformPoint(cam.ViewMatrix(), 3, 4, 5)
	if !almostEqual(x, 0) || !almostEqual(y, 0) || !almostEqual(z, 0) {
		t.Errorf("view * eye = (%v, %v, %v), want origin", x, y, z)
	}
}

func TestViewMatrixLooksDownNegativeZ(t *testing.T) {
	cam := NewCamera(WithEye(0, 0, 10), WithTarget(0, 0, 0))

	// The target sits 10 units in front of the eye, along -Z in view space.
	x, y, z := transformPoint(cam.ViewMatrix(), 0, 0, 0)
	if !almostEqual(x, 0) || !almostEqual(y, 0) || !almostEqual(z, -10) {
		t.Errorf("view * target = (%v, %v, %v), want (0, 0, -10)", x, y, z)
	}
}

func TestProjectionDepthRange(t *testing.T) {
	// WebGPU clip space maps the near plane to depth 0 and the far plane to 1.
	cam := NewCamera(WithEye(0, 0, 0), WithTarget(0, 0, -1), WithNear(1), WithFar(100))

	vp := cam.ViewProjectionMatrix()
	_, _, zNear := transformPoint(vp, 0, 0, -1)
	_, _, zFar := transformPoint(vp, 0, 0, -100)
	if !almostEqual(zNear, 0) {
		t.Errorf("near plane depth = %v, want 0", zNear)
	}
	if !almostEqual(zFar, 1) {
		t.Errorf("far plane depth = %v, want 1", zFar)
	}
}

func TestSetAspectRecomputesProjection(t *testing.T) {
	cam := NewCamera()
	before := cam.ProjectionMatrix()

	cam.SetAspect(2.0)

	if cam.Aspect() != 2.0 {
		t.Fatalf("Aspect() = %v, want 2.0", cam.Aspect())
	}
	after := cam.ProjectionMatrix()
	if almostEqual(before[0], after[0]) {
		t.Error("projection x scale unchanged after SetAspect")
	}
	if !almostEqual(before[5], after[5]) {
		t.Error("projection y scale changed after SetAspect, want unchanged")
	}
}

func TestViewProjectionIsProjectionTimesView(t *testing.T) {
	cam := NewCamera(WithEye(1, 2, 3))

	// A point on the view axis should land at the same clip position whether
	// transformed by the combined matrix or by the parts in sequence.
	vx, vy, vz := transformPoint(cam.ViewMatrix(), 0, 0, 0)
	px, py, pz := transformPoint(cam.ProjectionMatrix(), vx, vy, vz)
	cx, cy, cz := transformPoint(cam.ViewProjectionMatrix(), 0, 0, 0)
	if !almostEqual(px, cx) || !almostEqual(py, cy) || !almostEqual(pz, cz) {
		t.Errorf("combined = (%v, %v, %v), sequential = (%v, %v, %v)", cx, cy, cz, px, py, pz)
	}
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	uniform := GPUCameraUniform{}
	for i := range uniform.ViewProj {
		uniform.ViewProj[i] = float32(i)
	}

	if uniform.Size() != 64 {
		t.Fatalf("Size() = %d, want 64", uniform.Size())
	}
	buf := uniform.Marshal()
	if len(buf) != 64 {
		t.Fatalf("len(Marshal()) = %d, want 64", len(buf))
	}
	for i := range uniform.ViewProj {
		got := binary.LittleEndian.Uint32(buf[i*4:])
		if got != math.Float32bits(float32(i)) {
			t.Errorf("element %d bits = %#x, want %#x", i, got, math.Float32bits(float32(i)))
		}
	}
}
