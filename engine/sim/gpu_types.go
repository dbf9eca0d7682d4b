package sim

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// IntegrateShaderSource is the WGSL compute shader that advances particle positions
// by velocity scaled with the frame's delta time. Work-group size 256, bounds-checked
// against the particle count in the globals uniform.
//
//go:embed assets/integrate.wgsl
var IntegrateShaderSource string

// PointVertexShaderSource is the WGSL vertex shader for the point pass. It pulls
// particle positions from a read-only storage binding indexed by vertex_index and
// transforms them by the camera's view-projection matrix.
//
//go:embed assets/point_vertex.wgsl
var PointVertexShaderSource string

// PointFragmentShaderSource is the WGSL fragment shader for the point pass.
// Flat color, no lighting.
//
//go:embed assets/point_fragment.wgsl
var PointFragmentShaderSource string

// Vec3 is a host-side 3-component vector used for particle positions and velocities.
type Vec3 struct {
	X, Y, Z float32
}

// GPUVec is the GPU-resident form of a particle vector. Each vec3 occupies a full
// 16-byte vec4<f32> slot so the storage buffer layout matches the WGSL array stride.
// W is kept at 1 for positions and 0 for velocities; the shaders only read xyz.
type GPUVec struct {
	X, Y, Z, W float32
}

// GPUVecStride is the byte stride of one particle vector on the GPU.
const GPUVecStride = uint64(unsafe.Sizeof(GPUVec{}))

// GPUSimGlobals is the GPU-aligned representation of the integrator's globals uniform.
// Matches the WGSL SimGlobals struct layout exactly (see IntegrateShaderSource).
// Size: 8 bytes.
type GPUSimGlobals struct {
	DeltaTime     float32 // offset 0: frame delta time in seconds, pre-scaled by the speed multiplier
	ParticleCount uint32  // offset 4: number of live particles, the dispatch bounds check
}

// Size returns the size of the GPUSimGlobals struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (8)
func (g *GPUSimGlobals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSimGlobals struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSimGlobals) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.DeltaTime))
	binary.LittleEndian.PutUint32(buf[4:], g.ParticleCount)
	return buf
}
