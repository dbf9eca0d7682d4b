package sim

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/Carmen-Shannon/crystal-go/common"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bindings of the integrate compute shader's group 0 and the point vertex
// shader's group 1. Must match the WGSL declarations in assets/.
const (
	globalsBinding         = 0
	positionsBinding       = 1
	velocitiesBinding      = 2
	renderPositionsBinding = 0
)

// storageOffsetAlignment is the minimum storage buffer offset alignment required
// for ranged bindings on all mainstream adapters.
const storageOffsetAlignment = 256

// bufferCount is an atomic counter used to generate unique bind group provider names.
var bufferCount atomic.Uint64

// particleBuffer is the implementation of the ParticleBuffer interface.
// It owns the host mirror of both particle blocks and the providers that
// expose the shared GPU buffer to the compute and render passes.
type particleBuffer struct {
	count int

	// Host mirror. positions is mutated only by the integrator; velocities are
	// immutable after construction.
	positions  []GPUVec
	velocities []GPUVec

	// velocityOffset is the byte offset of the velocity block within the shared
	// GPU buffer: align(count*stride, 256).
	velocityOffset uint64

	// Seeding configuration applied at construction.
	initialVelocity Vec3
	lattice         bool
	gridSize        float32

	computeProvider bind_group_provider.BindGroupProvider
	renderProvider  bind_group_provider.BindGroupProvider

	uploaded bool
}

// ParticleBuffer owns the particle population: a host mirror of positions and
// velocities plus the GPU-resident storage buffer holding both blocks. The GPU
// buffer is a single allocation; positions live at offset 0 and velocities at
// an aligned offset after them, exposed as two ranged bindings of one bind group.
type ParticleBuffer interface {
	// Count returns the number of particles. Fixed for the buffer's lifetime.
	//
	// Returns:
	//   - int: the particle count
	Count() int

	// Positions returns a copy of the current host-side particle positions.
	//
	// Returns:
	//   - []Vec3: position copies, one per particle
	Positions() []Vec3

	// Velocities returns a copy of the host-side particle velocities.
	//
	// Returns:
	//   - []Vec3: velocity copies, one per particle
	Velocities() []Vec3

	// PositionData returns the live host mirror of the position block.
	// Single writer per frame (the integrator); callers must not retain the
	// slice across uploads.
	//
	// Returns:
	//   - []GPUVec: the live position block
	PositionData() []GPUVec

	// VelocityData returns the live host mirror of the velocity block.
	//
	// Returns:
	//   - []GPUVec: the live velocity block
	VelocityData() []GPUVec

	// VelocityOffset returns the byte offset of the velocity block within the
	// shared GPU buffer.
	//
	// Returns:
	//   - uint64: the aligned byte offset
	VelocityOffset() uint64

	// ComputeProvider returns the bind group provider for the integrate pass
	// (globals uniform + both particle blocks). Bind group resources exist only
	// after Upload.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the compute-side provider
	ComputeProvider() bind_group_provider.BindGroupProvider

	// RenderProvider returns the bind group provider for the point pass
	// (read-only positions block). Bind group resources exist only after Upload.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the render-side provider
	RenderProvider() bind_group_provider.BindGroupProvider

	// Upload allocates the shared GPU buffer, wires the ranged bindings on both
	// providers, creates their bind groups, and stages the initial block writes.
	//
	// Parameters:
	//   - r: the renderer that owns the GPU device
	//   - integrateShader: the compute shader whose group 0 layout describes the compute bindings
	//   - pointVertexShader: the vertex shader whose group 1 layout describes the render binding
	//
	// Returns:
	//   - error: an error if GPU resource creation fails
	Upload(r renderer.Renderer, integrateShader, pointVertexShader shader.Shader) error

	// StagePositionWrite returns a BufferWrite that re-uploads the host position
	// block to the GPU. Used by the CPU integrator backend to publish its results.
	//
	// Returns:
	//   - bind_group_provider.BufferWrite: the staged write for the position block
	StagePositionWrite() bind_group_provider.BufferWrite

	// Release releases the GPU resources held by both providers.
	Release()
}

var _ ParticleBuffer = &particleBuffer{}

// NewParticleBuffer creates a particle population of the given count. Positions
// default to the origin and velocities to (0.01, 0, 0); both are configurable
// through options. Panics if count is not positive.
//
// Parameters:
//   - count: the number of particles, fixed for the buffer's lifetime
//   - options: functional options to configure seeding
//
// Returns:
//   - ParticleBuffer: the seeded host mirror, not yet uploaded
func NewParticleBuffer(count int, options ...ParticleBufferOption) ParticleBuffer {
	if count <= 0 {
		panic(fmt.Sprintf("sim: particle count must be positive, got %d", count))
	}
	id := strconv.FormatUint(bufferCount.Add(1), 10)
	b := &particleBuffer{
		count:           count,
		positions:       make([]GPUVec, count),
		velocities:      make([]GPUVec, count),
		velocityOffset:  common.AlignUp(uint64(count)*GPUVecStride, storageOffsetAlignment),
		initialVelocity: Vec3{X: 0.01},
		gridSize:        0.1,
		computeProvider: bind_group_provider.NewBindGroupProvider("particles_compute_" + id),
		renderProvider:  bind_group_provider.NewBindGroupProvider("particles_render_" + id),
	}
	for _, opt := range options {
		opt(b)
	}
	b.seed()
	return b
}

// seed fills the host mirror per the configured seeding mode.
func (b *particleBuffer) seed() {
	if b.lattice {
		// Cubic lattice centered on the origin with gridSize spacing.
		side := int(math.Ceil(math.Cbrt(float64(b.count))))
		half := float32(side-1) / 2
		for i := range b.positions {
			x := i % side
			y := (i / side) % side
			z := i / (side * side)
			b.positions[i] = GPUVec{
				X: (float32(x) - half) * b.gridSize,
				Y: (float32(y) - half) * b.gridSize,
				Z: (float32(z) - half) * b.gridSize,
				W: 1,
			}
		}
	} else {
		for i := range b.positions {
			b.positions[i] = GPUVec{W: 1}
		}
	}

	for i := range b.velocities {
		b.velocities[i] = GPUVec{X: b.initialVelocity.X, Y: b.initialVelocity.Y, Z: b.initialVelocity.Z}
	}
}

func (b *particleBuffer) Count() int {
	return b.count
}

func (b *particleBuffer) Positions() []Vec3 {
	out := make([]Vec3, b.count)
	for i, p := range b.positions {
		out[i] = Vec3{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out
}

func (b *particleBuffer) Velocities() []Vec3 {
	out := make([]Vec3, b.count)
	for i, v := range b.velocities {
		out[i] = Vec3{X: v.X, Y: v.Y, Z: v.Z}
	}
	return out
}

func (b *particleBuffer) PositionData() []GPUVec {
	return b.positions
}

func (b *particleBuffer) VelocityData() []GPUVec {
	return b.velocities
}

func (b *particleBuffer) VelocityOffset() uint64 {
	return b.velocityOffset
}

func (b *particleBuffer) ComputeProvider() bind_group_provider.BindGroupProvider {
	return b.computeProvider
}

func (b *particleBuffer) RenderProvider() bind_group_provider.BindGroupProvider {
	return b.renderProvider
}

func (b *particleBuffer) Upload(r renderer.Renderer, integrateShader, pointVertexShader shader.Shader) error {
	if b.uploaded {
		return fmt.Errorf("particle buffer already uploaded")
	}

	blockSize := uint64(b.count) * GPUVecStride
	totalSize := b.velocityOffset + blockSize

	buf, err := r.CreateStorageBuffer(
		"Particle Buffer",
		totalSize,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst|wgpu.BufferUsageVertex,
	)
	if err != nil {
		return fmt.Errorf("failed to create particle buffer: %w", err)
	}

	// Both particle bindings view the one buffer through distinct byte windows.
	// The globals uniform (binding 0) is created by InitBindGroup from its
	// MinBindingSize.
	b.computeProvider.SetBuffer(positionsBinding, buf)
	b.computeProvider.SetBufferRange(positionsBinding, 0, blockSize)
	b.computeProvider.SetBuffer(velocitiesBinding, buf)
	b.computeProvider.SetBufferRange(velocitiesBinding, b.velocityOffset, blockSize)

	if err := r.InitBindGroup(b.computeProvider, integrateShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		return fmt.Errorf("failed to init compute bind group: %w", err)
	}

	b.renderProvider.SetBuffer(renderPositionsBinding, buf)
	b.renderProvider.SetBufferRange(renderPositionsBinding, 0, blockSize)

	if err := r.InitBindGroup(b.renderProvider, pointVertexShader.BindGroupLayoutDescriptor(1), nil, nil); err != nil {
		return fmt.Errorf("failed to init render bind group: %w", err)
	}

	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: b.computeProvider,
			Binding:  positionsBinding,
			Offset:   0,
			Data:     common.SliceToBytes(b.positions),
		},
		{
			Provider: b.computeProvider,
			Binding:  positionsBinding,
			Offset:   b.velocityOffset,
			Data:     common.SliceToBytes(b.velocities),
		},
	})

	b.uploaded = true
	return nil
}

func (b *particleBuffer) StagePositionWrite() bind_group_provider.BufferWrite {
	return bind_group_provider.BufferWrite{
		Provider: b.computeProvider,
		Binding:  positionsBinding,
		Offset:   0,
		Data:     common.SliceToBytes(b.positions),
	}
}

func (b *particleBuffer) Release() {
	// The render provider shares the particle buffer with the compute provider;
	// clear its reference so only the compute provider releases it.
	b.renderProvider.SetBuffer(renderPositionsBinding, nil)
	b.renderProvider.Release()
	b.computeProvider.Release()
	b.uploaded = false
}
