package sim

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/bind_group_provider"
)

// Pipeline cache keys for the demo's two pipelines.
const (
	// IntegratePipelineKey identifies the compute pipeline that advances particles.
	IntegratePipelineKey = "integrate"

	// PointPipelineKey identifies the render pipeline that draws particles as points.
	PointPipelineKey = "crystal_points"
)

// cpuWorkgroupLanes is the lane count the CPU backend models per work-group,
// mirroring the compute shader's @workgroup_size.
const cpuWorkgroupLanes = 256

// RoundingPolicy selects how the integrator converts a particle count into a
// work-group dispatch count.
type RoundingPolicy int

const (
	// RoundUp dispatches ceil(count/lanes) work-groups so every particle is
	// updated exactly once. This is the default.
	RoundUp RoundingPolicy = iota

	// Truncate dispatches count/lanes work-groups using integer division. With
	// fewer particles than one work-group this dispatches zero groups and the
	// step is a no-op. Kept as an explicit, selectable behavior.
	Truncate
)

// String returns the policy name.
//
// Returns:
//   - string: "round-up" or "truncate"
func (p RoundingPolicy) String() string {
	switch p {
	case Truncate:
		return "truncate"
	default:
		return "round-up"
	}
}

// workgroupCount converts a particle count into a work-group count per the policy.
//
// Parameters:
//   - count: the number of particles
//   - lanes: the work-group lane count
//   - policy: the rounding policy
//
// Returns:
//   - uint32: the number of work-groups to dispatch
func workgroupCount(count int, lanes uint32, policy RoundingPolicy) uint32 {
	n := uint32(count)
	switch policy {
	case Truncate:
		return n / lanes
	default:
		return (n + lanes - 1) / lanes
	}
}

// Integrator advances the particle population by one step: for every particle,
// position += velocity * dt. Implementations share the work-group execution
// model; only the execution substrate differs.
type Integrator interface {
	// Step advances all particles by dt seconds. dt arrives pre-scaled by the
	// simulation speed multiplier.
	//
	// Parameters:
	//   - dt: the scaled frame delta time in seconds
	Step(dt float32)
}

// gpuIntegrator dispatches the integrate compute shader through the renderer.
type gpuIntegrator struct {
	r           renderer.Renderer
	buf         ParticleBuffer
	pipelineKey string
	lanes       uint32
	policy      RoundingPolicy
}

var _ Integrator = &gpuIntegrator{}

// NewGPUIntegrator creates an integrator that runs the integrate compute shader
// on the GPU. The compute pipeline must already be registered with the renderer
// under IntegratePipelineKey (or the key set via WithGPUPipelineKey). Panics if
// the renderer or buffer is nil.
//
// Parameters:
//   - r: the renderer that owns the compute pipeline
//   - buf: the particle buffer to advance
//   - lanes: the compute shader's work-group lane count (x dimension)
//   - options: functional options to configure the integrator
//
// Returns:
//   - Integrator: the GPU-backed integrator
func NewGPUIntegrator(r renderer.Renderer, buf ParticleBuffer, lanes uint32, options ...GPUIntegratorOption) Integrator {
	if r == nil {
		panic("sim: NewGPUIntegrator requires a non-nil Renderer")
	}
	if buf == nil {
		panic("sim: NewGPUIntegrator requires a non-nil ParticleBuffer")
	}
	if lanes == 0 {
		lanes = cpuWorkgroupLanes
	}
	g := &gpuIntegrator{
		r:           r,
		buf:         buf,
		pipelineKey: IntegratePipelineKey,
		lanes:       lanes,
		policy:      RoundUp,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *gpuIntegrator) Step(dt float32) {
	globals := GPUSimGlobals{
		DeltaTime:     dt,
		ParticleCount: uint32(g.buf.Count()),
	}
	g.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: g.buf.ComputeProvider(),
			Binding:  globalsBinding,
			Offset:   0,
			Data:     globals.Marshal(),
		},
	})

	groups := workgroupCount(g.buf.Count(), g.lanes, g.policy)
	if groups == 0 {
		return
	}
	g.r.DispatchCompute(g.pipelineKey, g.buf.ComputeProvider(), [3]uint32{groups, 1, 1})
}

// cpuIntegrator runs the same work-group model on the host, parallelized with a
// dynamic worker pool. It is the reference backend used for tests and for
// machines without a usable GPU adapter.
type cpuIntegrator struct {
	buf    ParticleBuffer
	policy RoundingPolicy

	// pool manages a bounded set of reusable goroutines for the per-frame
	// work-group execution. Workers persist across frames, avoiding per-frame
	// goroutine spawn/teardown overhead.
	pool worker.DynamicWorkerPool

	// publish, when set, re-uploads the position block to the GPU after each
	// step so the render pass sees the CPU results.
	publish renderer.Renderer
}

var _ Integrator = &cpuIntegrator{}

// NewCPUIntegrator creates the host reference integrator. Panics if the buffer is nil.
//
// Parameters:
//   - buf: the particle buffer to advance
//   - options: functional options to configure the integrator
//
// Returns:
//   - Integrator: the CPU-backed integrator
func NewCPUIntegrator(buf ParticleBuffer, options ...CPUIntegratorOption) Integrator {
	if buf == nil {
		panic("sim: NewCPUIntegrator requires a non-nil ParticleBuffer")
	}
	c := &cpuIntegrator{
		buf:    buf,
		policy: RoundUp,
	}
	for _, opt := range options {
		opt(c)
	}
	// Queue size of 256 accommodates typical work-group counts with headroom.
	workers := max(runtime.NumCPU()-1, 1)
	c.pool = worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
	return c
}

func (c *cpuIntegrator) Step(dt float32) {
	count := c.buf.Count()
	groups := workgroupCount(count, cpuWorkgroupLanes, c.policy)
	if groups == 0 {
		return
	}

	positions := c.buf.PositionData()
	velocities := c.buf.VelocityData()

	// A WaitGroup provides per-frame barrier sync since pool.Wait() blocks until
	// workers idle-exit which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	for g := uint32(0); g < groups; g++ {
		wg.Add(1)
		start := int(g) * cpuWorkgroupLanes
		c.pool.SubmitTask(worker.Task{
			ID: int(g),
			Do: func() (any, error) {
				defer wg.Done()
				end := min(start+cpuWorkgroupLanes, count)
				for i := start; i < end; i++ {
					positions[i].X += velocities[i].X * dt
					positions[i].Y += velocities[i].Y * dt
					positions[i].Z += velocities[i].Z * dt
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if c.publish != nil {
		c.publish.WriteBuffers([]bind_group_provider.BufferWrite{c.buf.StagePositionWrite()})
	}
}
