package sim

import "github.com/Carmen-Shannon/crystal-go/engine/renderer"

// GPUIntegratorOption is a functional option used to configure a GPU integrator during construction.
type GPUIntegratorOption func(*gpuIntegrator)

// WithGPURounding sets the work-group rounding policy for the GPU integrator.
// Defaults to RoundUp.
//
// Parameters:
//   - policy: the rounding policy to apply when sizing dispatches
//
// Returns:
//   - GPUIntegratorOption: a function that sets the rounding policy
func WithGPURounding(policy RoundingPolicy) GPUIntegratorOption {
	return func(g *gpuIntegrator) {
		g.policy = policy
	}
}

// WithGPUPipelineKey overrides the pipeline cache key the integrator dispatches.
// Defaults to IntegratePipelineKey.
//
// Parameters:
//   - key: the compute pipeline cache key
//
// Returns:
//   - GPUIntegratorOption: a function that sets the pipeline key
func WithGPUPipelineKey(key string) GPUIntegratorOption {
	return func(g *gpuIntegrator) {
		g.pipelineKey = key
	}
}

// CPUIntegratorOption is a functional option used to configure a CPU integrator during construction.
type CPUIntegratorOption func(*cpuIntegrator)

// WithCPURounding sets the work-group rounding policy for the CPU integrator.
// Defaults to RoundUp.
//
// Parameters:
//   - policy: the rounding policy to apply when sizing the work-group model
//
// Returns:
//   - CPUIntegratorOption: a function that sets the rounding policy
func WithCPURounding(policy RoundingPolicy) CPUIntegratorOption {
	return func(c *cpuIntegrator) {
		c.policy = policy
	}
}

// WithPositionPublish makes the CPU integrator re-upload the position block to
// the given renderer after each step so the point pass draws the CPU results.
// Without it the integrator only mutates the host mirror, which is the mode
// used by tests.
//
// Parameters:
//   - r: the renderer to publish position writes to
//
// Returns:
//   - CPUIntegratorOption: a function that sets the publish target
func WithPositionPublish(r renderer.Renderer) CPUIntegratorOption {
	return func(c *cpuIntegrator) {
		c.publish = r
	}
}
