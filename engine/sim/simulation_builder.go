package sim

import (
	"github.com/Carmen-Shannon/crystal-go/engine/camera"
	"github.com/Carmen-Shannon/crystal-go/engine/diagnostics"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer"
)

// SimulationOption is a functional option used to configure a Simulation during construction.
type SimulationOption func(*simulation)

// WithRenderer attaches the renderer the simulation drives each frame. Without
// it the simulation runs headless.
//
// Parameters:
//   - r: the renderer to drive
//
// Returns:
//   - SimulationOption: a function that sets the renderer
func WithRenderer(r renderer.Renderer) SimulationOption {
	return func(s *simulation) {
		s.r = r
	}
}

// WithCamera attaches the camera whose view-projection matrix is uploaded each
// frame. Drawing requires both a renderer and a camera.
//
// Parameters:
//   - cam: the camera to upload
//
// Returns:
//   - SimulationOption: a function that sets the camera
func WithCamera(cam camera.Camera) SimulationOption {
	return func(s *simulation) {
		s.cam = cam
	}
}

// WithStartPaused sets the initial paused state.
//
// Parameters:
//   - paused: true to start paused
//
// Returns:
//   - SimulationOption: a function that sets the initial paused state
func WithStartPaused(paused bool) SimulationOption {
	return func(s *simulation) {
		s.paused = paused
	}
}

// WithSpeed sets the initial speed multiplier. Negative values are clamped to zero.
//
// Parameters:
//   - speed: the initial speed multiplier
//
// Returns:
//   - SimulationOption: a function that sets the initial speed
func WithSpeed(speed float64) SimulationOption {
	return func(s *simulation) {
		s.speed = max(speed, 0)
	}
}

// WithRenderPipelineKey overrides the pipeline cache key used for the point
// draw. Defaults to PointPipelineKey.
//
// Parameters:
//   - key: the render pipeline cache key
//
// Returns:
//   - SimulationOption: a function that sets the pipeline key
func WithRenderPipelineKey(key string) SimulationOption {
	return func(s *simulation) {
		s.renderPipelineKey = key
	}
}

// WithSimulationDiagnostics sets the sink frame errors are reported to.
// Defaults to a log-backed sink.
//
// Parameters:
//   - sink: the diagnostics sink
//
// Returns:
//   - SimulationOption: a function that sets the sink
func WithSimulationDiagnostics(sink diagnostics.Sink) SimulationOption {
	return func(s *simulation) {
		s.diag = sink
	}
}
