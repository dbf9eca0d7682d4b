package engine

import (
	"time"

	"github.com/Carmen-Shannon/crystal-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the window the engine drives its frame loop from.
// Required; NewEngine panics without one.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithFrameCallback registers the per-frame callback during engine construction.
//
// Parameters:
//   - callback: function to call each frame, receiving the delta time in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCallback(callback func(deltaTime float64)) EngineBuilderOption {
	return func(e *engine) {
		e.frameCallback = callback
	}
}

// WithFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Second / time.Duration(fps)
	}
}
