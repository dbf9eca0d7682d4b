package engine

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/crystal-go/engine/profiler"
	"github.com/Carmen-Shannon/crystal-go/engine/window"
)

// engine implements the Engine interface.
// Drives the per-frame simulation callback from the window message loop on a
// single host thread. GLFW event polling and GPU submission both require the
// main OS thread, so there are no engine or render goroutines; the frame
// callback runs inline in the window's update hook.
type engine struct {
	running bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback func(deltaTime float64)

	frameLimit time.Duration // minimum frame duration; 0 = uncapped

	lastFrameTime float64
}

// Engine is the main entry point for the simulation host.
// It owns the frame clock and orchestrates the window message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers the function called once per frame with the frame's
	// delta time in seconds. The delta time comes from the window's monotonic clock
	// and is clamped to be non-negative.
	//
	// Parameters:
	//   - callback: function to call each frame, receiving the delta time in seconds
	SetFrameCallback(callback func(deltaTime float64))

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Run starts the main loop (blocks until the window closes or Quit is called).
	Run()

	// Quit signals the loop to stop and closes the window.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
// A window must be supplied via WithWindow; NewEngine panics without one since the
// frame loop cannot run without a message source and clock.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:      make(chan struct{}),
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		panic("engine: a window is required, use WithWindow")
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.running = true
	e.lastFrameTime = e.window.Now()

	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()

	e.signalQuit()
}

// frame executes one loop iteration: delta time from the monotonic clock,
// the registered frame callback, profiler tick, and optional frame limiting.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		_ = e.window.Close()
		return
	default:
	}

	now := e.window.Now()
	dt := now - e.lastFrameTime
	e.lastFrameTime = now
	if dt < 0 {
		dt = 0
	}

	if e.frameCallback != nil {
		e.frameCallback(dt)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(dt)
	}

	if e.frameLimit > 0 {
		elapsed := time.Duration((e.window.Now() - now) * float64(time.Second))
		if remaining := e.frameLimit - elapsed; remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel so the next frame closes the window.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetFrameCallback registers the function called once per frame.
func (e *engine) SetFrameCallback(callback func(deltaTime float64)) {
	e.frameCallback = callback
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Second / time.Duration(fps)
}
