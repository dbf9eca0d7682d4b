package sim

import (
	"sync"

	"github.com/Carmen-Shannon/crystal-go/engine/camera"
	"github.com/Carmen-Shannon/crystal-go/engine/diagnostics"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/bind_group_provider"
)

// simulation is the implementation of the Simulation interface.
// It is the explicit per-run context: control state, the particle buffer, the
// integrator, and the rendering collaborators, driven by Frame once per loop
// iteration.
type simulation struct {
	// mu guards paused and speed, which are written by input callbacks and read
	// once per frame.
	mu *sync.Mutex

	paused bool
	speed  float64

	buf        ParticleBuffer
	integrator Integrator

	// r and cam are optional; when nil the simulation runs headless (compute
	// only), which is the mode used by tests.
	r   renderer.Renderer
	cam camera.Camera

	diag diagnostics.Sink

	renderPipelineKey string
}

// Simulation is the per-run context of the demo. It owns the RUNNING/PAUSED
// control state and executes the frame recipe: integrate when running, draw
// always.
type Simulation interface {
	// Paused reports whether the simulation is paused. While paused, Frame
	// skips integration but still draws.
	//
	// Returns:
	//   - bool: true if paused
	Paused() bool

	// SetPaused sets the paused state.
	//
	// Parameters:
	//   - paused: the new paused state
	SetPaused(paused bool)

	// TogglePaused flips the paused state.
	TogglePaused()

	// Speed returns the current speed multiplier applied to frame delta times.
	//
	// Returns:
	//   - float64: the speed multiplier
	Speed() float64

	// SetSpeed sets the speed multiplier. Negative values are clamped to zero.
	//
	// Parameters:
	//   - speed: the new speed multiplier
	SetSpeed(speed float64)

	// ScaleSpeed multiplies the current speed by the given factor, clamping the
	// result to be non-negative.
	//
	// Parameters:
	//   - factor: the multiplier to apply to the current speed
	ScaleSpeed(factor float64)

	// Buffer returns the simulation's particle buffer.
	//
	// Returns:
	//   - ParticleBuffer: the particle buffer
	Buffer() ParticleBuffer

	// Frame executes one frame: when running, one integrator step with the
	// delta time scaled by the speed multiplier, batched in a compute frame;
	// always, one camera upload and exactly one point draw of all particles.
	// Negative delta times are clamped to zero.
	//
	// Parameters:
	//   - dt: the frame delta time in seconds
	Frame(dt float64)

	// Resize propagates a new surface size to the renderer and camera.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)
}

var _ Simulation = &simulation{}

// NewSimulation creates the per-run simulation context. The particle buffer and
// integrator are required; the renderer and camera are optional and their absence
// puts the simulation in headless mode. Panics if the buffer or integrator is nil.
//
// Parameters:
//   - buf: the particle buffer (must not be nil)
//   - integ: the integrator backend (must not be nil)
//   - options: functional options to configure the simulation
//
// Returns:
//   - Simulation: the newly created simulation context
func NewSimulation(buf ParticleBuffer, integ Integrator, options ...SimulationOption) Simulation {
	if buf == nil {
		panic("sim: NewSimulation requires a non-nil ParticleBuffer")
	}
	if integ == nil {
		panic("sim: NewSimulation requires a non-nil Integrator")
	}
	s := &simulation{
		mu:                &sync.Mutex{},
		speed:             1.0,
		buf:               buf,
		integrator:        integ,
		renderPipelineKey: PointPipelineKey,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.diag == nil {
		s.diag = diagnostics.NewLogSink()
	}
	return s
}

func (s *simulation) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *simulation) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *simulation) TogglePaused() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
}

func (s *simulation) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

func (s *simulation) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = max(speed, 0)
}

func (s *simulation) ScaleSpeed(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = max(s.speed*factor, 0)
}

func (s *simulation) Buffer() ParticleBuffer {
	return s.buf
}

func (s *simulation) Frame(dt float64) {
	if dt < 0 {
		dt = 0
	}

	// Control state is read once per frame; input callbacks may write it at
	// any point between frames.
	s.mu.Lock()
	paused := s.paused
	speed := s.speed
	s.mu.Unlock()

	if !paused {
		if s.r != nil {
			if err := s.r.BeginComputeFrame(); err != nil {
				s.diag.Report(err.Error(), diagnostics.SeverityWarning)
			}
		}
		s.integrator.Step(float32(dt * speed))
		if s.r != nil {
			// Submitting the compute encoder before the render encoder is the
			// compute-to-render ordering barrier for the shared particle buffer.
			s.r.EndComputeFrame()
		}
	}

	if s.r == nil || s.cam == nil {
		return
	}

	s.cam.Update()
	uniform := camera.GPUCameraUniform{ViewProj: s.cam.ViewProjectionMatrix()}
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: s.cam.BindGroupProvider(),
			Binding:  0,
			Offset:   0,
			Data:     uniform.Marshal(),
		},
	})

	if err := s.r.BeginFrame(); err != nil {
		s.diag.Report(err.Error(), diagnostics.SeverityWarning)
		return
	}

	if err := s.r.DrawPoints(s.renderPipelineKey, uint32(s.buf.Count()), []bind_group_provider.BindGroupProvider{
		s.cam.BindGroupProvider(),
		s.buf.RenderProvider(),
	}); err != nil {
		s.diag.Report(err.Error(), diagnostics.SeverityError)
	}

	s.r.EndFrame()
	s.r.Present()
}

func (s *simulation) Resize(width, height int) {
	if s.r != nil {
		s.r.Resize(width, height)
	}
	if s.cam != nil && height > 0 {
		s.cam.SetAspect(float32(width) / float32(height))
	}
}
