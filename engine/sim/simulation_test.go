package sim

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/crystal-go/engine/camera"
	"github.com/Carmen-Shannon/crystal-go/engine/diagnostics"
)

func newTestSimulation(t *testing.T, fake *fakeRenderer, count int, options ...SimulationOption) (Simulation, ParticleBuffer) {
	t.Helper()
	buf := NewParticleBuffer(count, WithInitialVelocity(Vec3{X: 1}))
	integ := NewCPUIntegrator(buf)
	opts := append([]SimulationOption{
		WithRenderer(fake),
		WithCamera(camera.NewCamera()),
	}, options...)
	return NewSimulation(buf, integ, opts...), buf
}

func TestFrameIntegratesAndDrawsOnce(t *testing.T) {
	fake := newFakeRenderer()
	sim, buf := newTestSimulation(t, fake, 4)

	sim.Frame(1.0)

	for i, p := range buf.Positions() {
		if p != (Vec3{X: 1}) {
			t.Errorf("particle %d position = %+v, want {1 0 0}", i, p)
		}
	}
	if fake.computeBegins != 1 || fake.computeEnds != 1 {
		t.Errorf("compute frame begins/ends = %d/%d, want 1/1", fake.computeBegins, fake.computeEnds)
	}
	if len(fake.draws) != 1 {
		t.Fatalf("len(draws) = %d, want exactly 1", len(fake.draws))
	}
	d := fake.draws[0]
	if d.key != PointPipelineKey {
		t.Errorf("draw key = %q, want %q", d.key, PointPipelineKey)
	}
	if d.vertexCount != 4 {
		t.Errorf("draw vertexCount = %d, want 4", d.vertexCount)
	}
	if len(d.bindGroups) != 2 {
		t.Fatalf("draw bind groups = %d, want 2 (camera + positions)", len(d.bindGroups))
	}
	if d.bindGroups[1] != buf.RenderProvider() {
		t.Error("second draw bind group is not the buffer's render provider")
	}
	if fake.frameEnds != 1 || fake.presents != 1 {
		t.Errorf("frame ends/presents = %d/%d, want 1/1", fake.frameEnds, fake.presents)
	}
}

func TestFrameUploadsCameraUniform(t *testing.T) {
	fake := newFakeRenderer()
	sim, _ := newTestSimulation(t, fake, 4)

	sim.Frame(0.016)

	if len(fake.writes) != 1 {
		t.Fatalf("len(writes) = %d, want 1 camera upload", len(fake.writes))
	}
	w := fake.writes[0][0]
	if w.Binding != 0 {
		t.Errorf("camera upload binding = %d, want 0", w.Binding)
	}
	if len(w.Data) != 64 {
		t.Errorf("camera upload length = %d, want 64 (mat4x4<f32>)", len(w.Data))
	}
}

func TestFramePausedSkipsIntegrationButDraws(t *testing.T) {
	fake := newFakeRenderer()
	sim, buf := newTestSimulation(t, fake, 4, WithStartPaused(true))

	sim.Frame(1.0)

	for i, p := range buf.Positions() {
		if p != (Vec3{}) {
			t.Errorf("particle %d moved to %+v while paused", i, p)
		}
	}
	if fake.computeBegins != 0 {
		t.Errorf("compute frame begins = %d, want 0 while paused", fake.computeBegins)
	}
	if len(fake.draws) != 1 {
		t.Errorf("len(draws) = %d, want exactly 1 while paused", len(fake.draws))
	}
}

func TestFrameSpeedScalesDelta(t *testing.T) {
	fake := newFakeRenderer()
	sim, buf := newTestSimulation(t, fake, 4)

	sim.Frame(1.0)
	sim.SetSpeed(0.5)
	sim.Frame(2.0)

	// 1.0*1.0 from the first frame plus 2.0*0.5 from the second.
	for i, p := range buf.Positions() {
		if p != (Vec3{X: 2}) {
			t.Errorf("particle %d position = %+v, want {2 0 0}", i, p)
		}
	}
}

func TestFrameClampsNegativeDelta(t *testing.T) {
	fake := newFakeRenderer()
	sim, buf := newTestSimulation(t, fake, 4)

	sim.Frame(-1.0)

	for i, p := range buf.Positions() {
		if p != (Vec3{}) {
			t.Errorf("particle %d moved to %+v with negative delta", i, p)
		}
	}
	if len(fake.draws) != 1 {
		t.Errorf("len(draws) = %d, want 1", len(fake.draws))
	}
}

func TestHeadlessFrameIntegrates(t *testing.T) {
	buf := NewParticleBuffer(4, WithInitialVelocity(Vec3{X: 1}))
	sim := NewSimulation(buf, NewCPUIntegrator(buf))

	sim.Frame(1.0)

	for i, p := range buf.Positions() {
		if p != (Vec3{X: 1}) {
			t.Errorf("particle %d position = %+v, want {1 0 0}", i, p)
		}
	}
}

func TestSpeedClamping(t *testing.T) {
	buf := NewParticleBuffer(1)
	sim := NewSimulation(buf, NewCPUIntegrator(buf))

	sim.SetSpeed(-2)
	if got := sim.Speed(); got != 0 {
		t.Errorf("Speed() after SetSpeed(-2) = %v, want 0", got)
	}

	sim.SetSpeed(2)
	sim.ScaleSpeed(0.5)
	if got := sim.Speed(); got != 1 {
		t.Errorf("Speed() after ScaleSpeed(0.5) = %v, want 1", got)
	}

	sim.ScaleSpeed(-1)
	if got := sim.Speed(); got != 0 {
		t.Errorf("Speed() after ScaleSpeed(-1) = %v, want 0", got)
	}
}

func TestTogglePaused(t *testing.T) {
	buf := NewParticleBuffer(1)
	sim := NewSimulation(buf, NewCPUIntegrator(buf), WithStartPaused(true))

	if !sim.Paused() {
		t.Fatal("Paused() = false, want true at start")
	}
	sim.TogglePaused()
	if sim.Paused() {
		t.Error("Paused() = true after toggle, want false")
	}
	sim.SetPaused(true)
	if !sim.Paused() {
		t.Error("Paused() = false after SetPaused(true)")
	}
}

func TestBeginFrameFailureSkipsDraw(t *testing.T) {
	fake := newFakeRenderer()
	fake.beginFrameErr = errors.New("surface lost")
	sink := diagnostics.NewCaptureSink()
	sim, _ := newTestSimulation(t, fake, 4, WithSimulationDiagnostics(sink))

	sim.Frame(1.0)

	if len(fake.draws) != 0 {
		t.Errorf("len(draws) = %d, want 0 after BeginFrame failure", len(fake.draws))
	}
	if fake.frameEnds != 0 || fake.presents != 0 {
		t.Errorf("frame ends/presents = %d/%d, want 0/0", fake.frameEnds, fake.presents)
	}
	if sink.Count(diagnostics.SeverityWarning) != 1 {
		t.Errorf("warning count = %d, want 1", sink.Count(diagnostics.SeverityWarning))
	}
}

func TestDrawFailureIsReportedAndFrameCompletes(t *testing.T) {
	fake := newFakeRenderer()
	fake.drawErr = errors.New("pipeline missing")
	sink := diagnostics.NewCaptureSink()
	sim, _ := newTestSimulation(t, fake, 4, WithSimulationDiagnostics(sink))

	sim.Frame(1.0)

	if sink.Count(diagnostics.SeverityError) != 1 {
		t.Errorf("error count = %d, want 1", sink.Count(diagnostics.SeverityError))
	}
	if fake.frameEnds != 1 || fake.presents != 1 {
		t.Errorf("frame ends/presents = %d/%d, want 1/1 despite draw failure", fake.frameEnds, fake.presents)
	}
}

func TestResizePropagates(t *testing.T) {
	fake := newFakeRenderer()
	cam := camera.NewCamera()
	buf := NewParticleBuffer(1)
	sim := NewSimulation(buf, NewCPUIntegrator(buf), WithRenderer(fake), WithCamera(cam))

	sim.Resize(1024, 512)

	if len(fake.resizes) != 1 || fake.resizes[0] != [2]int{1024, 512} {
		t.Errorf("resizes = %v, want [[1024 512]]", fake.resizes)
	}
	if got := cam.Aspect(); got != 2 {
		t.Errorf("camera aspect = %v, want 2", got)
	}
}

func TestNewSimulationPanicsOnNilDependencies(t *testing.T) {
	buf := NewParticleBuffer(1)

	mustPanic := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		fn()
	}
	mustPanic("nil buffer", func() { NewSimulation(nil, NewCPUIntegrator(buf)) })
	mustPanic("nil integrator", func() { NewSimulation(buf, nil) })
}
