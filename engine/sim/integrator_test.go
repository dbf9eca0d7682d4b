package sim

import (
	"testing"

	"github.com/Carmen-Shannon/crystal-go/engine/renderer"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeRenderer records every renderer call so tests can assert on frame
// structure without a GPU device.
type fakeRenderer struct {
	pipelineCache map[string]pipeline.Pipeline

	writes     [][]bind_group_provider.BufferWrite
	dispatches []fakeDispatch
	draws      []fakeDraw
	allocs     []fakeStorageAlloc
	bindGroups []string
	resizes    [][2]int

	computeBegins int
	computeEnds   int
	frameBegins   int
	frameEnds     int
	presents      int

	beginFrameErr error
	drawErr       error
}

type fakeDispatch struct {
	key      string
	provider bind_group_provider.BindGroupProvider
	groups   [3]uint32
}

type fakeDraw struct {
	key         string
	vertexCount uint32
	bindGroups  []bind_group_provider.BindGroupProvider
}

type fakeStorageAlloc struct {
	label string
	size  uint64
	usage wgpu.BufferUsage
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{pipelineCache: make(map[string]pipeline.Pipeline)}
}

func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline {
	return f.pipelineCache[key]
}

func (f *fakeRenderer) Pipelines() map[string]pipeline.Pipeline {
	return f.pipelineCache
}

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		f.pipelineCache[p.PipelineKey()] = p
	}
	return nil
}

func (f *fakeRenderer) SetPipeline(key string, p pipeline.Pipeline) {
	f.pipelineCache[key] = p
}

func (f *fakeRenderer) SetPipelines(pipelines map[string]pipeline.Pipeline) {
	f.pipelineCache = pipelines
}

func (f *fakeRenderer) Resize(width, height int) {
	f.resizes = append(f.resizes, [2]int{width, height})
}

func (f *fakeRenderer) CreateStorageBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	f.allocs = append(f.allocs, fakeStorageAlloc{label: label, size: size, usage: usage})
	return nil, nil
}

func (f *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	f.bindGroups = append(f.bindGroups, provider.Label())
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes)
}

func (f *fakeRenderer) BeginComputeFrame() error {
	f.computeBegins++
	return nil
}

func (f *fakeRenderer) EndComputeFrame() {
	f.computeEnds++
}

func (f *fakeRenderer) DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) {
	f.dispatches = append(f.dispatches, fakeDispatch{key: pipelineKey, provider: computeProvider, groups: workGroupCount})
}

func (f *fakeRenderer) BeginFrame() error {
	if f.beginFrameErr != nil {
		return f.beginFrameErr
	}
	f.frameBegins++
	return nil
}

func (f *fakeRenderer) DrawPoints(pipelineKey string, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.draws = append(f.draws, fakeDraw{key: pipelineKey, vertexCount: vertexCount, bindGroups: bindGroups})
	return nil
}

func (f *fakeRenderer) EndFrame() {
	f.frameEnds++
}

func (f *fakeRenderer) Present() {
	f.presents++
}

func (f *fakeRenderer) SetPresentMode(mode renderer.PresentMode) {}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		lanes  uint32
		policy RoundingPolicy
		want   uint32
	}{
		{"round up partial group", 100, 256, RoundUp, 1},
		{"truncate partial group", 100, 256, Truncate, 0},
		{"exact group round up", 256, 256, RoundUp, 1},
		{"exact group truncate", 256, 256, Truncate, 1},
		{"one over round up", 257, 256, RoundUp, 2},
		{"one over truncate", 257, 256, Truncate, 1},
		{"single particle truncate", 1, 256, Truncate, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workgroupCount(tt.count, tt.lanes, tt.policy); got != tt.want {
				t.Errorf("workgroupCount(%d, %d, %v) = %d, want %d", tt.count, tt.lanes, tt.policy, got, tt.want)
			}
		})
	}
}

func TestRoundingPolicyString(t *testing.T) {
	if got := RoundUp.String(); got != "round-up" {
		t.Errorf("RoundUp.String() = %q, want %q", got, "round-up")
	}
	if got := Truncate.String(); got != "truncate" {
		t.Errorf("Truncate.String() = %q, want %q", got, "truncate")
	}
}

func TestCPUIntegratorStepExactness(t *testing.T) {
	buf := NewParticleBuffer(4, WithInitialVelocity(Vec3{X: 1}))
	integ := NewCPUIntegrator(buf)

	integ.Step(1.0)

	for i, p := range buf.Positions() {
		if p != (Vec3{X: 1, Y: 0, Z: 0}) {
			t.Errorf("particle %d position = %+v, want {1 0 0}", i, p)
		}
	}
}

func TestCPUIntegratorZeroDeltaIsNoOp(t *testing.T) {
	buf := NewParticleBuffer(4, WithInitialVelocity(Vec3{X: 1}))
	integ := NewCPUIntegrator(buf)

	integ.Step(0)

	for i, p := range buf.Positions() {
		if p != (Vec3{}) {
			t.Errorf("particle %d position = %+v, want origin", i, p)
		}
	}
}

func TestCPUIntegratorTruncateSkipsPartialGroup(t *testing.T) {
	buf := NewParticleBuffer(100, WithInitialVelocity(Vec3{X: 1}))
	integ := NewCPUIntegrator(buf, WithCPURounding(Truncate))

	integ.Step(1.0)

	for i, p := range buf.Positions() {
		if p != (Vec3{}) {
			t.Fatalf("particle %d moved to %+v under truncate with a partial group", i, p)
		}
	}
}

func TestCPUIntegratorRoundUpCoversPartialGroup(t *testing.T) {
	// 300 particles spans one full work-group plus a partial second group; the
	// bounds check must stop the second group's lanes at the population edge.
	buf := NewParticleBuffer(300, WithInitialVelocity(Vec3{X: 1}))
	integ := NewCPUIntegrator(buf)

	integ.Step(1.0)

	for i, p := range buf.Positions() {
		if p != (Vec3{X: 1, Y: 0, Z: 0}) {
			t.Fatalf("particle %d position = %+v, want {1 0 0}", i, p)
		}
	}
}

func TestCPUIntegratorAccumulatesAcrossSteps(t *testing.T) {
	buf := NewParticleBuffer(4, WithInitialVelocity(Vec3{X: 1}))
	integ := NewCPUIntegrator(buf)

	integ.Step(1.0)
	integ.Step(1.0)

	for i, p := range buf.Positions() {
		if p != (Vec3{X: 2, Y: 0, Z: 0}) {
			t.Errorf("particle %d position = %+v, want {2 0 0}", i, p)
		}
	}
}

func TestCPUIntegratorPublishesPositions(t *testing.T) {
	fake := newFakeRenderer()
	buf := NewParticleBuffer(4, WithInitialVelocity(Vec3{X: 1}))
	integ := NewCPUIntegrator(buf, WithPositionPublish(fake))

	integ.Step(1.0)

	if len(fake.writes) != 1 {
		t.Fatalf("len(writes) = %d, want 1", len(fake.writes))
	}
	w := fake.writes[0][0]
	if w.Binding != positionsBinding {
		t.Errorf("publish binding = %d, want %d", w.Binding, positionsBinding)
	}
	if len(w.Data) != 4*int(GPUVecStride) {
		t.Errorf("publish data length = %d, want %d", len(w.Data), 4*int(GPUVecStride))
	}
}

func TestGPUIntegratorDispatchesRoundedUp(t *testing.T) {
	fake := newFakeRenderer()
	buf := NewParticleBuffer(100)
	integ := NewGPUIntegrator(fake, buf, 256)

	integ.Step(0.5)

	if len(fake.dispatches) != 1 {
		t.Fatalf("len(dispatches) = %d, want 1", len(fake.dispatches))
	}
	d := fake.dispatches[0]
	if d.key != IntegratePipelineKey {
		t.Errorf("dispatch key = %q, want %q", d.key, IntegratePipelineKey)
	}
	if d.groups != [3]uint32{1, 1, 1} {
		t.Errorf("dispatch groups = %v, want [1 1 1]", d.groups)
	}
	if d.provider != buf.ComputeProvider() {
		t.Error("dispatch did not use the buffer's compute provider")
	}

	if len(fake.writes) != 1 {
		t.Fatalf("len(writes) = %d, want 1 globals upload", len(fake.writes))
	}
	globals := GPUSimGlobals{DeltaTime: 0.5, ParticleCount: 100}
	want := globals.Marshal()
	got := fake.writes[0][0].Data
	if len(got) != len(want) {
		t.Fatalf("globals upload length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("globals upload byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestGPUIntegratorTruncateSkipsDispatch(t *testing.T) {
	fake := newFakeRenderer()
	buf := NewParticleBuffer(100)
	integ := NewGPUIntegrator(fake, buf, 256, WithGPURounding(Truncate))

	integ.Step(1.0)

	if len(fake.dispatches) != 0 {
		t.Fatalf("len(dispatches) = %d, want 0 under truncate with a partial group", len(fake.dispatches))
	}
}

func TestNewGPUIntegratorPanicsOnNilDependencies(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewGPUIntegrator(nil, nil, 0) did not panic")
		}
	}()
	NewGPUIntegrator(nil, nil, 0)
}
