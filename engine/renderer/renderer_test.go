package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/crystal-go/engine/diagnostics"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// recordedDraw captures a single DrawPoints invocation on the fake backend.
type recordedDraw struct {
	pipelineKey string
	vertexCount uint32
	bindGroups  int
}

// recordedDispatch captures a single DispatchCompute invocation on the fake backend.
type recordedDispatch struct {
	pipelineKey    string
	workGroupCount [3]uint32
}

// fakeBackend is a recording implementation of the backend interface for
// exercising the renderer's frame orchestration without a GPU device.
type fakeBackend struct {
	draws      []recordedDraw
	dispatches []recordedDispatch

	registerErrs map[string]error

	computeFrames int
	renderFrames  int
	presents      int
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) ConfigureSurface(width, height int) {}
func (f *fakeBackend) SetPresentMode(mode PresentMode)    {}

func (f *fakeBackend) BeginComputeFrame() error {
	f.computeFrames++
	return nil
}

func (f *fakeBackend) EndComputeFrame() {}

func (f *fakeBackend) DispatchCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) {
	f.dispatches = append(f.dispatches, recordedDispatch{
		pipelineKey:    p.PipelineKey(),
		workGroupCount: workGroupCount,
	})
}

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	return f.registerErrs[p.PipelineKey()]
}

func (f *fakeBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	return f.registerErrs[p.PipelineKey()]
}

func (f *fakeBackend) CreateStorageBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return nil, nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {}

func (f *fakeBackend) BeginFrame() error {
	f.renderFrames++
	return nil
}

func (f *fakeBackend) DrawPoints(p pipeline.Pipeline, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	f.draws = append(f.draws, recordedDraw{
		pipelineKey: p.PipelineKey(),
		vertexCount: vertexCount,
		bindGroups:  len(bindGroups),
	})
}

func (f *fakeBackend) EndFrame() {}

func (f *fakeBackend) Present() {
	f.presents++
}

func newTestRenderer(backend RendererBackend, sink diagnostics.Sink) *renderer {
	if sink == nil {
		sink = diagnostics.NewLogSink()
	}
	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   BackendTypeWGPU,
		backend:       backend,
		diag:          sink,
	}
}

const testComputeSource = `
@group(0) @binding(0) var<storage, read_write> data: array<vec4<f32>>;

@compute @workgroup_size(256)
fn advance(@builtin(global_invocation_id) id: vec3<u32>) {
    data[id.x] = data[id.x];
}
`

const testVertexSource = `
@group(0) @binding(0) var<storage, read> positions: array<vec4<f32>>;

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(positions[index].xyz, 1.0);
}
`

const testFragmentSource = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

func testRenderPipeline(key string) pipeline.Pipeline {
	return pipeline.NewPipeline(key, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShader(key+"_vs", shader.ShaderTypeVertex, testVertexSource)),
		pipeline.WithFragmentShader(shader.NewShader(key+"_fs", shader.ShaderTypeFragment, testFragmentSource)),
		pipeline.WithTopology(wgpu.PrimitiveTopologyPointList),
	)
}

func testComputePipeline(key string) pipeline.Pipeline {
	return pipeline.NewPipeline(key, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(shader.NewShader(key+"_cs", shader.ShaderTypeCompute, testComputeSource)),
	)
}

func TestDrawPointsEncodesSingleDraw(t *testing.T) {
	backend := &fakeBackend{registerErrs: map[string]error{}}
	r := newTestRenderer(backend, nil)

	if err := r.RegisterPipelines(testRenderPipeline("points")); err != nil {
		t.Fatalf("RegisterPipelines() error = %v", err)
	}

	if err := r.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := r.DrawPoints("points", 100, nil); err != nil {
		t.Fatalf("DrawPoints() error = %v", err)
	}
	r.EndFrame()
	r.Present()

	if len(backend.draws) != 1 {
		t.Fatalf("len(draws) = %d, want 1", len(backend.draws))
	}
	if backend.draws[0].vertexCount != 100 {
		t.Errorf("vertexCount = %d, want 100", backend.draws[0].vertexCount)
	}
	if backend.presents != 1 {
		t.Errorf("presents = %d, want 1", backend.presents)
	}
}

func TestDrawPointsMissingPipelineReturnsError(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend, nil)

	if err := r.DrawPoints("missing", 100, nil); err == nil {
		t.Fatal("DrawPoints() with unregistered key should return an error")
	}
	if len(backend.draws) != 0 {
		t.Errorf("len(draws) = %d, want 0", len(backend.draws))
	}
}

func TestDispatchComputeMissingPipelineIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend, nil)

	r.DispatchCompute("missing", bind_group_provider.NewBindGroupProvider("test"), [3]uint32{1, 1, 1})

	if len(backend.dispatches) != 0 {
		t.Errorf("len(dispatches) = %d, want 0", len(backend.dispatches))
	}
}

func TestDispatchComputeForwardsWorkGroupCount(t *testing.T) {
	backend := &fakeBackend{registerErrs: map[string]error{}}
	r := newTestRenderer(backend, nil)

	if err := r.RegisterPipelines(testComputePipeline("advance")); err != nil {
		t.Fatalf("RegisterPipelines() error = %v", err)
	}

	r.DispatchCompute("advance", bind_group_provider.NewBindGroupProvider("test"), [3]uint32{4, 1, 1})

	if len(backend.dispatches) != 1 {
		t.Fatalf("len(dispatches) = %d, want 1", len(backend.dispatches))
	}
	if got := backend.dispatches[0].workGroupCount; got != [3]uint32{4, 1, 1} {
		t.Errorf("workGroupCount = %v, want [4 1 1]", got)
	}
}

func TestRegisterPipelinesContinuesPastFailures(t *testing.T) {
	compileErr := &ShaderCompileError{ShaderKey: "bad_vs", Err: errors.New("syntax error")}
	backend := &fakeBackend{
		registerErrs: map[string]error{
			"bad": compileErr,
		},
	}
	sink := &diagnostics.CaptureSink{}
	r := newTestRenderer(backend, sink)

	err := r.RegisterPipelines(testRenderPipeline("bad"), testRenderPipeline("good"))
	if err == nil {
		t.Fatal("RegisterPipelines() should surface the registration failure")
	}

	var sce *ShaderCompileError
	if !errors.As(err, &sce) {
		t.Errorf("error = %v, want ShaderCompileError", err)
	}

	if r.Pipeline("bad") != nil {
		t.Error("failed pipeline should not be cached")
	}
	if r.Pipeline("good") == nil {
		t.Error("pipeline after the failure should still be registered")
	}
	if sink.Count(diagnostics.SeverityError) != 1 {
		t.Errorf("reported errors = %d, want 1", sink.Count(diagnostics.SeverityError))
	}
}

func TestRegisterPipelinesSkipsDuplicateKeys(t *testing.T) {
	backend := &fakeBackend{registerErrs: map[string]error{}}
	r := newTestRenderer(backend, nil)

	p1 := testComputePipeline("advance")
	p2 := testComputePipeline("advance")

	if err := r.RegisterPipelines(p1, p2); err != nil {
		t.Fatalf("RegisterPipelines() error = %v", err)
	}
	if got := r.Pipeline("advance"); got != p1 {
		t.Error("first registration should win for a duplicate key")
	}
}
