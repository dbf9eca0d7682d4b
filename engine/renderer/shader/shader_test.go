package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const integrateSource = `
struct SimGlobals {
    delta_time: f32,
    particle_count: u32,
};

@group(0) @binding(0) var<uniform> globals: SimGlobals;
@group(0) @binding(1) var<storage, read_write> positions: array<vec4<f32>>;
@group(0) @binding(2) var<storage, read> velocities: array<vec4<f32>>;

@compute @workgroup_size(256)
fn integrate(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i >= globals.particle_count) {
        return;
    }
    positions[i] = positions[i] + velocities[i] * globals.delta_time;
}
`

const pointVertexSource = `
struct CameraUniform {
    view_proj: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> camera: CameraUniform;
@group(1) @binding(0) var<storage, read> positions: array<vec4<f32>>;

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(positions[index].xyz, 1.0);
}
`

func TestParseEntryPoint(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		shaderType ShaderType
		want       string
	}{
		{"compute", integrateSource, ShaderTypeCompute, "integrate"},
		{"vertex", pointVertexSource, ShaderTypeVertex, "vs_main"},
		{"missing fragment", pointVertexSource, ShaderTypeFragment, ""},
		{"commented out", "// @compute\n// fn nope() {}", ShaderTypeCompute, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseEntryPoint(tt.source, tt.shaderType); got != tt.want {
				t.Errorf("parseEntryPoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseWorkgroupSize(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   [3]uint32
	}{
		{"single dimension", integrateSource, [3]uint32{256, 1, 1}},
		{"two dimensions", "@compute @workgroup_size(8, 8) fn main() {}", [3]uint32{8, 8, 1}},
		{"three dimensions", "@compute @workgroup_size(4, 2, 1) fn main() {}", [3]uint32{4, 2, 1}},
		{"missing annotation", "@compute fn main() {}", [3]uint32{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseWorkgroupSize(tt.source); got != tt.want {
				t.Errorf("parseWorkgroupSize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBindGroupLayoutsComputeBuffers(t *testing.T) {
	descriptors, varNames := parseBindGroupLayouts(integrateSource, wgpu.ShaderStageCompute)

	desc, ok := descriptors[0]
	if !ok {
		t.Fatal("group 0 descriptor not found")
	}
	if len(desc.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(desc.Entries))
	}

	if got := desc.Entries[0].Buffer.Type; got != wgpu.BufferBindingTypeUniform {
		t.Errorf("binding 0 type = %v, want uniform", got)
	}
	if got := desc.Entries[1].Buffer.Type; got != wgpu.BufferBindingTypeStorage {
		t.Errorf("binding 1 type = %v, want storage", got)
	}
	if got := desc.Entries[2].Buffer.Type; got != wgpu.BufferBindingTypeReadOnlyStorage {
		t.Errorf("binding 2 type = %v, want read-only storage", got)
	}

	// SimGlobals is {f32, u32} padded to 8 bytes.
	if got := desc.Entries[0].Buffer.MinBindingSize; got != 8 {
		t.Errorf("globals MinBindingSize = %d, want 8", got)
	}
	// Runtime-sized array<vec4<f32>> reports one element stride.
	if got := desc.Entries[1].Buffer.MinBindingSize; got != 16 {
		t.Errorf("positions MinBindingSize = %d, want 16", got)
	}

	if got := varNames[0][1]; got != "positions" {
		t.Errorf("varNames[0][1] = %q, want %q", got, "positions")
	}
}

func TestNewShaderComputeMetadata(t *testing.T) {
	s := NewShader("integrate", ShaderTypeCompute, integrateSource)

	if s.Key() != "integrate" {
		t.Errorf("Key() = %q, want %q", s.Key(), "integrate")
	}
	if s.EntryPoint() != "integrate" {
		t.Errorf("EntryPoint() = %q, want %q", s.EntryPoint(), "integrate")
	}
	if got := s.WorkgroupSize(); got != [3]uint32{256, 1, 1} {
		t.Errorf("WorkgroupSize() = %v, want [256 1 1]", got)
	}
	if s.Module() == nil || s.Module().WGSLDescriptor == nil {
		t.Fatal("Module() descriptor not populated")
	}
	if s.BindGroupVarName(0, 2) != "velocities" {
		t.Errorf("BindGroupVarName(0, 2) = %q, want %q", s.BindGroupVarName(0, 2), "velocities")
	}
}

func TestNewShaderVertexGroups(t *testing.T) {
	s := NewShader("point_vertex", ShaderTypeVertex, pointVertexSource)

	descs := s.BindGroupLayoutDescriptors()
	if len(descs) != 2 {
		t.Fatalf("len(descriptors) = %d, want 2", len(descs))
	}
	// Camera uniform is a single mat4x4<f32>, 64 bytes.
	if got := descs[0].Entries[0].Buffer.MinBindingSize; got != 64 {
		t.Errorf("camera MinBindingSize = %d, want 64", got)
	}
	if got := descs[1].Entries[0].Buffer.Type; got != wgpu.BufferBindingTypeReadOnlyStorage {
		t.Errorf("positions binding type = %v, want read-only storage", got)
	}
}
