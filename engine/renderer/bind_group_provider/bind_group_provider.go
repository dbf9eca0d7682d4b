package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferRange describes the byte window of a buffer exposed to a binding.
// A zero Size means the binding covers the whole buffer from Offset.
type BufferRange struct {
	Offset uint64
	Size   uint64
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources and must be released when no longer needed. They are populated by the Renderer during initialization, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the GPU bind group layout created for this provider, or nil if not initialized with the Renderer.
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	// Multiple bindings may share one buffer with distinct ranges.
	buffers map[int]*wgpu.Buffer
	// ranges holds the byte window each binding exposes, keyed by binding index.
	// Bindings without an entry cover their whole buffer.
	ranges map[int]BufferRange
}

// BindGroupProvider defines the interface for components that require GPU bind group resources.
// Components (Camera, ParticleBuffer, etc.) hold a BindGroupProvider to describe their GPU binding
// requirements. The Renderer then uses this provider to initialize and update GPU resources.
//
// Usage pattern:
//  1. Component creates a BindGroupProvider with a unique label
//  2. Component stores buffers (and optional ranges) on the provider
//  3. Renderer.InitBindGroup(provider, layout) creates the GPU bind group
//  4. Renderer.WriteBuffers(...) stages uniform/storage updates
//  5. Renderer binds BindGroup() for dispatch and draw calls
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider.
	// A buffer shared across multiple bindings is released exactly once.
	Release()

	// Label returns the debug label for this provider.
	// Used for debugging and profiling purposes.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout for this provider.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns a map of all buffers associated with this provider, keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: a map of buffers keyed by binding index
	Buffers() map[int]*wgpu.Buffer

	// Range returns the byte window a binding exposes and whether one was set.
	// Bindings without an explicit range cover their whole buffer.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - BufferRange: the byte window for the binding
	//   - bool: true if an explicit range was set
	Range(binding int) (BufferRange, bool)

	// SetBindGroup sets the bind group after GPU initialization.
	// Called by Renderer.InitBindGroup().
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout after GPU initialization.
	// Called by Renderer.InitBindGroup().
	//
	// Parameters:
	//   - bgl: the created bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer sets the buffer for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer to store
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetBuffers sets multiple buffers at once.
	//
	// Parameters:
	//   - buffers: a map of buffers keyed by binding index
	SetBuffers(buffers map[int]*wgpu.Buffer)

	// SetBufferRange sets the byte window a binding exposes into its buffer.
	// Offsets into storage buffers must honor the device's minimum storage
	// buffer offset alignment (256 bytes on all mainstream adapters).
	//
	// Parameters:
	//   - binding: the binding index
	//   - offset: byte offset into the buffer
	//   - size: byte length of the window (0 = to end of buffer)
	SetBufferRange(binding int, offset, size uint64)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: debug label for the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
		ranges:  make(map[int]BufferRange),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) Range(binding int) (BufferRange, bool) {
	r, ok := p.ranges[binding]
	return r, ok
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetBuffers(buffers map[int]*wgpu.Buffer) {
	p.buffers = buffers
}

func (p *bindGroupProvider) SetBufferRange(binding int, offset, size uint64) {
	if p.ranges == nil {
		p.ranges = make(map[int]BufferRange)
	}
	p.ranges[binding] = BufferRange{Offset: offset, Size: size}
}

func (p *bindGroupProvider) Release() {
	released := make(map[*wgpu.Buffer]bool)
	for i, buf := range p.buffers {
		if buf != nil && !released[buf] {
			buf.Release()
			released[buf] = true
		}
		delete(p.buffers, i)
	}

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
