package renderer

import "fmt"

// ShaderCompileError indicates that a WGSL shader module failed to compile on the device.
// Pipeline registration reports these through the diagnostics sink and continues with the
// remaining pipelines rather than aborting.
type ShaderCompileError struct {
	// ShaderKey is the unique key of the shader that failed to compile.
	ShaderKey string
	// Err is the underlying device error.
	Err error
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("shader %q failed to compile: %v", e.ShaderKey, e.Err)
}

func (e *ShaderCompileError) Unwrap() error {
	return e.Err
}

// ProgramLinkError indicates that a pipeline could not be assembled from its compiled
// shader modules, typically due to a bind group layout or pipeline layout mismatch.
type ProgramLinkError struct {
	// PipelineKey is the unique key of the pipeline that failed to link.
	PipelineKey string
	// Err is the underlying device error.
	Err error
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("pipeline %q failed to link: %v", e.PipelineKey, e.Err)
}

func (e *ProgramLinkError) Unwrap() error {
	return e.Err
}
