// package diagnostics provides a non-fatal reporting channel for GPU and
// simulation advisories. Shader compile failures, program link failures, and
// driver debug messages all flow through a Sink; reporting never halts the
// frame loop.
package diagnostics

import "log"

// Severity classifies a reported diagnostic message.
type Severity int

const (
	// SeverityInfo marks advisory messages surfaced from the graphics driver
	// or the engine itself. Not error conditions.
	SeverityInfo Severity = iota

	// SeverityWarning marks recoverable problems, e.g. a degraded present mode.
	SeverityWarning

	// SeverityError marks failures that leave a pipeline stage inoperative,
	// e.g. a shader that failed to compile or a program that failed to link.
	// The frame loop continues; the affected stage becomes a no-op.
	SeverityError
)

// String returns the human-readable name of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Sink receives diagnostic messages. Implementations must be safe to call
// from the frame loop every iteration and must never panic.
type Sink interface {
	// Report delivers a single diagnostic message with its severity.
	//
	// Parameters:
	//   - message: human-readable diagnostic text
	//   - severity: classification of the message
	Report(message string, severity Severity)
}

// logSink writes diagnostics to the standard logger.
type logSink struct{}

var _ Sink = &logSink{}

// NewLogSink creates a Sink backed by the standard log package.
//
// Returns:
//   - Sink: a sink that writes "[SEVERITY] message" lines to the default logger
func NewLogSink() Sink {
	return &logSink{}
}

func (s *logSink) Report(message string, severity Severity) {
	log.Printf("[%s] %s", severity, message)
}

// CaptureSink records every reported diagnostic in memory. Intended for tests
// that assert on diagnostics without capturing output streams.
type CaptureSink struct {
	// Entries holds the reported diagnostics in report order.
	Entries []CapturedDiagnostic
}

// CapturedDiagnostic is a single recorded Report call.
type CapturedDiagnostic struct {
	Message  string
	Severity Severity
}

var _ Sink = &CaptureSink{}

// NewCaptureSink creates an empty in-memory sink.
//
// Returns:
//   - *CaptureSink: sink recording all reports
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

func (s *CaptureSink) Report(message string, severity Severity) {
	s.Entries = append(s.Entries, CapturedDiagnostic{Message: message, Severity: severity})
}

// Count returns how many recorded diagnostics have the given severity.
//
// Parameters:
//   - severity: severity level to count
//
// Returns:
//   - int: number of matching entries
func (s *CaptureSink) Count(severity Severity) int {
	n := 0
	for _, e := range s.Entries {
		if e.Severity == severity {
			n++
		}
	}
	return n
}
