package diagnostics

import "testing"

func TestSeverityString(t *testing.T) {
	tests := []struct {
		name     string
		severity Severity
		want     string
	}{
		{"info", SeverityInfo, "INFO"},
		{"warning", SeverityWarning, "WARNING"},
		{"error", SeverityError, "ERROR"},
		{"unknown", Severity(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCaptureSinkRecordsInOrder(t *testing.T) {
	sink := NewCaptureSink()
	sink.Report("first", SeverityInfo)
	sink.Report("second", SeverityError)
	sink.Report("third", SeverityError)

	if len(sink.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(sink.Entries))
	}
	if sink.Entries[0].Message != "first" || sink.Entries[0].Severity != SeverityInfo {
		t.Errorf("Entries[0] = %+v, want {first INFO}", sink.Entries[0])
	}
	if got := sink.Count(SeverityError); got != 2 {
		t.Errorf("Count(SeverityError) = %d, want 2", got)
	}
	if got := sink.Count(SeverityWarning); got != 0 {
		t.Errorf("Count(SeverityWarning) = %d, want 0", got)
	}
}
