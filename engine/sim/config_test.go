package sim

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	want := Config{
		Width:         800,
		Height:        600,
		ParticleCount: 100,
		InitialSpeed:  1.0,
		StartPaused:   false,
		GridSize:      0.1,
		Lattice:       false,
		Rounding:      RoundUp,
	}
	if cfg != want {
		t.Errorf("DefaultConfig() = %+v, want %+v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"negative height", func(c *Config) { c.Height = -1 }, true},
		{"zero particles", func(c *Config) { c.ParticleCount = 0 }, true},
		{"negative speed", func(c *Config) { c.InitialSpeed = -0.5 }, true},
		{"zero speed", func(c *Config) { c.InitialSpeed = 0 }, false},
		{"zero grid size", func(c *Config) { c.GridSize = 0 }, true},
		{"truncate policy", func(c *Config) { c.Rounding = Truncate }, false},
		{"unknown policy", func(c *Config) { c.Rounding = RoundingPolicy(42) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGPUSimGlobalsMarshal(t *testing.T) {
	globals := GPUSimGlobals{DeltaTime: 1.5, ParticleCount: 7}

	if globals.Size() != 8 {
		t.Fatalf("Size() = %d, want 8", globals.Size())
	}
	buf := globals.Marshal()
	if len(buf) != 8 {
		t.Fatalf("len(Marshal()) = %d, want 8", len(buf))
	}
	if got := binary.LittleEndian.Uint32(buf[0:]); got != math.Float32bits(1.5) {
		t.Errorf("delta time bits = %#x, want %#x", got, math.Float32bits(1.5))
	}
	if got := binary.LittleEndian.Uint32(buf[4:]); got != 7 {
		t.Errorf("particle count = %d, want 7", got)
	}
}
