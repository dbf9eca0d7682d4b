package sim

import "fmt"

// Config holds the tunable parameters of the demo. Zero values are not usable;
// start from DefaultConfig and override.
type Config struct {
	// Width and Height are the window client area dimensions in pixels.
	Width  int
	Height int

	// ParticleCount is the fixed number of particles for the process lifetime.
	ParticleCount int

	// InitialSpeed is the starting simulation speed multiplier applied to frame
	// delta times before they reach the integrator.
	InitialSpeed float64

	// StartPaused starts the simulation in the paused state when true.
	StartPaused bool

	// GridSize is the lattice spacing in world units used when Lattice seeding
	// is enabled.
	GridSize float32

	// Lattice places particles on a cubic grid with GridSize spacing instead of
	// co-located at the origin.
	Lattice bool

	// Rounding selects how the integrator sizes its work-group dispatch.
	Rounding RoundingPolicy
}

// DefaultConfig returns the demo's default configuration: 800x600 window,
// 100 particles, speed 1.0, running, grid spacing 0.1, round-up dispatch.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		Width:         800,
		Height:        600,
		ParticleCount: 100,
		InitialSpeed:  1.0,
		StartPaused:   false,
		GridSize:      0.1,
		Lattice:       false,
		Rounding:      RoundUp,
	}
}

// Validate checks the configuration for values that cannot drive a simulation.
//
// Returns:
//   - error: a descriptive error for the first invalid field, or nil
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.ParticleCount <= 0 {
		return fmt.Errorf("particle count must be positive, got %d", c.ParticleCount)
	}
	if c.InitialSpeed < 0 {
		return fmt.Errorf("initial speed must be non-negative, got %v", c.InitialSpeed)
	}
	if c.GridSize <= 0 {
		return fmt.Errorf("grid size must be positive, got %v", c.GridSize)
	}
	switch c.Rounding {
	case RoundUp, Truncate:
	default:
		return fmt.Errorf("unknown rounding policy %d", c.Rounding)
	}
	return nil
}
