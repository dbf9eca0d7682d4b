package sim

import "github.com/Carmen-Shannon/crystal-go/common"

// ParticleBufferOption is a functional option used to configure a ParticleBuffer during construction.
type ParticleBufferOption func(*particleBuffer)

// WithInitialVelocity sets the velocity assigned to every particle at construction.
// Defaults to (0.01, 0, 0).
//
// Parameters:
//   - v: the initial velocity vector
//
// Returns:
//   - ParticleBufferOption: a function that sets the initial velocity
func WithInitialVelocity(v Vec3) ParticleBufferOption {
	return func(b *particleBuffer) {
		b.initialVelocity = v
	}
}

// WithLatticeSeeding places particles on a cubic grid centered on the origin with
// the given spacing instead of co-locating them at the origin. A zero spacing
// keeps the default.
//
// Parameters:
//   - gridSize: the lattice spacing in world units
//
// Returns:
//   - ParticleBufferOption: a function that enables lattice seeding
func WithLatticeSeeding(gridSize float32) ParticleBufferOption {
	return func(b *particleBuffer) {
		b.lattice = true
		b.gridSize = common.Coalesce(gridSize, b.gridSize)
	}
}
