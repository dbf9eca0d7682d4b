package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, frame time, and memory statistics for the simulation loop.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration

	// Per-interval frame time tracking, in seconds.
	frameTimeSum float64
	frameTimeMax float64

	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick should be called once per frame with that frame's delta time in seconds.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, average and worst frame time, heap usage, and allocation rate.
//
// Parameters:
//   - frameTime: the frame's delta time in seconds
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(frameTime float64) bool {
	p.frameCount++
	p.frameTimeSum += frameTime
	if frameTime > p.frameTimeMax {
		p.frameTimeMax = frameTime
	}

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	avgMs := p.frameTimeSum / float64(p.frameCount) * 1000
	maxMs := p.frameTimeMax * 1000

	runtime.ReadMemStats(&p.memStats)
	// Alloc: bytes of live heap objects. TotalAlloc: cumulative allocations,
	// used to derive the churn rate over the interval.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	log.Printf("[Profiler] FPS: %.2f | Frame: %.2f ms avg, %.2f ms max | Heap: %.2f MB | Alloc Rate: %.2f MB/s",
		fps, avgMs, maxMs, allocMB, allocRateMB)

	p.frameCount = 0
	p.frameTimeSum = 0
	p.frameTimeMax = 0
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
