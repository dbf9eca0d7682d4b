package main

import (
	"flag"
	"log"

	"github.com/Carmen-Shannon/crystal-go/common"
	"github.com/Carmen-Shannon/crystal-go/engine"
	"github.com/Carmen-Shannon/crystal-go/engine/camera"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/crystal-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/crystal-go/engine/sim"
	"github.com/Carmen-Shannon/crystal-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// speedStep is the multiplier applied per up/down arrow press.
const speedStep = 1.25

// hostOptions are runtime knobs outside the simulation config.
type hostOptions struct {
	profile bool
	vsync   bool
}

func parseFlags() (sim.Config, hostOptions) {
	cfg := sim.DefaultConfig()
	host := hostOptions{vsync: true}

	flag.IntVar(&cfg.Width, "width", cfg.Width, "window width in pixels")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "window height in pixels")
	flag.IntVar(&cfg.ParticleCount, "particles", cfg.ParticleCount, "number of particles")
	flag.Float64Var(&cfg.InitialSpeed, "speed", cfg.InitialSpeed, "initial simulation speed multiplier")
	flag.BoolVar(&cfg.StartPaused, "paused", cfg.StartPaused, "start the simulation paused")
	gridSize := flag.Float64("grid-size", float64(cfg.GridSize), "lattice spacing in world units")
	flag.BoolVar(&cfg.Lattice, "lattice", cfg.Lattice, "seed particles on a cubic lattice instead of the origin")
	truncate := flag.Bool("truncate-dispatch", false, "size the compute dispatch by integer division instead of rounding up")
	flag.BoolVar(&host.profile, "profile", host.profile, "log frame timing and allocation stats")
	flag.BoolVar(&host.vsync, "vsync", host.vsync, "wait for vertical blank before presenting")
	flag.Parse()

	cfg.GridSize = float32(*gridSize)
	if *truncate {
		cfg.Rounding = sim.Truncate
	}
	return cfg, host
}

func main() {
	cfg, host := parseFlags()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// ── Engine + Window ─────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithProfiling(host.profile),
		engine.WithWindow(window.NewWindow(
			window.WithTitle("Crystal Growth"),
			window.WithWidth(cfg.Width),
			window.WithHeight(cfg.Height),
		)),
	)

	// ── Renderer ────────────────────────────────────────────────────────
	presentMode := renderer.PresentModeVSync
	if !host.vsync {
		presentMode = renderer.PresentModeUncapped
	}
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		eng.Window(),
		renderer.WithPresentMode(presentMode),
	)

	// ── Shaders ─────────────────────────────────────────────────────────
	integrateShader := shader.NewShader("integrate", shader.ShaderTypeCompute, sim.IntegrateShaderSource)
	pointVertexShader := shader.NewShader("point_vertex", shader.ShaderTypeVertex, sim.PointVertexShaderSource)
	pointFragmentShader := shader.NewShader("point_fragment", shader.ShaderTypeFragment, sim.PointFragmentShaderSource)

	// ── Pipelines ───────────────────────────────────────────────────────
	integratePipeline := pipeline.NewPipeline(sim.IntegratePipelineKey, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(integrateShader),
	)
	pointPipeline := pipeline.NewPipeline(sim.PointPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(pointVertexShader),
		pipeline.WithFragmentShader(pointFragmentShader),
		pipeline.WithTopology(wgpu.PrimitiveTopologyPointList),
	)
	if err := r.RegisterPipelines(integratePipeline, pointPipeline); err != nil {
		log.Fatalf("failed to register pipelines: %v", err)
	}

	// ── Camera ──────────────────────────────────────────────────────────
	cam := camera.NewCamera(
		camera.WithAspect(float32(cfg.Width) / float32(cfg.Height)),
	)
	if err := r.InitBindGroup(cam.BindGroupProvider(), pointVertexShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		log.Fatalf("failed to init camera bind group: %v", err)
	}

	// ── Particles ───────────────────────────────────────────────────────
	var bufOpts []sim.ParticleBufferOption
	if cfg.Lattice {
		bufOpts = append(bufOpts, sim.WithLatticeSeeding(cfg.GridSize))
	}
	buf := sim.NewParticleBuffer(cfg.ParticleCount, bufOpts...)
	if err := buf.Upload(r, integrateShader, pointVertexShader); err != nil {
		log.Fatalf("failed to upload particle buffer: %v", err)
	}

	integ := sim.NewGPUIntegrator(r, buf, integrateShader.WorkgroupSize()[0],
		sim.WithGPURounding(cfg.Rounding),
	)

	// ── Simulation ──────────────────────────────────────────────────────
	simulation := sim.NewSimulation(buf, integ,
		sim.WithRenderer(r),
		sim.WithCamera(cam),
		sim.WithStartPaused(cfg.StartPaused),
		sim.WithSpeed(cfg.InitialSpeed),
	)

	// ── Input ───────────────────────────────────────────────────────────
	eng.Window().SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeySpace:
			simulation.TogglePaused()
		case common.KeyUp:
			simulation.ScaleSpeed(speedStep)
		case common.KeyDown:
			simulation.ScaleSpeed(1 / speedStep)
		}
	})
	eng.Window().SetResizeCallback(simulation.Resize)

	eng.SetFrameCallback(simulation.Frame)
	eng.Run()

	buf.Release()
}
