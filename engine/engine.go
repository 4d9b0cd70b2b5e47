package engine

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/terravox/engine/assets"
	"github.com/spaghettifunk/terravox/engine/containers"
	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/drawbuffer"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
	"github.com/spaghettifunk/terravox/engine/renderer/recorder"
	"github.com/spaghettifunk/terravox/engine/renderer/voxels"
	"github.com/spaghettifunk/terravox/engine/systems"
)

// Number of recorded frames kept for inspection.
const MAX_KEPT_CAPTURES = 8

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Every resource was released
	EngineStageShutdown
)

/**
 * @brief Headless capture tool: builds the voxel renderer against a recording
 * device, fills a few chunks with synthetic terrain, records frames and logs
 * the captured command stream.
 */
type Engine struct {
	config  *core.Config
	session uuid.UUID

	currentStage Stage
	bus          *core.EventBus
	clock        *core.Clock
	metrics      *core.FrameMetrics

	context    *recorder.Context
	drawBuffer *drawbuffer.DrawBuffer
	shaders    *assets.ShaderLibrary
	chunks     []metadata.Chunk

	// guards renderer, which is rebuilt when shaders change, and captures
	mutex    sync.Mutex
	renderer *voxels.Voxels
	captures *containers.RingQueue[[]recorder.Command]

	quit     chan struct{}
	quitOnce sync.Once
}

func New(config *core.Config) (*Engine, error) {
	if config == nil {
		config = core.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config:       config,
		session:      uuid.New(),
		currentStage: EngineStageUninitialized,
		bus:          core.NewEventBus(),
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		captures:     containers.NewRingQueue[[]recorder.Command](MAX_KEPT_CAPTURES),
		quit:         make(chan struct{}),
	}, nil
}

func (e *Engine) Session() uuid.UUID { return e.session }

func (e *Engine) Events() *core.EventBus { return e.bus }

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	core.LogInfo("capture session %s", e.session)

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_SHADERS_CHANGED, e, e.onShadersChanged)

	e.context = recorder.NewContext()

	db, err := drawbuffer.New(e.context.Device(), drawbuffer.Config{
		Chunks:           e.config.DrawBuffer.Chunks,
		VerticesPerChunk: e.config.DrawBuffer.VerticesPerChunk,
	})
	if err != nil {
		return err
	}
	e.drawBuffer = db

	if err := e.fillChunks(); err != nil {
		return err
	}

	shaders, err := assets.NewShaderLibrary(e.config.Shaders)
	if err != nil {
		return err
	}
	e.shaders = shaders

	renderer, err := e.buildRenderer()
	if err != nil {
		return err
	}
	e.renderer = renderer

	if e.config.Shaders.Watch {
		if err := e.shaders.Watch(e.bus); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Generates the synthetic chunks on the job system. Every chunk has its own
// generator seeded from the capture seed, so the result does not depend on
// scheduling.
func (e *Engine) fillChunks() error {
	jobs, err := systems.NewJobSystem(runtime.NumCPU(), int(e.config.Capture.Chunks))
	if err != nil {
		return err
	}
	defer jobs.Shutdown()

	var (
		mu   sync.Mutex
		errs []error
	)
	for i := uint32(0); i < e.config.Capture.Chunks; i++ {
		chunk, err := e.drawBuffer.Alloc()
		if err != nil {
			return err
		}
		e.chunks = append(e.chunks, chunk)

		seed := e.config.Capture.Seed + uint64(i)
		originX := float32(i * CHUNK_SIZE)
		jobs.Submit(systems.JobTask{
			Run: func() error {
				rng := rand.New(rand.NewSource(seed))
				vertices := syntheticChunk(rng, originX, 0, e.config.DrawBuffer.VerticesPerChunk)
				if err := e.drawBuffer.Upload(chunk, vertices); err != nil {
					return fmt.Errorf("chunk %d: %w", chunk, err)
				}
				core.LogDebug("chunk %d: %d vertices", chunk, len(vertices))
				return nil
			},
			OnFailure: func(err error) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			},
		})
	}
	jobs.Wait()
	return errors.Join(errs...)
}

func (e *Engine) buildRenderer() (*voxels.Voxels, error) {
	vertex, fragment, err := e.shaders.Voxels()
	if err != nil {
		return nil, err
	}
	return voxels.New(e.context, e.drawBuffer, voxels.ShaderSet{Vertex: vertex, Fragment: fragment})
}

/**
 * @brief Records the configured number of frames. When shader watching is on,
 * it then keeps running until Quit so rebuilt pipelines can be captured too.
 */
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized: %w", core.ErrPrecondition)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	for frame := uint32(0); frame < e.config.Capture.Frames; frame++ {
		select {
		case <-e.quit:
			return nil
		default:
		}
		if err := e.recordFrame(frame); err != nil {
			return err
		}
	}
	core.LogInfo("captured %d frames, %d draws, avg frame %.3fms", e.config.Capture.Frames, e.metrics.TotalDraws(), e.metrics.FrameTime())

	if e.config.Shaders.Watch {
		core.LogInfo("waiting for shader changes, interrupt to stop")
		<-e.quit
	}
	return nil
}

func (e *Engine) recordFrame(frame uint32) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.renderer == nil {
		// shut down while recording
		return nil
	}

	e.clock.Update()
	start := e.clock.Elapsed()

	cmd := recorder.NewCommandBuffer()
	if err := e.renderer.DrawAll(cmd, e.drawBuffer, e.chunks); err != nil {
		return err
	}

	e.clock.Update()
	e.metrics.Update(e.clock.Elapsed()-start, uint32(len(e.chunks)))

	commands := cmd.Commands()
	for _, c := range commands {
		core.LogInfo("frame %d: %s", frame, c)
	}
	e.captures.Push(commands)
	return nil
}

// Captures returns the most recent recorded frames, oldest first.
func (e *Engine) Captures() [][]recorder.Command {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.captures.Items()
}

// Quit stops Run. Safe to call from any goroutine, more than once.
func (e *Engine) Quit() {
	e.bus.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.quitOnce.Do(func() { close(e.quit) })

	var errs []error
	if e.shaders != nil {
		errs = append(errs, e.shaders.Close())
	}

	e.mutex.Lock()
	if e.renderer != nil {
		errs = append(errs, e.renderer.Destroy())
		e.renderer = nil
	}
	e.mutex.Unlock()

	if e.drawBuffer != nil {
		e.drawBuffer.Destroy()
	}

	if e.context != nil {
		if live := e.context.Recorder().LiveTotal(); live != 0 {
			core.LogWarn("%d gpu objects still alive after shutdown", live)
		}
		for _, v := range e.context.Recorder().Violations() {
			core.LogError("lifecycle violation: %s", v)
		}
	}

	e.bus.Unregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	e.bus.Unregister(core.EVENT_CODE_SHADERS_CHANGED, e)
	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

func (e *Engine) onEvent(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT recieved, shutting down.")
		e.quitOnce.Do(func() { close(e.quit) })
		return true
	}
	return false
}

// Rebuilds the renderer on the new binaries. The old one stays in use if the
// rebuild fails.
func (e *Engine) onShadersChanged(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	core.LogInfo("shader %s changed, rebuilding the voxel renderer", data.Data.C[1])

	renderer, err := e.buildRenderer()
	if err != nil {
		core.LogError("keeping the current pipeline: %s", err)
		return true
	}

	e.mutex.Lock()
	old := e.renderer
	e.renderer = renderer
	e.mutex.Unlock()

	if old != nil {
		if err := old.Destroy(); err != nil {
			core.LogError("%s", err.Error())
		}
	}

	if err := e.recordFrame(0); err != nil {
		core.LogError("%s", err.Error())
	}
	return true
}
