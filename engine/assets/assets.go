package assets

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/terravox/engine/assets/loaders"
	"github.com/spaghettifunk/terravox/engine/core"
)

const (
	VOXELS_VERTEX_SHADER   = "voxels.vert"
	VOXELS_FRAGMENT_SHADER = "voxels.frag"
)

//go:embed shaders/*.wgsl
var embeddedShaders embed.FS

// EmbeddedShaders exposes the WGSL sources built into the binary.
func EmbeddedShaders() embed.FS {
	return embeddedShaders
}

type ShaderInfo struct {
	Name       string
	Path       string
	LastLoaded time.Time
}

/**
 * @brief Supplies SPIR-V for the renderers, either compiled from the embedded
 * WGSL sources or read from a directory of .spv files. In the latter case the
 * directory can be watched and every rewritten binary is announced on the
 * event bus with EVENT_CODE_SHADERS_CHANGED.
 */
type ShaderLibrary struct {
	config core.ShaderConfig
	loader Loader

	mutex  sync.RWMutex
	loaded map[string]ShaderInfo

	bus      *core.EventBus
	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewShaderLibrary(config core.ShaderConfig) (*ShaderLibrary, error) {
	sl := &ShaderLibrary{
		config: config,
		loaded: make(map[string]ShaderInfo),
	}

	switch config.Source {
	case core.SHADER_SOURCE_EMBEDDED:
		sl.loader = &loaders.WGSLLoader{FS: embeddedShaders, Dir: "shaders"}
	case core.SHADER_SOURCE_SPIRV:
		if config.Directory == "" {
			return nil, fmt.Errorf("spirv shaders need a directory: %w", core.ErrPrecondition)
		}
		sl.loader = &loaders.SPIRVLoader{Directory: config.Directory}
	default:
		return nil, fmt.Errorf("unknown shader source %q: %w", config.Source, core.ErrPrecondition)
	}
	return sl, nil
}

// Load returns the SPIR-V words of the named shader.
func (sl *ShaderLibrary) Load(name string) ([]uint32, error) {
	code, err := sl.loader.Load(name)
	if err != nil {
		core.LogError("failed to load shader '%s': %s", name, err)
		return nil, err
	}

	info := ShaderInfo{Name: name, LastLoaded: time.Now()}
	if l, ok := sl.loader.(*loaders.SPIRVLoader); ok {
		info.Path = l.Path(name)
	}
	sl.mutex.Lock()
	sl.loaded[name] = info
	sl.mutex.Unlock()

	core.LogDebug("shader '%s' loaded (%d words)", name, len(code))
	return code, nil
}

// Voxels loads the vertex and fragment programs of the voxel pipeline.
func (sl *ShaderLibrary) Voxels() (vertex, fragment []uint32, err error) {
	if vertex, err = sl.Load(VOXELS_VERTEX_SHADER); err != nil {
		return nil, nil, err
	}
	if fragment, err = sl.Load(VOXELS_FRAGMENT_SHADER); err != nil {
		return nil, nil, err
	}
	return vertex, fragment, nil
}

func (sl *ShaderLibrary) Info(name string) (ShaderInfo, bool) {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()
	info, ok := sl.loaded[name]
	return info, ok
}

/**
 * @brief Starts watching the shader directory. Only valid for SPIR-V shaders.
 * Events fire from the watcher goroutine.
 */
func (sl *ShaderLibrary) Watch(bus *core.EventBus) error {
	if sl.config.Source != core.SHADER_SOURCE_SPIRV {
		return fmt.Errorf("only spirv shaders can be watched: %w", core.ErrPrecondition)
	}
	if bus == nil {
		return fmt.Errorf("watching shaders needs an event bus: %w", core.ErrPrecondition)
	}

	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	if sl.isClosed {
		return errors.New("shader library already closed")
	}
	if sl.fsnotify != nil {
		return nil
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsWatch.Add(sl.config.Directory); err != nil {
		fsWatch.Close()
		return err
	}
	sl.fsnotify = fsWatch
	sl.bus = bus
	sl.done = make(chan struct{})
	sl.stopped = make(chan struct{})

	go sl.start()
	core.LogInfo("watching shaders in %s", sl.config.Directory)
	return nil
}

// Close stops the watcher, if any. Safe to call more than once.
func (sl *ShaderLibrary) Close() error {
	sl.mutex.Lock()
	if sl.isClosed {
		sl.mutex.Unlock()
		return nil
	}
	sl.isClosed = true
	done, stopped := sl.done, sl.stopped
	sl.mutex.Unlock()

	if done != nil {
		close(done)
		<-stopped
	}
	return nil
}

func (sl *ShaderLibrary) start() {
	defer close(sl.stopped)
	for {
		select {
		case e, ok := <-sl.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				sl.handleFileEvent(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				sl.removeShader(e.Name)
			}

		case err, ok := <-sl.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%s", err.Error())

		case <-sl.done:
			sl.fsnotify.Close()
			return
		}
	}
}

func (sl *ShaderLibrary) handleFileEvent(path string) {
	name, ok := shaderName(path)
	if !ok {
		return
	}
	core.LogDebug("shader '%s' changed on disk", name)

	ctx := core.EventContext{}
	ctx.Data.C[0] = path
	ctx.Data.C[1] = name
	sl.bus.Fire(core.EVENT_CODE_SHADERS_CHANGED, sl, ctx)
}

func (sl *ShaderLibrary) removeShader(path string) {
	name, ok := shaderName(path)
	if !ok {
		return
	}
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	delete(sl.loaded, name)
}

func shaderName(path string) (string, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != loaders.SPIRV_EXTENSION {
		return "", false
	}
	return strings.TrimSuffix(base, loaders.SPIRV_EXTENSION), true
}
