package compiler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/robbyt/go-polyudf/engines/extism/adapters"
	"github.com/robbyt/go-polyudf/internal/helpers"
)

// Executable is a compiled WASM provider module.
type Executable struct {
	id          string
	scriptBytes []byte
	plugin      adapters.CompiledPlugin
	closed      atomic.Bool
	rwMutex     sync.RWMutex
}

func newExecutable(id string, scriptBytes []byte, plugin adapters.CompiledPlugin) *Executable {
	return &Executable{
		id:          id,
		scriptBytes: scriptBytes,
		plugin:      plugin,
	}
}

// NewExecutable wraps an already compiled plugin, for callers that build
// plugins themselves.
func NewExecutable(scriptBytes []byte, plugin adapters.CompiledPlugin) *Executable {
	if plugin == nil {
		return nil
	}
	return newExecutable(helpers.ShortSHA256(scriptBytes), scriptBytes, plugin)
}

// ID returns a short checksum of the module bytes.
func (e *Executable) ID() string {
	return e.id
}

// Size returns the module length in bytes.
func (e *Executable) Size() int {
	return len(e.scriptBytes)
}

// Plugin returns the compiled plugin, or ErrExecutableClosed after Close.
func (e *Executable) Plugin() (adapters.CompiledPlugin, error) {
	e.rwMutex.RLock()
	defer e.rwMutex.RUnlock()
	if e.closed.Load() {
		return nil, ErrExecutableClosed
	}
	return e.plugin, nil
}

// Close releases the compiled plugin. It is safe to call more than once.
func (e *Executable) Close(ctx context.Context) error {
	e.rwMutex.Lock()
	defer e.rwMutex.Unlock()

	if e.closed.CompareAndSwap(false, true) {
		return e.plugin.Close(ctx)
	}
	return nil
}
