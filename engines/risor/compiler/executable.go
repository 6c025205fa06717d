package compiler

import (
	"context"
	"fmt"
	"sync"

	"github.com/risor-io/risor/object"
	"github.com/risor-io/risor/vm"
)

// Executable is a Risor provider script that has run to completion. The
// finished VM is kept so provider maps and closures stay live between calls.
type Executable struct {
	id string

	mu      sync.Mutex
	machine *vm.VirtualMachine
}

func newExecutable(id string, machine *vm.VirtualMachine) *Executable {
	return &Executable{
		id:      id,
		machine: machine,
	}
}

// ID returns a short checksum of the provider source.
func (e *Executable) ID() string {
	return e.id
}

// Get returns a top-level variable of the finished provider.
func (e *Executable) Get(name string) (object.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Get(name)
}

// Call runs fn against the provider's state. Calls are serialized since a
// Risor VM runs one frame stack at a time.
func (e *Executable) Call(ctx context.Context, fn object.Object, args []object.Object) (object.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch fn := fn.(type) {
	case *object.Function:
		return e.machine.Call(ctx, fn, args)
	case object.Callable:
		result := fn.Call(ctx, args...)
		if errObj, ok := result.(*object.Error); ok {
			return nil, errObj.Value()
		}
		return result, nil
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrNotCallable)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, fn.Type())
	}
}
