package scripting

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 1 * time.Second
)

// LogEntry is a single log line emitted by a script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// VM wraps a goja runtime with sandbox restrictions. Scripts get log() and
// stop(); host escape hatches (require, eval, Function, fetch) are removed.
type VM struct {
	runtime *goja.Runtime

	logs    []LogEntry
	maxLogs int

	stopRequested bool
}

// NewVM creates a sandboxed runtime.
func NewVM() *VM {
	vm := &VM{
		runtime: goja.New(),
		maxLogs: 500,
	}
	vm.inject()
	return vm
}

func (vm *VM) inject() {
	vm.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		if len(vm.logs) >= vm.maxLogs {
			vm.logs = vm.logs[1:]
		}
		vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: strings.Join(parts, " ")})
		return goja.Undefined()
	})

	console := vm.runtime.NewObject()
	console.Set("log", vm.runtime.Get("log"))
	vm.runtime.Set("console", console)

	vm.runtime.Set("stop", func(call goja.FunctionCall) goja.Value {
		vm.stopRequested = true
		return goja.Undefined()
	})

	// Sandbox: no module loading, no dynamic code, no network.
	vm.runtime.Set("require", goja.Undefined())
	vm.runtime.Set("eval", goja.Undefined())
	vm.runtime.Set("Function", goja.Undefined())
	vm.runtime.Set("fetch", goja.Undefined())
	vm.runtime.Set("XMLHttpRequest", goja.Undefined())
}

// Execute runs the script source once, letting it define dobet() and set
// its starting bet variables.
func (vm *VM) Execute(source string) error {
	return vm.runWithTimeout(scriptInitTimeout, func() error {
		if _, err := vm.runtime.RunString(source); err != nil {
			return fmt.Errorf("script execution failed: %w", err)
		}
		return nil
	})
}

// Set exposes a host value under a global name.
func (vm *VM) Set(name string, value any) {
	vm.runtime.Set(name, value)
}

// Float reads a global as float64, returning def when absent.
func (vm *VM) Float(name string, def float64) float64 {
	val := vm.runtime.Get(name)
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return def
	}
	return val.ToFloat()
}

// CallDobet invokes the script's dobet() function.
func (vm *VM) CallDobet() error {
	fn := vm.runtime.Get("dobet")
	if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
		return fmt.Errorf("script does not define dobet()")
	}
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return fmt.Errorf("dobet is not a function")
	}
	return vm.runWithTimeout(scriptCallTimeout, func() error {
		if _, err := callable(goja.Undefined()); err != nil {
			return fmt.Errorf("dobet() failed: %w", err)
		}
		return nil
	})
}

// runWithTimeout executes fn, interrupting the runtime if it runs past the
// deadline.
func (vm *VM) runWithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		vm.runtime.Interrupt("script execution timeout")
		select {
		case <-done:
		case <-time.After(200 * time.Millisecond):
		}
		vm.runtime.ClearInterrupt()
		return fmt.Errorf("script timed out after %s", timeout)
	}
}

// StopRequested reports whether the script called stop().
func (vm *VM) StopRequested() bool { return vm.stopRequested }

// Logs returns the collected script log lines.
func (vm *VM) Logs() []LogEntry {
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}
