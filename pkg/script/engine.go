// Package script embeds a JavaScript hook that can veto or annotate
// recorded events before replay.
package script

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/devicelab-dev/replaykit/pkg/event"
	"github.com/devicelab-dev/replaykit/pkg/logger"
)

// Action is the hook's verdict for one event.
type Action string

const (
	// ActionReplay lets the event go through the translation pipeline.
	ActionReplay Action = "replay"
	// ActionSkip drops the event without replaying it.
	ActionSkip Action = "skip"
)

// Engine wraps a goja runtime hosting the user hook script.
type Engine struct {
	runtime   *goja.Runtime
	variables map[string]interface{}
	onEvent   goja.Callable
	mu        sync.Mutex
}

// New creates an engine with the built-ins registered.
func New() *Engine {
	e := &Engine{
		runtime:   goja.New(),
		variables: make(map[string]interface{}),
	}
	e.setupBuiltins()
	return e
}

// setupBuiltins registers console and the vars object.
func (e *Engine) setupBuiltins() {
	makeConsoleFunc := func(level func(string, ...interface{})) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = fmt.Sprintf("%v", arg.Export())
			}
			level("script: %s", strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc(logger.Info))
	console.Set("warn", makeConsoleFunc(logger.Warn))
	console.Set("error", makeConsoleFunc(logger.Error))
	e.runtime.Set("console", console)
	e.runtime.Set("vars", e.variables)
}

// SetVariable exposes a value to the script as vars.<name>.
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.variables[name] = value
}

// Load runs the hook script and captures its onEvent function, if any.
func (e *Engine) Load(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.runtime.RunString(src); err != nil {
		return fmt.Errorf("run hook script: %w", err)
	}

	v := e.runtime.Get("onEvent")
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return fmt.Errorf("onEvent is not a function")
	}
	e.onEvent = fn
	return nil
}

// OnEvent asks the hook what to do with the event. Without a loaded
// onEvent function every event replays.
func (e *Engine) OnEvent(ev *event.Event) (Action, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.onEvent == nil {
		return ActionReplay, nil
	}

	arg := e.runtime.ToValue(map[string]interface{}{
		"kind":       string(ev.Kind),
		"x":          ev.X,
		"y":          ev.Y,
		"dx":         ev.DX,
		"dy":         ev.DY,
		"durationMs": ev.DurationMs,
		"input":      ev.Input,
		"target": map[string]interface{}{
			"text":        ev.Target.Text,
			"description": ev.Target.Description,
			"resourceId":  ev.Target.ResourceID,
			"class":       ev.Target.Class,
		},
	})

	result, err := e.onEvent(goja.Undefined(), arg)
	if err != nil {
		return ActionReplay, fmt.Errorf("onEvent hook: %w", err)
	}
	switch strings.ToLower(result.String()) {
	case string(ActionSkip):
		return ActionSkip, nil
	default:
		return ActionReplay, nil
	}
}
