package starlark

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/coinwatch/topn/pkg/value"
	"go.starlark.net/starlark"
)

// Evaluator runs Starlark scripts that compute render contexts
type Evaluator struct {
	thread   *starlark.Thread
	builtins starlark.StringDict
	globals  starlark.StringDict
}

// NewEvaluator creates a new Starlark evaluator
func NewEvaluator() *Evaluator {
	thread := &starlark.Thread{
		Name: "topn",
		Print: func(_ *starlark.Thread, msg string) {
			slog.Info("starlark", "message", msg)
		},
	}

	return &Evaluator{
		thread:   thread,
		builtins: CreateBuiltins(),
		globals:  make(starlark.StringDict),
	}
}

// CreateBuiltins returns the functions predeclared for every script
func CreateBuiltins() starlark.StringDict {
	return starlark.StringDict{
		"env": starlark.NewBuiltin("env", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var name, def string
			if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &def); err != nil {
				return starlark.None, err
			}
			if v, ok := os.LookupEnv(name); ok {
				return starlark.String(v), nil
			}
			return starlark.String(def), nil
		}),
	}
}

// SetGlobal sets a global variable in the Starlark environment
func (e *Evaluator) SetGlobal(name string, val value.Value) {
	e.globals[name] = ConvertToStarlark(val)
}

func (e *Evaluator) predeclared() starlark.StringDict {
	predeclared := make(starlark.StringDict, len(e.builtins)+len(e.globals))
	for k, v := range e.builtins {
		predeclared[k] = v
	}
	for k, v := range e.globals {
		predeclared[k] = v
	}
	return predeclared
}

// Eval evaluates a Starlark expression
func (e *Evaluator) Eval(expr string) (value.Value, error) {
	val, err := starlark.Eval(e.thread, "<eval>", expr, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark evaluation error: %w", err)
	}

	return ConvertFromStarlark(val), nil
}

// ExecFile executes a Starlark file and returns the globals it defined.
// src may be nil, in which case filename is read.
func (e *Evaluator) ExecFile(filename string, src any) (starlark.StringDict, error) {
	globals, err := starlark.ExecFile(e.thread, filename, src, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %w", err)
	}

	for k, v := range globals {
		e.globals[k] = v
	}

	return globals, nil
}

// ExecString executes a Starlark script from a string
func (e *Evaluator) ExecString(script string) (starlark.StringDict, error) {
	return e.ExecFile("<script>", script)
}

// GetGlobal retrieves a global variable
func (e *Evaluator) GetGlobal(name string) (value.Value, bool) {
	if val, ok := e.globals[name]; ok {
		return ConvertFromStarlark(val), true
	}
	return nil, false
}

// ExportContext exports the current globals as a render context. Builtins,
// functions and names starting with an underscore are skipped.
func (e *Evaluator) ExportContext() value.Dict {
	ctx := make(value.Dict)
	for key, val := range e.globals {
		if !e.isExportable(key, val) {
			continue
		}
		ctx[key] = ConvertFromStarlark(val)
	}
	return ctx
}

func (e *Evaluator) isExportable(key string, val starlark.Value) bool {
	if _, builtin := e.builtins[key]; builtin || strings.HasPrefix(key, "_") {
		return false
	}
	switch val.(type) {
	case starlark.Callable:
		return false
	}
	return true
}
