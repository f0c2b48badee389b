package scripting

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// entryPoints are the global callable names an evaluation reports on.
var entryPoints = []string{"check", "prepare", "run", "start", "transform"}

// Evaluation is the outcome of evaluating a script source: the identity the
// script declared through its define function plus the callable entry points
// it exposes as globals.
type Evaluation struct {
	// Name is the script's declared name.
	Name string
	// Type is the script's declared type tag.
	Type string

	callables map[string]struct{}
}

// HasCallable reports whether the script defined a global function with the
// given name.
func (e *Evaluation) HasCallable(name string) bool {
	_, ok := e.callables[name]
	return ok
}

// Evaluate runs source in a fresh sandboxed state and collects the script's
// declared identity. Every script must define a global `define(s)` function
// that fills s.name and s.type; Evaluate calls it with an empty table.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil Evaluation or an error; the sandboxed
// state does not outlive the call.
func Evaluate(source string, instLimit int) (*Evaluation, error) {
	L, cancel := NewSandboxedState(instLimit)
	defer cancel()
	defer L.Close()

	if err := L.DoString(source); err != nil {
		return nil, fmt.Errorf("scripting: evaluating script: %w", err)
	}

	define := L.GetGlobal("define")
	if define.Type() != lua.LTFunction {
		return nil, errors.New("scripting: script does not declare a define function")
	}

	decl := L.NewTable()
	if err := L.CallByParam(lua.P{
		Fn:      define,
		NRet:    0,
		Protect: true,
	}, decl); err != nil {
		return nil, fmt.Errorf("scripting: calling define: %w", err)
	}

	ev := &Evaluation{
		Name:      lua.LVAsString(L.GetField(decl, "name")),
		Type:      lua.LVAsString(L.GetField(decl, "type")),
		callables: make(map[string]struct{}, len(entryPoints)),
	}
	for _, name := range entryPoints {
		if L.GetGlobal(name).Type() == lua.LTFunction {
			ev.callables[name] = struct{}{}
		}
	}
	return ev, nil
}
