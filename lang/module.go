package lang

import (
	"context"
	"log/slog"
	"maps"
	"sync"
)

// Module is a named set of built-ins that a program loads with import.
type Module struct {
	Name  string
	Funcs map[string]*Builtin
}

// modules returns the registry of loadable modules.
var modules = sync.OnceValue(func() map[string]*Module {
	return map[string]*Module{
		"io":   {Name: "io", Funcs: ioFuncs()},
		"game": {Name: "game", Funcs: gameFuncs()},
	}
})

// Modules returns the names of the modules available to import.
func Modules() []string { return mapKeys(modules()) }

// ModuleFunctions returns the function names of the named module, sorted,
// or nil if there is no such module.
func ModuleFunctions(name string) []string {
	m, ok := modules()[name]
	if !ok {
		return nil
	}

	return mapKeys(m.Funcs)
}

// load returns the named module, recording it as loaded by this
// interpreter.
func (in *Interpreter) load(ctx context.Context, name string) (*Module, *Error) {
	if m, ok := in.loaded[name]; ok {
		return m, nil
	}

	m, ok := modules()[name]
	if !ok {
		e := ErrUnknownModule.Describe("Failed to import module '%s': unknown module", name)
		if hint := suggest(name, Modules()); hint != "" {
			e = e.WithHint(hint)
		}

		return nil, e.With(slog.String("module", name))
	}

	in.loaded[name] = m

	in.logger.DebugContext(ctx, "module loaded",
		slog.String("module", name), slog.Int("functions", len(m.Funcs)))

	return m, nil
}

// importAll merges every function of the named module into the built-ins.
func (in *Interpreter) importAll(ctx context.Context, name string) error {
	m, err := in.load(ctx, name)
	if err != nil {
		return err
	}

	maps.Copy(in.builtins, m.Funcs)

	return nil
}
