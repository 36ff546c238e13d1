package fip

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ModuleLoader resolves and evaluates `use` targets. Resolution is always
// relative to the interpreter's entry-point directory, not the importing
// file's directory — a deliberate match of
// original_source/src/interpreter.rs's resolve_module_path, which takes
// the same shortcut rather than tracking a per-file base directory.
type ModuleLoader struct {
	entryDir string
	ctx      context.Context
	cache    map[string]*Module
	loading  map[string]bool
}

func NewModuleLoader(ctx context.Context, entryDir string) *ModuleLoader {
	return &ModuleLoader{
		entryDir: entryDir,
		ctx:      ctx,
		cache:    map[string]*Module{},
		loading:  map[string]bool{},
	}
}

// Load resolves, parses, and evaluates modulePath, caching the result.
// Per spec §4.5/§9 every top-level binding a module defines is exported;
// there is no explicit export list to track.
func (l *ModuleLoader) Load(modulePath string, loc Location) (*Module, error) {
	if mod, ok := l.cache[modulePath]; ok {
		slog.Debug("module cache hit", "module", modulePath)
		return mod, nil
	}
	slog.Debug("module cache miss", "module", modulePath)
	if l.loading[modulePath] {
		return nil, newRuntimeError(loc, "import cycle detected involving module %q", modulePath)
	}
	l.loading[modulePath] = true
	defer delete(l.loading, modulePath)

	fullPath, err := l.resolvePath(modulePath)
	if err != nil {
		return nil, newRuntimeError(loc, "%v", err)
	}
	src, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, newRuntimeError(loc, "failed to read module %q (resolved to %s): %v", modulePath, fullPath, err)
	}

	prog, err := ParseFile(fullPath, string(src))
	if err != nil {
		return nil, err
	}

	env := StdEnv().Child()
	ev := NewEvaluator(l.ctx, l)
	if _, err := ev.EvalProgram(prog, env); err != nil {
		return nil, err
	}

	mod := &Module{Env: env, Exports: map[string]Value{}}
	for name, v := range env.vars {
		mod.Exports[name] = v
	}

	l.cache[modulePath] = mod
	return mod, nil
}

func (l *ModuleLoader) resolvePath(modulePath string) (string, error) {
	path := filepath.Join(l.entryDir, modulePath)
	if filepath.Ext(path) == "" {
		path += ".fip"
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("module file not found: %s (resolved from %q)", path, modulePath)
	}
	return path, nil
}
