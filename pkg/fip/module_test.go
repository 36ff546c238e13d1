package fip

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleLoaderResolvesAndCaches(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "lib.fip", "value: 42\n")

	loader := NewModuleLoader(context.Background(), dir)
	mod1, err := loader.Load("lib", Location{})
	require.NoError(t, err)
	assert.Equal(t, NumberValue{Val: 42}, mod1.Exports["value"])

	mod2, err := loader.Load("lib", Location{})
	require.NoError(t, err)
	assert.Same(t, mod1, mod2)
}

func TestModuleLoaderDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "a.fip", `use x from "b"
x
`)
	writeTempFile(t, dir, "b.fip", `use x from "a"
x
`)

	loader := NewModuleLoader(context.Background(), dir)
	_, err := loader.Load("a", Location{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestModuleLoaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	loader := NewModuleLoader(context.Background(), dir)
	_, err := loader.Load("nope", Location{})
	require.Error(t, err)
}

func TestModuleLoaderMissingExport(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "lib.fip", "value: 1\n")
	main := writeTempFile(t, dir, "main.fip", `use missing from "lib"
missing
`)

	_, _, err := EvaluateFile(context.Background(), main)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no export")
}

func TestModuleLoaderResolutionIsRelativeToEntryDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeTempFile(t, dir, "lib.fip", "value: 7\n")
	// nested.fip lives in sub/ but imports "lib" (which lives in dir/, not
	// sub/): resolution for every `use` is relative to the interpreter's
	// fixed entry-point directory, not the importing file's own directory.
	writeTempFile(t, sub, "nested.fip", `use value from "lib"
value
`)
	main := writeTempFile(t, dir, "main.fip", `use value from "sub/nested"
value
`)

	result, _, err := EvaluateFile(context.Background(), main)
	require.NoError(t, err)
	assert.Equal(t, NumberValue{Val: 7}, result)
}
