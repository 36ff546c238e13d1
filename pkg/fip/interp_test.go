package fip

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestEvaluateFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "main.fip", "a: 1\nb: 2\na + b\n")

	result, mod, err := EvaluateFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, NumberValue{Val: 3}, result)
	assert.Equal(t, NumberValue{Val: 1}, mod.Exports["a"])
	assert.Equal(t, NumberValue{Val: 2}, mod.Exports["b"])
}

func TestEvaluateFileWithUse(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "lib.fip", "greeting: \"hi\"\n")
	main := writeTempFile(t, dir, "main.fip", `use greeting from "lib"
greeting
`)

	result, _, err := EvaluateFile(context.Background(), main)
	require.NoError(t, err)
	assert.Equal(t, StringValue{Val: "hi"}, result)
}

func TestEvaluateFilePropagatesParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "bad.fip", "1 +\n")

	_, _, err := EvaluateFile(context.Background(), path)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestAnalyzeFileFindsOutermostViolation(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "bad.fip", "bad: (x) { log!(x) }\n")

	diags, err := AnalyzeFile(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity())
}

func TestAnalyzeFileRecursesIntoNestedFuncLits(t *testing.T) {
	dir := t.TempDir()
	// The outer function is clean; the nested one it returns has a suffix
	// violation that checkPuritySuffixes' own witness scan cannot see
	// because it stops at nested FuncLit boundaries. AnalyzeFile's lint
	// walk should still find it.
	path := writeTempFile(t, dir, "bad.fip", `make: () { (x) { log!(x) } }
`)

	diags, err := AnalyzeFile(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
}

func TestAnalyzeFileCleanProgramHasNoDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "ok.fip", `double: (x) { x * 2 }
even?: (x) { x / 2 * 2 = x }
`)

	diags, err := AnalyzeFile(path)
	require.NoError(t, err)
	assert.Empty(t, diags)
}
