package fip

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfigDecodesFields(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "fip.toml", "entry = \"main.fip\"\ndebug = true\n")

	config, err := LoadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "main.fip", config.Entry)
	assert.True(t, config.Debug)
}

func TestLoadProjectConfigMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "fip.toml", "entry = not valid toml +++\n")

	_, err := LoadProjectConfig(path)
	require.Error(t, err)
}

func TestFindProjectConfigInStartingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "fip.toml", "entry = \"main.fip\"\n")

	path, config, err := FindProjectConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, filepath.Join(dir, "fip.toml"), path)
	assert.Equal(t, "main.fip", config.Entry)
}

func TestFindProjectConfigWalksUpToParent(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "fip.toml", "entry = \"main.fip\"\n")
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	path, config, err := FindProjectConfig(sub)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, filepath.Join(dir, "fip.toml"), path)
	assert.Equal(t, "main.fip", config.Entry)
}

func TestFindProjectConfigStopsAtGitBoundary(t *testing.T) {
	grandparent := t.TempDir()
	writeTempFile(t, grandparent, "fip.toml", "entry = \"unreachable.fip\"\n")
	parent := filepath.Join(grandparent, "parent")
	require.NoError(t, os.MkdirAll(filepath.Join(parent, ".git"), 0o755))
	child := filepath.Join(parent, "child")
	require.NoError(t, os.MkdirAll(child, 0o755))

	path, config, err := FindProjectConfig(child)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Nil(t, config)
}

func TestFindProjectConfigNotFoundAnywhere(t *testing.T) {
	dir := t.TempDir()
	path, config, err := FindProjectConfig(dir)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Nil(t, config)
}
