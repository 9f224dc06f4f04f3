package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	dst := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, copyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "assets", "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(data))

	data, err = os.ReadFile(filepath.Join(dst, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}

func TestMigrateCommandTree(t *testing.T) {
	cmd := MigrateCmd()
	names := []string{}
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status"}, names)
}
