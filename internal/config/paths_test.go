package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths_Resolve(t *testing.T) {
	work := t.TempDir()
	exe := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(exe, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(exe, "data", "Base.txt"), []byte("A\n1\n"), 0644))

	p := &Paths{WorkDir: work, ExecutableDir: exe}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "absolute", in: "/srv/data.csv", want: "/srv/data.csv"},
		{name: "found next to executable", in: "data/Base.txt", want: filepath.Join(exe, "data", "Base.txt")},
		{name: "falls back to working dir", in: "exports", want: filepath.Join(work, "exports")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Resolve(tt.in))
		})
	}
}

func TestPaths_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := &Paths{
		ExportDir: filepath.Join(base, "exports"),
		LogFile:   filepath.Join(base, "logs", "app.log"),
	}

	require.NoError(t, p.EnsureDirectories())
	assert.DirExists(t, p.ExportDir)
	assert.DirExists(t, filepath.Join(base, "logs"))
	assert.Equal(t, filepath.Join(base, "exports", "ventas.csv"), p.ExportPath("ventas.csv"))
}

func TestConfig_GetPaths(t *testing.T) {
	cfg := Default()
	cfg.Data.Path = filepath.Join(t.TempDir(), "Base.txt")

	paths, err := cfg.GetPaths()
	require.NoError(t, err)
	assert.Equal(t, cfg.Data.Path, paths.DataFile)
	assert.True(t, filepath.IsAbs(paths.ExportDir))
	assert.False(t, FileExists(paths.DataFile))
}
