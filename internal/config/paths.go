package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved file system locations used by the application
type Paths struct {
	WorkDir       string
	ExecutableDir string
	DataFile      string
	ExportDir     string
	LogFile       string
}

// GetPaths resolves the configured paths. Relative paths are tried against the
// working directory first and then against the directory of the executable.
func (c *Config) GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	exeDir := wd
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		exeDir = filepath.Dir(exe)
	}

	p := &Paths{WorkDir: wd, ExecutableDir: exeDir}
	p.DataFile = p.Resolve(c.Data.Path)
	p.ExportDir = p.Resolve(c.Data.ExportDir)
	p.LogFile = p.Resolve(c.Logging.FilePath)
	return p, nil
}

// Resolve returns an absolute path for name. Existing files win; otherwise
// the working directory is used.
func (p *Paths) Resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}

	for _, base := range []string{p.WorkDir, p.ExecutableDir} {
		candidate := filepath.Join(base, name)
		if FileExists(candidate) {
			return candidate
		}
	}
	return filepath.Join(p.WorkDir, name)
}

// EnsureDirectories creates the export and log directories
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.ExportDir}
	if p.LogFile != "" {
		directories = append(directories, filepath.Dir(p.LogFile))
	}

	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportPath returns the path of an export file inside the export directory
func (p *Paths) ExportPath(filename string) string {
	return filepath.Join(p.ExportDir, filename)
}

// LogPathResolution logs the resolved locations
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("path resolution summary",
		slog.String("work_dir", p.WorkDir),
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("data_file", p.DataFile),
		slog.Bool("data_file_exists", FileExists(p.DataFile)),
		slog.String("export_dir", p.ExportDir),
		slog.String("log_file", p.LogFile),
	)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
