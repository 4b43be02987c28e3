package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved file system locations used by the service.
type Paths struct {
	BaseDir     string
	DatasetFile string
	ExportsDir  string
	LogsDir     string
	LogFile     string
}

// ResolvePaths turns the configured relative paths into absolute ones. An
// empty baseDir means the current working directory.
func (c *Config) ResolvePaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	base, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	logFile := resolve(base, c.Logging.FilePath)
	return &Paths{
		BaseDir:     base,
		DatasetFile: resolve(base, c.Dataset.Path),
		ExportsDir:  resolve(base, c.Exports.Dir),
		LogsDir:     filepath.Dir(logFile),
		LogFile:     logFile,
	}, nil
}

// EnsureDirectories creates the directories the service writes into.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportPath returns the absolute path of a file in the exports directory.
func (p *Paths) ExportPath(name string) string {
	return filepath.Join(p.ExportsDir, filepath.Base(name))
}

// DatasetExists reports whether the dataset file is present.
func (p *Paths) DatasetExists() bool {
	info, err := os.Stat(p.DatasetFile)
	return err == nil && !info.IsDir()
}

func resolve(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
