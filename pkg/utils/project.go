package utils

import (
	"os"
	"path/filepath"
)

// markers that identify the root of a Python project
var projectMarkers = []string{"pyproject.toml", "setup.py", "setup.cfg"}

// GetProjectRoot walks up from the given path looking for a Python
// project marker file and returns the directory holding it, or "" when
// none is found.
func GetProjectRoot(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
