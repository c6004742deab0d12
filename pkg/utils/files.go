package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// IsPythonFile checks if a file is a Python source file
func IsPythonFile(filename string) bool {
	return strings.HasSuffix(filename, ".py")
}

// FindPythonFiles recursively finds all Python source files in a directory
func FindPythonFiles(root string) ([]string, error) {
	var pyFiles []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip caches, virtualenvs and hidden directories (but not the
		// root directory)
		if info.IsDir() && path != root {
			name := filepath.Base(path)
			if name == "__pycache__" || name == "venv" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if IsPythonFile(filepath.Base(path)) {
			pyFiles = append(pyFiles, path)
		}

		return nil
	})

	return pyFiles, err
}

// IsDirectory checks if the given path is a directory
func IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
