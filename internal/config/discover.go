package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFile is the configuration file looked up when none is given explicitly.
var DefaultFile = filepath.Join("config", "application.yaml")

// FindFile locates relative by walking up from the working directory.
func FindFile(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
