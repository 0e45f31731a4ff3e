package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place, so readers see either the previous content or the new content.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Artifact is one file in a set published together.
type Artifact struct {
	Path string
	Data []byte
}

// PublishAll writes every artifact atomically. All temp files are staged
// before the first rename, so a staging failure leaves every published path
// untouched.
func PublishAll(artifacts []Artifact, mode os.FileMode) error {
	staged := make([]string, 0, len(artifacts))
	cleanup := func() {
		for _, p := range staged {
			_ = os.Remove(p)
		}
	}

	for _, artifact := range artifacts {
		dir := filepath.Dir(artifact.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			cleanup()
			return fmt.Errorf("create directory: %w", err)
		}
		tmp, err := os.CreateTemp(dir, "."+filepath.Base(artifact.Path)+".*.tmp")
		if err != nil {
			cleanup()
			return fmt.Errorf("create temp file: %w", err)
		}
		staged = append(staged, tmp.Name())
		if _, err := tmp.Write(artifact.Data); err != nil {
			_ = tmp.Close()
			cleanup()
			return fmt.Errorf("write %s: %w", filepath.Base(artifact.Path), err)
		}
		if err := tmp.Close(); err != nil {
			cleanup()
			return fmt.Errorf("close %s: %w", filepath.Base(artifact.Path), err)
		}
		if err := os.Chmod(tmp.Name(), mode); err != nil {
			cleanup()
			return fmt.Errorf("chmod %s: %w", filepath.Base(artifact.Path), err)
		}
	}

	var failed []string
	for i, artifact := range artifacts {
		if err := os.Rename(staged[i], artifact.Path); err != nil {
			_ = os.Remove(staged[i])
			failed = append(failed, fmt.Sprintf("%s: %v", filepath.Base(artifact.Path), err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("publish: %s", strings.Join(failed, "; "))
	}
	return nil
}
