package autostart

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// LocalFS accesses the filesystem directly.
type LocalFS struct{}

// MkdirAll creates dir and its parents.
func (LocalFS) MkdirAll(_ context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// List returns the *.desktop files in dir, skipping directories.
func (LocalFS) List(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".desktop") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile returns the content of name.
func (LocalFS) ReadFile(_ context.Context, name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile creates or truncates name.
func (LocalFS) WriteFile(_ context.Context, name, content string) error {
	return os.WriteFile(name, []byte(content), 0644)
}

// Remove deletes name. It returns false when name does not exist.
func (LocalFS) Remove(_ context.Context, name string) (bool, error) {
	err := os.Remove(name)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Runnable checks paths for execute permission and looks bare names up in
// PATH.
func (LocalFS) Runnable(_ context.Context, program string) bool {
	if program == "" {
		return false
	}
	if strings.Contains(program, "/") {
		return unix.Access(program, unix.X_OK) == nil
	}
	_, err := exec.LookPath(program)
	return err == nil
}
