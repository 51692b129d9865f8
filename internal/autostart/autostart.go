// Package autostart manages the desktop entries started at login. The
// autostart directory is reached through a Filesystem chosen once from the
// execution context: the local one natively, or host commands from inside
// a sandbox.
package autostart

import (
	"context"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/tweakslite/internal/desktopentry"
)

// Filesystem is the file access the Synchronizer and Catalog need.
type Filesystem interface {
	MkdirAll(ctx context.Context, dir string) error
	// List returns the paths of the *.desktop files directly inside dir.
	List(ctx context.Context, dir string) ([]string, error)
	ReadFile(ctx context.Context, name string) (string, error)
	WriteFile(ctx context.Context, name, content string) error
	// Remove deletes name and reports whether it existed.
	Remove(ctx context.Context, name string) (bool, error)
	// Runnable reports whether program can be launched where autostart
	// entries run.
	Runnable(ctx context.Context, program string) bool
}

// Synchronizer lists, adds and removes autostart entries.
type Synchronizer struct {
	fs     Filesystem
	dir    string
	logger *zap.Logger
}

// New creates a Synchronizer for the autostart directory dir.
func New(fs Filesystem, dir string, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		fs:     fs,
		dir:    dir,
		logger: logger.Named("autostart"),
	}
}

// Dir returns the autostart directory.
func (s *Synchronizer) Dir() string { return s.dir }

// List returns the installed entries sorted by file name. Files that cannot
// be read are logged and skipped.
func (s *Synchronizer) List(ctx context.Context) []desktopentry.Entry {
	if err := s.fs.MkdirAll(ctx, s.dir); err != nil {
		s.logger.Error("Failed to create autostart directory",
			zap.String("dir", s.dir), zap.Error(err))
		return nil
	}
	files, err := s.fs.List(ctx, s.dir)
	if err != nil {
		s.logger.Error("Failed to list autostart directory",
			zap.String("dir", s.dir), zap.Error(err))
		return nil
	}

	entries := make([]desktopentry.Entry, 0, len(files))
	for _, f := range files {
		content, err := s.fs.ReadFile(ctx, f)
		if err != nil {
			s.logger.Warn("Skipping unreadable autostart entry",
				zap.String("path", f), zap.Error(err))
			continue
		}
		entries = append(entries, desktopentry.Parse(f, content))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Basename() < entries[j].Basename()
	})
	s.logger.Debug("Listed autostart entries", zap.Int("count", len(entries)))
	return entries
}

// Contains reports whether an entry called basename is installed.
func (s *Synchronizer) Contains(ctx context.Context, basename string) bool {
	files, err := s.fs.List(ctx, s.dir)
	if err != nil {
		return false
	}
	for _, f := range files {
		if path.Base(f) == basename {
			return true
		}
	}
	return false
}

// Add installs e under its basename, replacing any entry of the same name.
// File entries are copied verbatim; catalog entries are synthesized first.
// An entry without content is read from its path.
func (s *Synchronizer) Add(ctx context.Context, e desktopentry.Entry) bool {
	name := e.Basename()
	if name == "" || name == "." || name == "/" {
		s.logger.Error("Autostart entry has no file name", zap.String("name", e.DisplayName()))
		return false
	}
	log := s.logger.With(zap.String("entry", name))

	content := e.Content
	if content == "" {
		c, err := s.fs.ReadFile(ctx, e.Path)
		if err != nil {
			log.Error("Failed to read desktop entry", zap.String("path", e.Path), zap.Error(err))
			return false
		}
		content = c
	}
	if e.Origin == desktopentry.Catalog {
		synthesized, err := desktopentry.Synthesize(content, func(program string) bool {
			return s.fs.Runnable(ctx, program)
		})
		if err != nil {
			log.Error("Cannot install catalog entry", zap.Error(err))
			return false
		}
		content = synthesized
	}
	// Host reads come back without the final newline.
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if err := s.fs.MkdirAll(ctx, s.dir); err != nil {
		log.Error("Failed to create autostart directory", zap.String("dir", s.dir), zap.Error(err))
		return false
	}
	dest := path.Join(s.dir, name)
	if err := s.fs.WriteFile(ctx, dest, content); err != nil {
		log.Error("Failed to write autostart entry", zap.String("path", dest), zap.Error(err))
		return false
	}
	log.Info("Added autostart entry", zap.String("path", dest))
	return true
}

// Remove deletes the installed entry with e's basename. It returns false
// when there was nothing to delete or the deletion failed.
func (s *Synchronizer) Remove(ctx context.Context, e desktopentry.Entry) bool {
	name := e.Basename()
	if name == "" {
		return false
	}
	dest := path.Join(s.dir, name)
	removed, err := s.fs.Remove(ctx, dest)
	if err != nil {
		s.logger.Error("Failed to remove autostart entry", zap.String("path", dest), zap.Error(err))
		return false
	}
	if !removed {
		s.logger.Debug("Autostart entry already absent", zap.String("path", dest))
		return false
	}
	s.logger.Info("Removed autostart entry", zap.String("path", dest))
	return true
}
