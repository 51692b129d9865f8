package autostart

import (
	"context"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/tweakslite/internal/desktopentry"
)

// Catalog enumerates the installed applications that can be added to
// autostart.
type Catalog struct {
	fs     Filesystem
	dirs   []string
	logger *zap.Logger
}

// NewCatalog creates a Catalog over the application directories dirs, in
// precedence order.
func NewCatalog(fs Filesystem, dirs []string, logger *zap.Logger) *Catalog {
	return &Catalog{fs: fs, dirs: dirs, logger: logger.Named("catalog")}
}

// Dirs returns the scanned directories.
func (c *Catalog) Dirs() []string { return c.dirs }

// Applications returns the visible applications sorted by display name. An
// entry shadowed by one of the same file name in an earlier directory is
// left out. Missing directories and unreadable files are skipped.
func (c *Catalog) Applications(ctx context.Context) []desktopentry.Entry {
	seen := make(map[string]bool)
	var apps []desktopentry.Entry

	for _, dir := range c.dirs {
		files, err := c.fs.List(ctx, dir)
		if err != nil {
			c.logger.Debug("Skipping application directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, f := range files {
			base := path.Base(f)
			if seen[base] {
				continue
			}
			seen[base] = true

			content, err := c.fs.ReadFile(ctx, f)
			if err != nil {
				c.logger.Warn("Skipping unreadable application", zap.String("path", f), zap.Error(err))
				continue
			}
			e := desktopentry.Parse(f, content)
			if e.Name == "" || e.Type != "Application" || !e.ShouldShow() {
				continue
			}
			e.Origin = desktopentry.Catalog
			apps = append(apps, e)
		}
	}

	sort.SliceStable(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].DisplayName()) < strings.ToLower(apps[j].DisplayName())
	})
	c.logger.Debug("Collected applications", zap.Int("count", len(apps)))
	return apps
}

// Find returns the application installed as basename, e.g. "org.gnome.Nautilus.desktop".
func (c *Catalog) Find(ctx context.Context, basename string) (desktopentry.Entry, bool) {
	if !strings.HasSuffix(basename, ".desktop") {
		basename += ".desktop"
	}
	for _, e := range c.Applications(ctx) {
		if e.Basename() == basename {
			return e, true
		}
	}
	return desktopentry.Entry{}, false
}
