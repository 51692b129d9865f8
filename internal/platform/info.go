package platform

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Guliveer/tweakslite/internal/keyfile"
)

// Info describes the host for the doctor command. Fields that could not be
// determined are left empty.
type Info struct {
	Context         Context
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Uptime          time.Duration
	Desktop         string
	SessionType     string
	// SandboxApp is the application id recorded in the sandbox marker.
	SandboxApp string
}

// Describe gathers host information. The gopsutil lookup is best effort;
// its error is returned alongside whatever could still be filled in.
func Describe(ctx context.Context, c Context, marker string) (Info, error) {
	info := Info{
		Context:     c,
		Desktop:     os.Getenv("XDG_CURRENT_DESKTOP"),
		SessionType: os.Getenv("XDG_SESSION_TYPE"),
	}
	if c == Sandboxed {
		info.SandboxApp = sandboxApp(marker)
	}

	stat, err := host.InfoWithContext(ctx)
	if err != nil {
		return info, err
	}
	info.OS = stat.OS
	info.Platform = stat.Platform
	info.PlatformVersion = stat.PlatformVersion
	info.KernelVersion = stat.KernelVersion
	info.Uptime = time.Duration(stat.Uptime) * time.Second
	return info, nil
}

// sandboxApp reads the application id from the [Application] group of the
// flatpak marker file.
func sandboxApp(marker string) string {
	if marker == "" {
		marker = DefaultMarker
	}
	data, err := os.ReadFile(marker)
	if err != nil {
		return ""
	}
	name, _ := keyfile.Parse(string(data)).Lookup("Application", "name")
	return strings.TrimSpace(name)
}
