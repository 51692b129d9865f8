package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/tweakslite/internal/platform"
	"github.com/Guliveer/tweakslite/internal/runner"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Show the execution context and check host access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			info, err := platform.Describe(ctx, a.context, a.cfg.Sandbox.Marker)
			if err != nil {
				a.logger.Debug("Host information incomplete", zap.Error(err))
			}

			row := func(label, value string) {
				if value == "" {
					value = color.YellowString("unknown")
				}
				fmt.Fprintf(out, "  %-18s %s\n", label+":", value)
			}

			fmt.Fprintln(out, color.CyanString("Environment"))
			row("Context", info.Context.String())
			if info.SandboxApp != "" {
				row("Sandbox app", info.SandboxApp)
			}
			row("OS", info.OS)
			row("Platform", joinNonEmpty(info.Platform, info.PlatformVersion))
			row("Kernel", info.KernelVersion)
			if info.Uptime > 0 {
				row("Uptime", info.Uptime.Round(time.Minute).String())
			}
			row("Desktop", info.Desktop)
			row("Session", info.SessionType)

			fmt.Fprintln(out)
			fmt.Fprintln(out, color.CyanString("Paths"))
			if a.keyfile != "" {
				row("Settings keyfile", a.keyfile)
			} else {
				row("Settings store", "dconf "+a.cfg.Settings.Root)
			}
			row("Autostart", a.sync.Dir())

			fmt.Fprintln(out)
			fmt.Fprintln(out, color.CyanString("Checks"))
			check := func(label string, ok bool) {
				mark := color.GreenString("✓")
				if !ok {
					mark = color.RedString("✗")
				}
				fmt.Fprintf(out, "  %s %s\n", mark, label)
			}
			if a.context == platform.Sandboxed {
				_, ok := a.runner.Output(ctx, runner.Argv("true").OnHost())
				check("host commands ("+runner.Join(a.cfg.Sandbox.HostCommand)+")", ok)
			}
			check("dconf available", a.fs.Runnable(ctx, "dconf"))
			check("autostart directory usable", a.fs.MkdirAll(ctx, a.sync.Dir()) == nil)
			return nil
		},
	}
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
