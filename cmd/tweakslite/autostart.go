package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Guliveer/tweakslite/internal/desktopentry"
)

func newAutostartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage applications started at login",
	}
	cmd.AddCommand(
		newAutostartListCmd(a),
		newAutostartAddCmd(a),
		newAutostartRemoveCmd(a),
		newAutostartAppsCmd(a),
	)
	return cmd
}

func newAutostartListCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed autostart entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			entries := a.sync.List(cmd.Context())
			if len(entries) == 0 {
				fmt.Fprintln(out, color.YellowString("⚠")+" No autostart entries in "+a.sync.Dir())
				return nil
			}
			for _, e := range entries {
				if !all && !e.ShouldShow() {
					continue
				}
				fmt.Fprintf(out, "%-40s %s\n", color.GreenString(e.Basename()), e.DisplayName())
				if e.Description != "" {
					fmt.Fprintf(out, "  %s\n", e.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include hidden entries")
	return cmd
}

func newAutostartAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <desktop-file|application-id>",
		Short: "Start an application at login",
		Long: `Start an application at login.

A path to a .desktop file is copied verbatim. Anything else is looked up in
the installed applications by file name, with or without the .desktop
suffix, and copied without its desktop integration keys.`,
		Example: "  tweakslite autostart add org.gnome.Calendar\n  tweakslite autostart add ~/apps/tool.desktop",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entry, err := a.resolveEntry(cmd, args[0])
			if err != nil {
				return err
			}
			if !a.sync.Add(ctx, entry) {
				return fmt.Errorf("could not add %s (see log)", entry.Basename())
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓")+" Added "+color.CyanString(entry.Basename()))
			return nil
		},
	}
}

// resolveEntry turns a command-line argument into an entry: an existing
// local file, or an application from the catalog.
func (a *app) resolveEntry(cmd *cobra.Command, arg string) (desktopentry.Entry, error) {
	if strings.Contains(arg, string(filepath.Separator)) {
		path, err := filepath.Abs(arg)
		if err != nil {
			return desktopentry.Entry{}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return desktopentry.Entry{}, fmt.Errorf("reading desktop file: %w", err)
		}
		return desktopentry.Parse(path, string(data)), nil
	}

	entry, ok := a.catalog.Find(cmd.Context(), arg)
	if !ok {
		return desktopentry.Entry{}, fmt.Errorf("no installed application called %q", arg)
	}
	return entry, nil
}

func newAutostartRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Stop starting an application at login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := filepath.Base(args[0])
			if !strings.HasSuffix(name, ".desktop") {
				name += ".desktop"
			}
			if !a.sync.Remove(cmd.Context(), desktopentry.Entry{Path: name}) {
				return errors.New(name + " is not in autostart")
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓")+" Removed "+color.CyanString(name))
			return nil
		},
	}
}

func newAutostartAppsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List applications that can be added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			for _, e := range a.catalog.Applications(ctx) {
				mark := "  "
				if a.sync.Contains(ctx, e.Basename()) {
					mark = color.GreenString("✓ ")
				}
				fmt.Fprintf(out, "%s%-40s %s\n", mark, strings.TrimSuffix(e.Basename(), ".desktop"), e.DisplayName())
			}
			return nil
		},
	}
}
