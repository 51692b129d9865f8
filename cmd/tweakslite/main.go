// Package main is the entry point of tweakslite. It loads configuration,
// detects the execution context once, wires the settings store and the
// autostart synchronizer to it and hands control to the cobra commands.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Guliveer/tweakslite/internal/autostart"
	"github.com/Guliveer/tweakslite/internal/config"
	"github.com/Guliveer/tweakslite/internal/platform"
	"github.com/Guliveer/tweakslite/internal/runner"
	"github.com/Guliveer/tweakslite/internal/schema"
	"github.com/Guliveer/tweakslite/internal/settings"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath   string
	debug        bool
	mode         string
	keyfile      string
	autostartDir string
}

// app holds the components built once per invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	context platform.Context

	runner  *runner.Runner
	store   *settings.Store
	fs      autostart.Filesystem
	sync    *autostart.Synchronizer
	catalog *autostart.Catalog
	keyfile string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	a := &app{}

	root := &cobra.Command{
		Use:   "tweakslite",
		Short: "Adjust desktop settings and manage startup applications",
		Long: `tweakslite reads and writes GNOME desktop settings and manages the
applications started at login.

Inside a flatpak sandbox every settings change is mirrored to the host with
dconf and the autostart directory is reached through host commands.

Examples:
  tweakslite get interface color-scheme
  tweakslite set interface color-scheme prefer-dark
  tweakslite values interface font-hinting
  tweakslite autostart add org.gnome.Calendar`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to configuration file (default: discovered)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.StringVar(&flags.mode, "mode", "", "execution context: auto, native or sandboxed")
	pf.StringVar(&flags.keyfile, "keyfile", "", "settings keyfile (default: dconf natively, GSettings keyfile in a sandbox)")
	pf.StringVar(&flags.autostartDir, "autostart-dir", "", "autostart directory override")

	root.AddCommand(
		newGetCmd(a),
		newSetCmd(a),
		newResetCmd(a),
		newDefaultCmd(a),
		newValuesCmd(a),
		newListCmd(a),
		newAutostartCmd(a),
		newDoctorCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(flags globalFlags) error {
	cli := config.CLIOverrides{
		Mode:         flags.mode,
		Keyfile:      flags.keyfile,
		AutostartDir: flags.autostartDir,
	}
	if flags.debug {
		cli.LogLevel = "debug"
	}

	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadLayered(cli, embeddedConfig, flags.configPath)
	} else {
		cfg, err = config.LoadLayered(cli, embeddedConfig)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	a.logger = logger

	a.context, err = platform.Resolve(cfg.Sandbox.Mode, cfg.Sandbox.Marker)
	if err != nil {
		return err
	}
	a.logger.Debug("Execution context resolved",
		zap.Stringer("context", a.context),
		zap.String("mode", cfg.Sandbox.Mode))

	a.runner = runner.New(logger,
		runner.WithTimeout(cfg.Command.Timeout.Duration),
		runner.WithHostCommand(hostCommand(a.context, cfg.Sandbox.HostCommand)))

	catalog, err := schema.Builtin()
	if err != nil {
		return err
	}
	source, err := a.settingsSource(cfg)
	if err != nil {
		return err
	}
	backend := settings.NewBackend(a.context, a.runner, logger)
	a.store = settings.New(catalog, source, backend, logger, settings.WithRoot(cfg.Settings.Root))

	a.fs = autostart.LocalFS{}
	if a.context == platform.Sandboxed {
		a.fs = autostart.NewHostFS(a.runner)
	}
	dir := cfg.Autostart.Dir
	if dir == "" {
		if dir, err = autostart.DefaultDir(a.context); err != nil {
			return err
		}
	}
	a.sync = autostart.New(a.fs, dir, logger)
	a.catalog = autostart.NewCatalog(a.fs, autostart.ApplicationDirs(a.context), logger)
	return nil
}

// settingsSource picks the in-process store. A native session writes the
// user's dconf database directly unless a keyfile is configured; inside the
// sandbox the GSettings keyfile is used and changes are mirrored to the host.
func (a *app) settingsSource(cfg *config.Config) (settings.Source, error) {
	a.keyfile = cfg.Settings.Keyfile
	if a.context == platform.Native && a.keyfile == "" {
		return settings.NewDconfSource(a.runner, cfg.Settings.Root, a.logger), nil
	}
	if a.keyfile == "" {
		var err error
		if a.keyfile, err = settings.DefaultKeyfilePath(); err != nil {
			return nil, err
		}
	}
	return settings.NewKeyfileSource(a.keyfile, cfg.Settings.Root, a.logger), nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// hostCommand returns the host-command prefix. Natively the host is the
// current machine, so no prefix is needed.
func hostCommand(c platform.Context, configured []string) []string {
	if c == platform.Native {
		return nil
	}
	return configured
}

// initLogger creates a zap logger based on the configuration.
// It writes human-readable entries to stderr and, if configured, rotated
// JSON entries to a log file.
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.WarnLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)
	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(rotator),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		PersistentPostRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tweakslite %s\n", version)
		},
	}
}
