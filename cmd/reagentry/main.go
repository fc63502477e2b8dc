// Package main is the entry point for the reagentry CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/darkawower/reagentry/internal/colors"
	"github.com/darkawower/reagentry/internal/config"
	"github.com/darkawower/reagentry/internal/core"
	"github.com/darkawower/reagentry/internal/state"
	"github.com/darkawower/reagentry/internal/theme"
	"github.com/darkawower/reagentry/internal/ui"

	_ "github.com/darkawower/reagentry/internal/platform/darwin"
	_ "github.com/darkawower/reagentry/internal/platform/linux"
	_ "github.com/darkawower/reagentry/internal/platform/stub"
	_ "github.com/darkawower/reagentry/internal/platform/windows"
)

const version = "0.1.0"

var (
	// Global flags
	cfgFile      string
	defaultTheme string
	ephemeral    bool
	verbose      bool
	quiet        bool

	// Global output
	out *ui.Output
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reagentry",
		Short: "Theme-aware web shell for the reagent registry",
		Long: `Reagentry serves the registry's web shell and keeps its light/dark theme
in sync with the user's stored preference and the system appearance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/reagentry/config.toml)")
	rootCmd.PersistentFlags().StringVar(&defaultTheme, "default-theme", "", "first-paint theme (light|dark)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the theme preference in memory only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(
		newInitCmd(),
		newThemeCmd(),
		newColorsCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// initOutput initializes the output.
func initOutput(cmd *cobra.Command) {
	out = ui.NewOutput(cmd.OutOrStdout())
	out.SetVerbose(verbose)
	out.SetQuiet(quiet)
}

// newApp creates the application with current flags.
func newApp(opts ...core.Option) (*core.App, error) {
	if defaultTheme != "" {
		opts = append(opts, core.WithDefaultTheme(defaultTheme))
	}
	if ephemeral {
		opts = append(opts, core.WithEphemeralState(true))
	}

	app, err := core.New(cfgFile, opts...)
	if err != nil {
		return nil, err
	}
	if verbose {
		app.Logger().SetLevel(slog.LevelDebug)
	}
	return app, nil
}

func loadApp(opts ...core.Option) (*core.App, error) {
	app, err := newApp(opts...)
	if err != nil {
		out.ErrorWithHint(err.Error(), "Run 'reagentry init' to create a default configuration")
		return nil, err
	}
	return app, nil
}

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize reagentry configuration",
		Long:  "Creates the default configuration file, the state directory and an empty state file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput(cmd)

			configPath := cfgFile
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}

			if _, err := os.Stat(configPath); err == nil && !force {
				out.Warning("Configuration already exists at %s", shortenPath(configPath))
				out.Info("Use --force to overwrite")
				return nil
			}

			cfg := config.DefaultConfig()

			if err := cfg.EnsureDirectories(); err != nil {
				out.Error("Failed to create directories: %v", err)
				return err
			}

			if err := cfg.Save(configPath); err != nil {
				out.Error("Failed to write config: %v", err)
				return err
			}

			st := state.New(cfg.State.Path)
			if err := st.Save(); err != nil {
				out.Error("Failed to create state file: %v", err)
				return err
			}

			out.Success("Reagentry initialized")
			out.Field("Config", shortenPath(configPath))
			out.Field("State", shortenPath(cfg.State.Path))
			out.Field("Server", cfg.Server.Addr)

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration")

	return cmd
}

// newThemeCmd creates the theme command and its subcommands.
func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the resolved theme",
		Long: `Shows the theme the shell renders with, the stored preference and the
system appearance it falls back to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput(cmd)

			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			printStatus(app.Status())
			return nil
		},
	}

	cmd.AddCommand(newThemeSetCmd(), newThemeWatchCmd())

	return cmd
}

func printStatus(s core.Status) {
	out.ThemeInfo(s.State, s.Phase.String(), s.Ambient, s.AmbientOK)
	out.Field("Platform", s.Platform)
	if s.StatePath != "" {
		out.Field("State", shortenPath(s.StatePath))
	} else {
		out.Field("State", "in memory")
	}
	if s.Degraded {
		out.Warning("Preference storage unavailable, changes are not persisted")
	}
}

// newThemeSetCmd creates the theme set command.
func newThemeSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <light|dark|system|unset>",
		Short:     "Store a theme preference",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"light", "dark", "system", "unset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput(cmd)

			pref, err := theme.ParseChoice(args[0])
			if err != nil {
				out.Error("%v", err)
				return err
			}

			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			app.SetPreference(pref)
			out.Success("Theme preference set to %s", pref)
			printStatus(app.Status())
			return nil
		},
	}
}

// newThemeWatchCmd creates the theme watch command.
func newThemeWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow theme changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput(cmd)

			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			out.ThemeChange(app.Status().State)
			out.Info("Watching system theme every %s (Ctrl+C to stop)", app.Watcher().Interval())

			return app.Watch(cmd.Context(), out.ThemeChange)
		},
	}
}

// newColorsCmd creates the colors command.
func newColorsCmd() *cobra.Command {
	var (
		themeName string
		topN      int
	)

	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Show the dominant colors of the backdrop",
		Long: `Analyzes the backdrop image configured for a theme and shows its
palette together with the theme-color the shell advertises.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput(cmd)

			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			t := app.Status().State.Current
			if themeName != "" {
				if t, err = theme.Parse(themeName); err != nil {
					out.Error("%v", err)
					return err
				}
			}

			path := app.Config().Backdrop(t)
			if path == "" {
				out.Warning("No backdrop configured for the %s theme", t)
				out.Field("Theme color", colors.Fallback(t).Hex())
				return nil
			}

			swatches, err := colors.NewAnalyzer().File(path, topN)
			if err != nil {
				out.Error("Failed to analyze colors: %v", err)
				return err
			}

			out.Field("Backdrop", shortenPath(path))
			out.Print("")
			rows := make([][]string, 0, len(swatches))
			for _, s := range swatches {
				out.ColorSwatch(s.Color.Hex())
				rows = append(rows, []string{
					s.Color.Hex(),
					fmt.Sprintf("%.1f%%", s.Share*100),
					tone(s.Color),
				})
			}
			out.Print("")
			out.Table([]string{"COLOR", "SHARE", "TONE"}, rows)
			out.Print("")

			tc, _ := colors.ThemeColor(path, t)
			out.Field("Theme color", tc.Hex())

			return nil
		},
	}

	cmd.Flags().StringVar(&themeName, "theme", "", "theme whose backdrop to analyze (default: resolved theme)")
	cmd.Flags().IntVar(&topN, "top", 8, "number of colors to show")

	return cmd
}

func tone(c colors.Color) string {
	if c.IsDark() {
		return "dark"
	}
	return "light"
}

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var (
		addr string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web shell",
		Long: `Serves the web shell with its theme picker. The ambient theme is polled
in the background and pushed to open pages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput(cmd)

			var opts []core.Option
			if addr != "" {
				opts = append(opts, core.WithAddr(addr))
			}
			app, err := loadApp(opts...)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", app.Config().Server.Addr)
			if err != nil {
				out.Error("Failed to listen: %v", err)
				return err
			}

			url := "http://" + ln.Addr().String() + "/"
			out.Success("Serving web shell at %s", url)
			out.Info("Press Ctrl+C to stop")

			if open {
				if err := app.Platform().Browser().Open(url); err != nil {
					out.Warning("Failed to open browser: %v", err)
				}
			}

			if err := app.ServeListener(cmd.Context(), ln); err != nil {
				out.Error("Server failed: %v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&open, "open", false, "open the shell in the default browser")

	return cmd
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			initOutput(cmd)
			out.Print("reagentry version %s", version)
		},
	}
}

// shortenPath replaces home directory with ~
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + path[len(home):]
	}
	return path
}
