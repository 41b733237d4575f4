// Package main provides the CLI entrypoint for mousemeter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mousemeter/internal/config"
	"mousemeter/internal/input"
	"mousemeter/internal/meter"
	"mousemeter/internal/model"
	"mousemeter/internal/stats"
	"mousemeter/internal/store"
	"mousemeter/internal/tui"
)

const defaultCurveWindow = 10

var (
	flagConfig   string
	flagDevice   string
	flagDPI      float64
	flagWindowMs int64
	flagStaleMs  int64

	statsDevice      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mousemeter",
		Short:         "Live mouse speed and polling rate meter",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runMeterCmd,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", "", "config file path (default: XDG config dir)")
	rootCmd.Flags().StringVar(&flagDevice, "device", "", "input device path (default: first detected mouse)")
	rootCmd.Flags().Float64Var(&flagDPI, "dpi", config.DefaultDPI, "sensor DPI")
	rootCmd.Flags().Int64Var(&flagWindowMs, "window", config.DefaultWindow.Milliseconds(), "averaging window in milliseconds")
	rootCmd.Flags().Int64Var(&flagStaleMs, "stale", config.DefaultStaleAfter.Milliseconds(), "staleness threshold in milliseconds")

	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runMeterCmd(cmd *cobra.Command, _ []string) error {
	configPath := flagConfig
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	live := config.NewLive()
	live.ApplyFile(fileCfg)
	if cmd.Flags().Changed("dpi") {
		live.SetDPI(flagDPI)
	}
	if cmd.Flags().Changed("window") {
		live.SetWindow(time.Duration(flagWindowMs) * time.Millisecond)
	}
	if cmd.Flags().Changed("stale") {
		live.SetStaleAfter(time.Duration(flagStaleMs) * time.Millisecond)
	}

	devicePath := flagDevice
	if devicePath == "" && fileCfg.Meter.Device != nil {
		devicePath = *fileCfg.Meter.Device
	}
	if devicePath == "" {
		dev, ok := input.DefaultDevice()
		if !ok {
			return fmt.Errorf("no mouse found under /dev/input/by-id; pass --device (try: mousemeter devices)")
		}
		devicePath = dev.Path
	}

	dev, err := input.Open(devicePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", devicePath, err)
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			logErrf("failed to close device: %v\n", cerr)
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	watcher, err := config.Watch(configPath, live, func(werr error) {
		logErrf("config reload failed: %v\n", werr)
	})
	if err != nil {
		logErrf("config watch unavailable: %v\n", err)
	} else {
		defer func() {
			if cerr := watcher.Close(); cerr != nil {
				logErrf("failed to close config watcher: %v\n", cerr)
			}
		}()
	}

	controller := meter.NewController(live, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		// A fatal stream error surfaces through the controller's failed
		// state; the TUI displays it.
		_ = controller.IngestLoop(ctx, dev)
	}()

	m := tui.NewModel(controller, live, st, dev.Name())
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := program.Run()

	cancel()
	if cerr := dev.Close(); cerr != nil {
		logErrf("failed to close device: %v\n", cerr)
	}
	<-loopDone

	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List detected pointing devices",
		Args:  cobra.NoArgs,
		RunE:  runDevicesCmd,
	}
}

func runDevicesCmd(cmd *cobra.Command, _ []string) error {
	devices, err := input.ScanDevices()
	if err != nil {
		return fmt.Errorf("failed to scan devices: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no pointing devices found under /dev/input/by-id")
	}
	for _, dev := range devices {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", dev.Path, dev.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stored session stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDevice, "device", "", "device name filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Device:      statsDevice,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return err
	}
	if err := stats.RenderSessionTable(out, report.Sessions); err != nil {
		return err
	}
	return stats.RenderCurves(out, report.Sessions, cfg.CurveWindow, plotWidth(), 10)
}

func plotWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	// Leave room for the axis labels and separator.
	width -= 8
	if width < 10 {
		width = 10
	}
	return width
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# mousemeter configuration
# Uncomment a value to enable it. CLI flags override config values.
# Saved changes to dpi/window-ms/stale-ms apply to a running meter.

[meter]
# dpi = %.0f            # Sensor DPI
# window-ms = %d       # Averaging window (milliseconds)
# stale-ms = %d        # Staleness threshold (milliseconds)
# plot-span-ms = %d   # Plot history span (milliseconds)
# device = ""           # Input device path (default: first detected mouse)
`,
		config.DefaultDPI,
		config.DefaultWindow.Milliseconds(),
		config.DefaultStaleAfter.Milliseconds(),
		config.DefaultPlotSpan.Milliseconds(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
