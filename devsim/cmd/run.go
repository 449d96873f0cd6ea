package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/logging"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/monitoring"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/realtime"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/simulation"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	flagsConfig = DefaultConfig()
)

var runCmd = &cobra.Command{
	Use:   "run [model]",
	Short: "Run a model.",
	Long: "`run [model]` runs one of the models " +
		fmt.Sprint(modelNames()) + ". " +
		"In real-time mode, pressing Enter sends an event to the models " +
		"that accept one.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd, args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		_, err = runExperiment(ctx, cfg, os.Stdin)

		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML configuration file (default $DEVSIM_CONFIG)")
	f.StringVar(&flagsConfig.Logger, "logger", flagsConfig.Logger, "Trajectory logger (csv, stdout, sqlite, logrus, none)")
	f.StringVar(&flagsConfig.Output, "output", "", "Output file name without extension (default: generated)")
	f.StringVar(&flagsConfig.Separator, "separator", flagsConfig.Separator, "Column separator of the csv and stdout loggers")
	f.Float64Var(&flagsConfig.Duration, "duration", flagsConfig.Duration, "Simulation time to run for")
	f.IntVar(&flagsConfig.Iterations, "iterations", 0, "Number of steps to run, overrides --duration when positive")
	f.StringVar(&flagsConfig.LogLevel, "log-level", flagsConfig.LogLevel, "Log level (trace, debug, info, warn, error, fatal, panic)")
	f.BoolVar(&flagsConfig.RealTime.Enabled, "realtime", false, "Follow the wall clock")
	f.DurationVar(&flagsConfig.RealTime.Tolerance, "tolerance", flagsConfig.RealTime.Tolerance, "Missed deadline tolerance, negative to disable")
	f.DurationVar(&flagsConfig.RealTime.MaxJitter, "max-jitter", 0, "Maximum sleep overshoot, 0 to disable")
	f.BoolVar(&flagsConfig.Monitor.Enabled, "monitor", false, "Serve the monitoring API")
	f.IntVar(&flagsConfig.Monitor.Port, "monitor-port", 0, "Port of the monitoring server (default: random)")
	f.BoolVar(&flagsConfig.Monitor.OpenBrowser, "open-monitor", false, "Open the monitoring server in a browser")
	f.StringVar(&flagsConfig.IEStream.File, "input", "", "Input event file of the iestream model")
	f.StringVar(&flagsConfig.IEStream.Type, "input-type", flagsConfig.IEStream.Type, "Message type of the input event file (string, int, float, bool)")
}

// flagTargets maps the flags to the settings they override.
var flagTargets = map[string]func(dst *Config){
	"logger":       func(c *Config) { c.Logger = flagsConfig.Logger },
	"output":       func(c *Config) { c.Output = flagsConfig.Output },
	"separator":    func(c *Config) { c.Separator = flagsConfig.Separator },
	"duration":     func(c *Config) { c.Duration = flagsConfig.Duration },
	"iterations":   func(c *Config) { c.Iterations = flagsConfig.Iterations },
	"log-level":    func(c *Config) { c.LogLevel = flagsConfig.LogLevel },
	"realtime":     func(c *Config) { c.RealTime.Enabled = flagsConfig.RealTime.Enabled },
	"tolerance":    func(c *Config) { c.RealTime.Tolerance = flagsConfig.RealTime.Tolerance },
	"max-jitter":   func(c *Config) { c.RealTime.MaxJitter = flagsConfig.RealTime.MaxJitter },
	"monitor":      func(c *Config) { c.Monitor.Enabled = flagsConfig.Monitor.Enabled },
	"monitor-port": func(c *Config) { c.Monitor.Port = flagsConfig.Monitor.Port },
	"open-monitor": func(c *Config) { c.Monitor.OpenBrowser = flagsConfig.Monitor.OpenBrowser },
	"input":        func(c *Config) { c.IEStream.File = flagsConfig.IEStream.File },
	"input-type":   func(c *Config) { c.IEStream.Type = flagsConfig.IEStream.Type },
}

// resolveConfig merges the defaults, the config file, the environment and
// the flags that were set explicitly, in this order.
func resolveConfig(cmd *cobra.Command, args []string) (Config, error) {
	cfg := DefaultConfig()

	path := configPath
	if path == "" {
		path = os.Getenv("DEVSIM_CONFIG")
	}

	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	for name, apply := range flagTargets {
		if cmd.Flags().Changed(name) {
			apply(&cfg)
		}
	}

	if len(args) > 0 {
		cfg.Model = args[0]
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg Config) simulation.Logger {
	sep := []rune(cfg.Separator)[0]

	var logger simulation.Logger

	switch cfg.Logger {
	case "csv":
		logger = logging.NewCSVLogger(cfg.Output).WithSeparator(sep)
	case "stdout":
		logger = logging.NewWriterLogger(os.Stdout, sep)
	case "sqlite":
		logger = logging.NewSQLiteLogger(cfg.Output)
	case "logrus":
		logger = logging.NewLogrusLogger(logrus.StandardLogger(), logrus.InfoLevel)
	default:
		return nil
	}

	if cfg.RealTime.Enabled {
		logger = logging.NewMutexLogger(logger)
	}

	return logger
}

// runExperiment builds the model of cfg and simulates it. Lines read from
// input trigger the asynchronous event of real-time runs.
func runExperiment(
	ctx context.Context,
	cfg Config,
	input io.Reader,
) (*experiment, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logrus.SetLevel(level)

	exp, err := buildExperiment(cfg)
	if err != nil {
		return nil, err
	}
	defer exp.close()

	builder := simulation.MakeBuilder()
	if logger := newLogger(cfg); logger != nil {
		builder = builder.WithLogger(logger)
	}

	root, err := builder.Build(exp.top)
	if err != nil {
		return nil, err
	}

	if cfg.Monitor.Enabled {
		startMonitor(cfg, root)
	}

	logrus.Infof("simulating %s", cfg.Model)

	if cfg.RealTime.Enabled {
		err = runRealTime(ctx, cfg, exp, root, input)
	} else {
		err = runLogical(cfg, root)
	}

	if err != nil {
		return exp, err
	}

	logrus.Infof("simulation of %s finished at %v", cfg.Model, root.CurrentTime())

	return exp, nil
}

func runLogical(cfg Config, root *simulation.RootCoordinator) error {
	if err := root.Start(); err != nil {
		return err
	}
	defer root.Stop()

	if cfg.Iterations > 0 {
		return root.SimulateIterations(cfg.Iterations)
	}

	return root.SimulateFor(modeling.VTimeInSec(cfg.Duration))
}

func runRealTime(
	ctx context.Context,
	cfg Config,
	exp *experiment,
	root *simulation.RootCoordinator,
	input io.Reader,
) error {
	clockBuilder := realtime.MakeClockBuilder().
		WithMissedDeadlineTolerance(cfg.RealTime.Tolerance).
		WithMaxJitter(cfg.RealTime.MaxJitter)
	if exp.button != nil {
		clockBuilder = clockBuilder.WithAsyncEvents(exp.button)
	}

	rt, err := realtime.NewRootCoordinator(root, clockBuilder.Build())
	if err != nil {
		return err
	}

	if exp.button != nil && input != nil {
		go pressOnEnter(input, exp.button)
	}

	if err := rt.Start(); err != nil {
		return err
	}
	defer rt.Stop()

	if cfg.Iterations > 0 {
		return rt.SimulateIterations(ctx, cfg.Iterations)
	}

	return rt.SimulateFor(ctx, modeling.VTimeInSec(cfg.Duration))
}

func pressOnEnter(input io.Reader, button *realtime.AsyncEvent) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		button.Notify()
	}
}

func startMonitor(cfg Config, root *simulation.RootCoordinator) {
	m := monitoring.NewMonitor().WithPortNumber(cfg.Monitor.Port)
	m.RegisterRootCoordinator(root)

	total := uint64(0)
	if cfg.Iterations > 0 {
		total = uint64(cfg.Iterations)
	}

	bar := m.CreateProgressBar("steps", total)
	root.AcceptHook(monitoring.NewStepProgressHook(bar))

	url := m.StartServer()

	if cfg.Monitor.OpenBrowser {
		if err := browser.OpenURL(url + "/api/progress"); err != nil {
			logrus.Warnf("cannot open the browser: %v", err)
		}
	}
}
