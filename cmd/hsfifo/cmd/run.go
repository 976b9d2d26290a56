package cmd

import (
	"log"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/hsfifo/dataflow"
	"github.com/sarchlab/hsfifo/datarecording"
	"github.com/sarchlab/hsfifo/hwfifo"
	"github.com/sarchlab/hsfifo/monitoring"
	"github.com/sarchlab/hsfifo/sim/clocking"
	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/timing"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the feedback accumulator pipeline.",
		Long: `Run the feedback accumulator pipeline. A constant is added to ` +
			`a running sum that circulates through hardware FIFOs, and every ` +
			`sum is printed. Without a seed in the feedback FIFO the ` +
			`pipeline deadlocks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := parseRunConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			return runAccumulator(cmd, cfg, logger)
		},
	}

	f := runCmd.Flags()
	f.Int("capacity", 1, "Capacity of the FIFO after the adder.")
	f.Int("iterations", 10, "Number of values to print.")
	f.Int("seed", 40, "Initial value in the feedback FIFO.")
	f.Int("constant", 1, "Value added in every round.")
	f.Bool("no-seed", false, "Leave the feedback FIFO empty.")
	f.Int("parallel", 1, "Number of goroutines that evaluate components.")
	f.Uint64("max-cycles", 10000, "Cycles after which the run is a deadlock.")
	f.Float64("freq-mhz", 100, "Clock frequency in MHz.")
	f.String("record", "", "Record FIFO transfers into <path>.sqlite3.")
	f.String("record-backend", "sqlite", "Recording backend, sqlite or clickhouse.")
	f.String("clickhouse-addr", "localhost:9000", "ClickHouse server address.")
	f.String("clickhouse-database", "default", "ClickHouse database.")
	f.String("clickhouse-user", "default", "ClickHouse user.")
	f.String("clickhouse-password", "", "ClickHouse password.")
	f.Bool("monitor", false, "Serve the monitoring web page.")
	f.Int("monitor-port", 0, "Port of the monitoring server, 0 for random.")
	f.Bool("open-browser", false, "Open the monitoring page in a browser.")
	f.Bool("trace-events", false, "Log every engine event.")
	f.Bool("trace-transfers", false, "Log every FIFO transfer.")

	return runCmd
}

type runConfig struct {
	capacity       int
	iterations     int
	seed           int
	constant       int
	noSeed         bool
	parallelism    int
	maxCycles      uint64
	freqMHz        float64
	recordPath     string
	recordBackend  string
	clickHouse     datarecording.ClickHouseConfig
	monitor        bool
	monitorPort    int
	openBrowser    bool
	traceEvents    bool
	traceTransfers bool
}

func parseRunConfig(cmd *cobra.Command) (runConfig, error) {
	f := cmd.Flags()
	cfg := runConfig{}

	cfg.capacity, _ = f.GetInt("capacity")
	cfg.iterations, _ = f.GetInt("iterations")
	cfg.seed, _ = f.GetInt("seed")
	cfg.constant, _ = f.GetInt("constant")
	cfg.noSeed, _ = f.GetBool("no-seed")
	cfg.parallelism, _ = f.GetInt("parallel")
	cfg.maxCycles, _ = f.GetUint64("max-cycles")
	cfg.freqMHz, _ = f.GetFloat64("freq-mhz")
	cfg.recordPath, _ = f.GetString("record")
	cfg.recordBackend, _ = f.GetString("record-backend")
	cfg.clickHouse.Addr, _ = f.GetString("clickhouse-addr")
	cfg.clickHouse.Database, _ = f.GetString("clickhouse-database")
	cfg.clickHouse.Username, _ = f.GetString("clickhouse-user")
	cfg.clickHouse.Password, _ = f.GetString("clickhouse-password")
	cfg.monitor, _ = f.GetBool("monitor")
	cfg.monitorPort, _ = f.GetInt("monitor-port")
	cfg.openBrowser, _ = f.GetBool("open-browser")
	cfg.traceEvents, _ = f.GetBool("trace-events")
	cfg.traceTransfers, _ = f.GetBool("trace-transfers")

	switch {
	case cfg.capacity < 1:
		return cfg, errors.Wrapf(hwfifo.ErrInvalidCapacity,
			"--capacity %d", cfg.capacity)
	case cfg.iterations < 1:
		return cfg, errors.Errorf("--iterations must be positive, got %d",
			cfg.iterations)
	case cfg.parallelism < 1:
		return cfg, errors.Errorf("--parallel must be positive, got %d",
			cfg.parallelism)
	case cfg.freqMHz <= 0:
		return cfg, errors.Errorf("--freq-mhz must be positive, got %g",
			cfg.freqMHz)
	case cfg.recordBackend != "sqlite" && cfg.recordBackend != "clickhouse":
		return cfg, errors.Errorf("unknown recording backend %q",
			cfg.recordBackend)
	}

	return cfg, nil
}

func buildAccumulator(cmd *cobra.Command, cfg runConfig) *dataflow.Accumulator {
	b := dataflow.MakeAccumulatorBuilder().
		WithFreq(timing.Freq(cfg.freqMHz) * timing.MHz).
		WithCapacity(cfg.capacity).
		WithIterations(cfg.iterations).
		WithConstant(cfg.constant).
		WithSeed(cfg.seed).
		WithParallelism(cfg.parallelism).
		WithMaxCycles(cfg.maxCycles).
		WithOutput(cmd.OutOrStdout())

	if cfg.noSeed {
		b = b.WithoutSeed()
	}

	return b.Build("Accumulator")
}

func runAccumulator(
	cmd *cobra.Command,
	cfg runConfig,
	logger *slog.Logger,
) error {
	acc := buildAccumulator(cmd, cfg)

	if cfg.traceEvents {
		acc.Engine().AcceptHook(
			timing.NewEventLogger(log.New(cmd.ErrOrStderr(), "", 0)))
	}

	if cfg.traceTransfers {
		transferLogger := hwfifo.NewTransferLogger(
			log.New(cmd.ErrOrStderr(), "", 0))
		for _, f := range acc.FIFOs() {
			f.AcceptHook(transferLogger)
		}
	}

	recorder, err := attachRecorder(acc, cfg)
	if err != nil {
		return err
	}

	if recorder != nil {
		logger.Info("recording transfers",
			"backend", cfg.recordBackend,
			"target", recordingTarget(recorder, cfg))

		defer func() {
			if closeErr := recorder.Close(); closeErr != nil {
				logger.Error("closing recorder", "error", closeErr)
			}
		}()
	}

	if cfg.monitor {
		err = attachMonitor(acc, cfg, logger)
		if err != nil {
			return err
		}
	}

	values, err := acc.Run()

	logger.Info("simulation finished",
		"cycles", acc.Domain().Cycle(),
		"time", acc.Engine().Now(),
		"printed", len(values),
		"parallelism", cfg.parallelism,
	)

	for _, f := range acc.FIFOs() {
		logger.Debug("fifo",
			"name", f.Name(),
			"capacity", f.Capacity(),
			"size", f.Size(),
			"written", f.NumWritten(),
			"read", f.NumRead(),
		)
	}

	if errors.Is(err, dataflow.ErrDeadlock) {
		logger.Error("pipeline deadlocked",
			"max_cycles", cfg.maxCycles, "seeded", !cfg.noSeed)
	}

	return err
}

func attachRecorder(
	acc *dataflow.Accumulator,
	cfg runConfig,
) (datarecording.DataRecorder, error) {
	var (
		recorder datarecording.DataRecorder
		err      error
	)

	switch {
	case cfg.recordBackend == "clickhouse":
		recorder, err = datarecording.NewClickHouseRecorder(cfg.clickHouse)
	case cfg.recordPath != "":
		recorder, err = datarecording.New(cfg.recordPath)
	default:
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	hook := datarecording.NewTransferRecorder(recorder, acc.Engine())
	for _, f := range acc.FIFOs() {
		f.AcceptHook(hook)
	}

	return recorder, nil
}

func recordingTarget(recorder datarecording.DataRecorder, cfg runConfig) string {
	if w, ok := recorder.(*datarecording.SQLiteWriter); ok {
		return w.Filename()
	}

	return cfg.clickHouse.Addr + "/" + cfg.clickHouse.Database
}

func attachMonitor(
	acc *dataflow.Accumulator,
	cfg runConfig,
	logger *slog.Logger,
) error {
	m := monitoring.NewMonitor().
		WithPortNumber(cfg.monitorPort).
		WithOpenBrowser(cfg.openBrowser)
	m.RegisterEngine(acc.Engine())
	m.RegisterDomain(acc.Domain())

	for _, c := range acc.Simulation().Components() {
		m.RegisterComponent(c)
	}

	bar := m.CreateProgressBar("Printed", uint64(cfg.iterations))
	acc.Domain().AcceptHook(hooking.NewHookFunc(func(ctx hooking.HookCtx) {
		if ctx.Pos == clocking.HookPosAfterCycle {
			bar.SetFinished(uint64(len(acc.Printer.Values())))
		}
	}))

	url, err := m.StartServer()
	if err != nil {
		return err
	}

	logger.Info("monitoring", "url", url)

	return nil
}
