package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/datarecording"
	"github.com/sarchlab/arqsim/monitoring"
	"github.com/sarchlab/arqsim/plotting"
	"github.com/sarchlab/arqsim/simulation"
	"github.com/sarchlab/arqsim/tracing"
)

// runOptions are the settings of a run that are not simulation parameters.
type runOptions struct {
	record      string
	plot        string
	monitor     bool
	monitorPort int
	openBrowser bool
	startPaused bool
	checkRNG    bool
}

var (
	runOpts    runOptions
	runFlagCfg = config.Default()
	configFile string
	envFile    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print its summary.",
	Long: "`run` builds the parameters from the defaults, an optional " +
		"config file, ARQSIM_ environment variables and the flags, in " +
		"that order, and runs one simulation.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}

		return runSimulation(cfg, runOpts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&configFile, "config", "",
		"Config file (.yaml, .yml, .json or the legacy line format)")
	f.StringVar(&envFile, "env-file", "",
		"Dotenv file with ARQSIM_ variables")

	f.IntVar(&runFlagCfg.MessageCount, "message-count", 0,
		"Number of messages to simulate")
	f.Float64Var(&runFlagCfg.LossProbability, "loss", 0,
		"Packet loss probability")
	f.Float64Var(&runFlagCfg.CorruptionProbability, "corrupt", 0,
		"Packet corruption probability")
	f.Float64Var(&runFlagCfg.MeanInterarrivalTime, "mean", 0,
		"Average time between messages from the application layer")
	f.IntVar(&runFlagCfg.TraceLevel, "trace", config.DefaultTraceLevel,
		"Trace level, 0 to 3")
	f.Int64Var(&runFlagCfg.Seed, "seed", config.DefaultSeed,
		"Seed of the random number generator")
	f.StringVar(&runFlagCfg.Protocol, "protocol", config.DefaultProtocol,
		"Protocol, abp or gbn")
	f.IntVar(&runFlagCfg.WindowSize, "window", 0,
		"Sender window size, 0 for the protocol default")
	f.Float64Var(&runFlagCfg.Timeout, "timeout", config.DefaultTimeout,
		"Retransmission timeout")
	f.IntVar(&runFlagCfg.MaxRetransmissions, "max-retransmissions", 0,
		"Consecutive timeouts before the link fails, 0 for no limit")
	f.Float64Var(&runFlagCfg.TimeLimit, "time-limit", 0,
		"Virtual time at which the run stops, 0 for no limit")
	f.StringVar(&runFlagCfg.TieBreak, "tie-break", config.DefaultTieBreak,
		"Order of events with equal time, fifo or lifo")

	addRunOptionFlags(runCmd, &runOpts)
}

func addRunOptionFlags(cmd *cobra.Command, opts *runOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.record, "record", "",
		"Record the channel trace into an SQLite file with this name")
	f.StringVar(&opts.plot, "plot", "",
		"Save a sequence plot (.png, .svg, .pdf)")
	f.BoolVar(&opts.monitor, "monitor", false,
		"Serve the monitoring web page during the run")
	f.IntVar(&opts.monitorPort, "monitor-port", 0,
		"Port of the monitoring server, 0 for a random port")
	f.BoolVar(&opts.openBrowser, "open-browser", false,
		"Open the monitoring page in the default browser")
	f.BoolVar(&opts.startPaused, "start-paused", false,
		"Wait for continue from the monitoring page before the first event")
	f.BoolVar(&opts.checkRNG, "check-rng", false,
		"Refuse to run if the random number generator looks broken")
}

func loadRunConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if configFile != "" {
		var err error

		cfg, err = config.LoadFile(configFile)
		if err != nil {
			return cfg, fmt.Errorf("loading %s: %w", configFile, err)
		}
	}

	env := make(map[string]string)

	if envFile != "" {
		fileEnv, err := config.ReadEnvFile(envFile)
		if err != nil {
			return cfg, err
		}

		for k, v := range fileEnv {
			env[k] = v
		}
	}

	for k, v := range config.Environ() {
		env[k] = v
	}

	if err := config.ApplyEnv(&cfg, env); err != nil {
		return cfg, err
	}

	applyChangedFlags(cmd, &cfg)

	return cfg, nil
}

func applyChangedFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("message-count") {
		cfg.MessageCount = runFlagCfg.MessageCount
	}

	if changed("loss") {
		cfg.LossProbability = runFlagCfg.LossProbability
	}

	if changed("corrupt") {
		cfg.CorruptionProbability = runFlagCfg.CorruptionProbability
	}

	if changed("mean") {
		cfg.MeanInterarrivalTime = runFlagCfg.MeanInterarrivalTime
	}

	if changed("trace") {
		cfg.TraceLevel = runFlagCfg.TraceLevel
	}

	if changed("seed") {
		cfg.Seed = runFlagCfg.Seed
	}

	if changed("protocol") {
		cfg.Protocol = runFlagCfg.Protocol
	}

	if changed("window") {
		cfg.WindowSize = runFlagCfg.WindowSize
	}

	if changed("timeout") {
		cfg.Timeout = runFlagCfg.Timeout
	}

	if changed("max-retransmissions") {
		cfg.MaxRetransmissions = runFlagCfg.MaxRetransmissions
	}

	if changed("time-limit") {
		cfg.TimeLimit = runFlagCfg.TimeLimit
	}

	if changed("tie-break") {
		cfg.TieBreak = runFlagCfg.TieBreak
	}
}

func runSimulation(cfg config.Config, opts runOptions) error {
	if opts.startPaused && !opts.monitor {
		return errors.New("--start-paused requires --monitor")
	}

	builder := simulation.MakeBuilder().
		WithConfig(cfg).
		WithHook(tracing.NewEventLogger(
			log.New(os.Stderr, "", 0), cfg.TraceLevel))

	if opts.checkRNG {
		builder = builder.WithRandomCheck()
	}

	var seqPlot *plotting.SequencePlot
	if opts.plot != "" {
		seqPlot = plotting.NewSequencePlot()
		builder = builder.WithHook(seqPlot)
	}

	var mon *monitoring.Monitor
	if opts.monitor {
		mon = monitoring.NewMonitor().WithPortNumber(opts.monitorPort)
		bar := mon.CreateProgressBar("Delivered", uint64(cfg.MessageCount))
		builder = builder.WithHook(monitoring.NewDeliveryProgress(bar))
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}

	var (
		recorder datarecording.DataRecorder
		tracer   *tracing.DBTracer
	)

	if opts.record != "" {
		recorder = datarecording.New(opts.record)
		tracer = tracing.NewDBTracer(s.ID(), recorder)
		s.RegisterHook(tracer)
	}

	if mon != nil {
		mon.RegisterSimulation(s)
		mon.RegisterEntity("sender", s.Sender())
		mon.RegisterEntity("receiver", s.Receiver())
		mon.RegisterEntity("channel", s.Channel())
		mon.StartServer(opts.openBrowser)

		if opts.startPaused {
			s.Pause()
		}
	}

	res, runErr := s.Run()
	if runErr == nil {
		fmt.Print(res.String())
	}

	if recorder != nil {
		if runErr != nil {
			tracer.Terminate()
		}

		if err := recorder.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}

	if seqPlot != nil && runErr == nil {
		title := fmt.Sprintf("%s run %s", cfg.Protocol, s.ID())
		if err := seqPlot.Save(opts.plot, title); err != nil {
			return fmt.Errorf("saving plot: %w", err)
		}
	}

	return runErr
}
