// Package cmd contains the commands of the seqkit binary.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/pipeline"
	"github.com/kbukum/seqkit/version"
)

const (
	configFlag    = "config"
	envFileFlag   = "env-file"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
	traceFlag     = "trace"
	metricsFlag   = "metrics"
)

// app carries what the root command sets up for its subcommands.
type app struct {
	cfg      *config.Config
	metrics  *observability.PipelineMetrics
	shutdown []func(context.Context) error
}

// NewRootCommand builds the seqkit command tree. Configuration is read from
// --config, a seqkit.yml found in the usual places, or SEQKIT_* environment
// variables, with flags taking precedence.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "seqkit",
		Short: "Query line-oriented input with lazy sequence operators",
		Long: `seqkit reads lines from files or standard input and runs them through
grouping, set, ordering and partitioning operators, one line per element.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.String(configFlag, "", "path to a YAML config file")
	flags.String(envFileFlag, "", "path to a .env file")
	flags.String(logLevelFlag, "", "log level (trace, debug, info, warn, error)")
	flags.String(logFormatFlag, "", "log format (json, console)")
	flags.Bool(traceFlag, false, "export traces over OTLP")
	flags.Bool(metricsFlag, false, "export metrics over OTLP")

	root.AddCommand(
		newCountByCommand(a),
		newGroupByCommand(a),
		newSortCommand(a),
		newDistinctCommand(a),
		newExceptCommand(a),
		newTakeCommand(a),
		newSkipCommand(a),
		newMergeCommand(a),
		NewVersionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	configFile, _ := flags.GetString(configFlag)
	envFile, _ := flags.GetString(envFileFlag)

	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	cfg, err := config.Load("seqkit", opts...)
	if err != nil {
		return err
	}

	if v, _ := flags.GetString(logLevelFlag); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := flags.GetString(logFormatFlag); v != "" {
		cfg.Logging.Format = v
	}
	if v, _ := flags.GetBool(traceFlag); v {
		cfg.Telemetry.Tracing = true
	}
	if v, _ := flags.GetBool(metricsFlag); v {
		cfg.Telemetry.Metrics = true
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	logger.RegisterDefaults("pipeline", "cli")
	pipeline.Configure(cfg.Pipeline)
	a.cfg = cfg

	return a.initTelemetry(cmd.Context())
}

func (a *app) initTelemetry(ctx context.Context) error {
	tc := a.cfg.Telemetry
	if !tc.Enabled() {
		return nil
	}
	export := observability.DefaultConfig(a.cfg.Name)
	export.ServiceVersion = version.Get().Short()
	export.Environment = a.cfg.Environment
	export.Endpoint = tc.Endpoint
	export.Insecure = tc.Insecure
	export.SampleRate = tc.SampleRate
	export.Interval = tc.ExportInterval

	if tc.Tracing {
		tp, err := observability.InitTracer(ctx, &export)
		if err != nil {
			return err
		}
		a.shutdown = append(a.shutdown, tp.Shutdown)
	}
	if tc.Metrics {
		mp, err := observability.InitMeter(ctx, &export)
		if err != nil {
			return err
		}
		a.shutdown = append(a.shutdown, mp.Shutdown)
		if a.metrics, err = observability.NewPipelineMetrics(observability.Meter("seqkit")); err != nil {
			return err
		}
	}
	return nil
}

// run executes fn with an interrupt-aware context, logs the outcome and
// flushes telemetry.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	defer a.flush()

	log := logger.Get("cli")
	start := time.Now()
	if err := fn(ctx); err != nil {
		log.Error("command failed", logger.ErrorFields(cmd.Name(), err))
		return err
	}
	log.Debug("command finished", logger.DurationFields(cmd.Name(), time.Since(start)))
	return nil
}

func (a *app) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, fn := range a.shutdown {
		if err := fn(ctx); err != nil {
			logger.Get("cli").Warn("telemetry shutdown failed", logger.MergeWithError(nil, err))
		}
	}
	a.shutdown = nil
}

// instrument wraps p so each enumeration is traced and counted under name.
func instrument[T any](a *app, p *pipeline.Pipeline[T], name string) *pipeline.Pipeline[T] {
	return pipeline.Instrument(p, name, a.metrics)
}
