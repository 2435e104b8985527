package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/artifact/retention"
	"mercator-hq/tabula/pkg/artifact/storage"
	"mercator-hq/tabula/pkg/cli"
	"mercator-hq/tabula/pkg/config"
	"mercator-hq/tabula/pkg/events"
	"mercator-hq/tabula/pkg/export"
	"mercator-hq/tabula/pkg/tabular"
	"mercator-hq/tabula/pkg/tabular/render"
	"mercator-hq/tabula/pkg/telemetry/logging"
	"mercator-hq/tabula/pkg/telemetry/metrics"
	"mercator-hq/tabula/pkg/telemetry/tracing"
)

const shutdownTimeout = 5 * time.Second

// app holds the components shared by the subcommands.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	store     artifact.Store
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	publisher events.Publisher
	exporter  *export.Exporter
}

// newApp loads configuration, sets up logging, and opens the store and the
// export pipeline around it. The caller must call close.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile, !configExplicit())
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}

	logCfg := logging.FromConfig(&cfg.Telemetry.Logging)
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	logger.SetDefault()

	a := &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		publisher: events.NopPublisher{},
	}

	a.store, err = storage.Open(ctx, storageConfig(&cfg.Storage))
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}
	logger.Debug("artifact store opened", "backend", cfg.Storage.Backend)

	a.tracer, err = tracing.New(ctx, &cfg.Telemetry.Tracing, Version)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.Events.Enabled {
		publisher, err := events.NewRabbitMQPublisher(rabbitMQConfig(&cfg.Events.RabbitMQ))
		if err != nil {
			// Exports still succeed without notifications.
			logger.Warn("event publishing disabled", "error", err)
		} else {
			a.publisher = publisher
		}
	}

	opts, err := exporterOptions(cfg)
	if err != nil {
		a.close()
		return nil, cli.NewConfigError(cfgFile, err)
	}
	opts = append(opts,
		export.WithBackend(cfg.Storage.Backend),
		export.WithMetrics(a.metrics),
		export.WithTracer(a.tracer),
		export.WithPublisher(a.publisher),
		export.WithLogger(logger.Logger),
	)
	a.exporter = export.NewExporter(a.store, opts...)

	return a, nil
}

// close releases everything newApp opened, in reverse order.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush traces", "error", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close artifact store", "error", err)
		}
	}
}

// pruner returns a retention pruner over the store, or an error when the
// backend cannot prune.
func (a *app) pruner(cfg *retention.Config) (*retention.Pruner, error) {
	target, ok := a.store.(artifact.Pruner)
	if !ok {
		return nil, fmt.Errorf("backend %q does not support pruning", a.cfg.Storage.Backend)
	}
	p := retention.NewPruner(target, cfg)
	p.SetMetrics(a.metrics)
	return p, nil
}

func exporterOptions(cfg *config.Config) ([]export.Option, error) {
	format, err := tabular.ParseFormat(cfg.Export.DefaultFormat)
	if err != nil {
		return nil, err
	}
	delimiter, _ := utf8.DecodeRuneInString(cfg.Export.Delimiter)

	return []export.Option{
		export.WithDefaultFormat(format),
		export.WithRenderOptions(render.Options{
			SheetName:      cfg.Export.SheetName,
			Delimiter:      delimiter,
			MaxColumnWidth: cfg.Export.MaxColumnWidth,
		}),
		export.WithStoreTimeout(cfg.Export.StoreTimeout),
		export.WithLocale(cfg.Export.Locale),
	}, nil
}

func storageConfig(cfg *config.StorageConfig) storage.Config {
	return storage.Config{
		Backend: cfg.Backend,
		SQLite: &storage.SQLiteConfig{
			Path:         cfg.SQLite.Path,
			Driver:       cfg.SQLite.Driver,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		},
		MySQL: &storage.MySQLConfig{
			DSN:             cfg.MySQL.DSN,
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		},
		Redis: &storage.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		},
	}
}

func retentionConfig(cfg *config.RetentionConfig) *retention.Config {
	return &retention.Config{
		RetentionDays: cfg.RetentionDays,
		MaxVersions:   cfg.MaxVersions,
		PruneSchedule: cfg.Schedule,
	}
}

func rabbitMQConfig(cfg *config.RabbitMQConfig) events.RabbitMQConfig {
	return events.RabbitMQConfig{
		URL:        cfg.URL,
		Exchange:   cfg.Exchange,
		RoutingKey: cfg.RoutingKey,
		Queue:      cfg.Queue,
		Durable:    cfg.Durable,
	}
}

// printResult writes data in the --output-format. In text format, text is
// printed instead when it is non-nil.
func printResult(cmd *cobra.Command, data, text any) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return cli.NewCommandError(cmd.Name(), err)
	}
	if format == cli.FormatText && text != nil {
		data = text
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

// printTable writes data as JSON, or table in the text and csv formats.
func printTable(cmd *cobra.Command, data any, table *cli.Table) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return cli.NewCommandError(cmd.Name(), err)
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)
}

// failed converts an unsuccessful tool result into the error that sets the
// exit code.
func failed(kind export.ErrorKind, message string) error {
	return cli.NewFailedError(string(kind), message)
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
