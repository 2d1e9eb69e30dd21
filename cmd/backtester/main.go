package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/config"
	"github.com/oyakov/macdbot/internal/adapters/binance"
	"github.com/oyakov/macdbot/internal/adapters/dataset"
	"github.com/oyakov/macdbot/internal/adapters/notify"
	"github.com/oyakov/macdbot/internal/adapters/storage"
	"github.com/oyakov/macdbot/internal/backtest"
	"github.com/oyakov/macdbot/internal/domain"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	datasetPath := flag.String("dataset", "", "replay a saved dataset file instead of fetching")
	saveDataset := flag.String("save-dataset", "", "write the fetched dataset to this path")
	synthetic := flag.Int("synthetic", 0, "generate N synthetic bars instead of fetching")
	seed := flag.Int64("seed", 42, "seed for synthetic data")
	sweep := flag.Bool("sweep", false, "run the parameter sweep from config instead of a single replay")
	table := flag.Bool("table", false, "print the per-trade table")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("macdbot starting",
		"config", *configPath,
		"symbol", cfg.Backtest.Symbol,
		"interval", cfg.Backtest.Interval,
		"sweep", *sweep,
	)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	reporter := notify.NewConsole(*table, *verbose)
	orchestrator := backtest.New(backtest.Config{
		WindowSize:    cfg.Backtest.WindowSize,
		Quantity:      decimal.NewFromFloat(cfg.Backtest.Quantity),
		TakeProfitPct: decimal.NewFromFloat(cfg.Backtest.TakeProfitPct),
		StopLossPct:   decimal.NewFromFloat(cfg.Backtest.StopLossPct),
	}, backtest.LogSink{})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := binance.NewClient(cfg.API.BinanceBase)

	if *sweep {
		runSweep(ctx, cfg, orchestrator, client, store, reporter)
		return
	}

	ds, err := resolveDataset(ctx, cfg, client, *datasetPath, *synthetic, *seed)
	if err != nil {
		slog.Error("failed to load dataset", "err", err)
		os.Exit(1)
	}
	if *saveDataset != "" {
		if err := dataset.Save(*saveDataset, ds); err != nil {
			slog.Error("failed to save dataset", "err", err, "path", *saveDataset)
			os.Exit(1)
		}
		slog.Info("dataset saved", "path", *saveDataset, "bars", len(ds.Bars))
	}

	params := domain.MACDParameters{
		FastPeriod:   cfg.MACD.FastPeriod,
		SlowPeriod:   cfg.MACD.SlowPeriod,
		SignalPeriod: cfg.MACD.SignalPeriod,
	}

	result, err := orchestrator.Run(ctx, ds, params)
	if err != nil {
		slog.Error("backtest rejected", "err", err)
		os.Exit(1)
	}

	if err := store.SaveResult(ctx, result); err != nil {
		slog.Warn("failed to persist result", "err", err, "run_id", result.RunID)
	}
	if err := reporter.Report(ctx, []domain.BacktestResult{result}); err != nil {
		slog.Warn("reporter error", "err", err)
	}

	slog.Info("macdbot stopped cleanly")
}

// resolveDataset decide de dónde salen las velas: archivo guardado, generador
// sintético, o descarga del exchange (en ese orden de prioridad).
func resolveDataset(ctx context.Context, cfg *config.Config, client *binance.Client, path string, synthetic int, seed int64) (domain.Dataset, error) {
	if path != "" {
		return dataset.Load(path)
	}
	if synthetic > 0 {
		return backtest.GenerateSyntheticDataset(cfg.Backtest.Symbol, cfg.Backtest.Interval, synthetic, seed), nil
	}

	bars, err := client.FetchLastNDays(ctx, cfg.Backtest.Symbol, cfg.Backtest.Interval, cfg.Backtest.Days)
	if err != nil {
		return domain.Dataset{}, err
	}
	return domain.Dataset{
		Name:        cfg.Backtest.Symbol + "_" + cfg.Backtest.Interval,
		Symbol:      cfg.Backtest.Symbol,
		Interval:    cfg.Backtest.Interval,
		CollectedAt: time.Now().UTC(),
		Bars:        bars,
	}, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
