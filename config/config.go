package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del backtester.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	MACD     MACDConfig     `yaml:"macd"`
	Sweep    SweepConfig    `yaml:"sweep"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// BacktestConfig controla el replay individual.
type BacktestConfig struct {
	Symbol        string  `yaml:"symbol"`
	Interval      string  `yaml:"interval"`
	Days          int     `yaml:"days"`            // histórico a descargar
	Quantity      float64 `yaml:"quantity"`        // tamaño de orden en unidades base
	TakeProfitPct float64 `yaml:"take_profit_pct"` // fracción, p.ej. 0.03 = 3%
	StopLossPct   float64 `yaml:"stop_loss_pct"`
	WindowSize    int     `yaml:"window_size"` // 0 = mínimo que admiten los parámetros
}

// MACDConfig son los periodos del indicador para un replay individual.
type MACDConfig struct {
	FastPeriod   int `yaml:"fast_period"`
	SlowPeriod   int `yaml:"slow_period"`
	SignalPeriod int `yaml:"signal_period"`
}

// SweepConfig define el grid de un barrido de parámetros.
type SweepConfig struct {
	Symbols       []string `yaml:"symbols"`
	Intervals     []string `yaml:"intervals"`
	FastPeriods   []int    `yaml:"fast_periods"`
	SlowPeriods   []int    `yaml:"slow_periods"`
	SignalPeriods []int    `yaml:"signal_periods"`
	Workers       int      `yaml:"workers"` // 0 = NumCPU
}

// APIConfig contiene el base URL del exchange.
type APIConfig struct {
	BinanceBase string `yaml:"binance_base"`
}

// StorageConfig controla dónde se persisten los resultados.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BINANCE_BASE"); v != "" {
		cfg.API.BinanceBase = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Backtest.Symbol == "" {
		cfg.Backtest.Symbol = "BTCUSDT"
	}
	if cfg.Backtest.Interval == "" {
		cfg.Backtest.Interval = "1h"
	}
	if cfg.Backtest.Days <= 0 {
		cfg.Backtest.Days = 30
	}
	if cfg.Backtest.Quantity <= 0 {
		cfg.Backtest.Quantity = 0.01
	}
	if cfg.Backtest.TakeProfitPct < 0 {
		cfg.Backtest.TakeProfitPct = 0
	}
	if cfg.Backtest.StopLossPct < 0 {
		cfg.Backtest.StopLossPct = 0
	}
	if cfg.MACD.FastPeriod <= 0 {
		cfg.MACD.FastPeriod = 12
	}
	if cfg.MACD.SlowPeriod <= 0 {
		cfg.MACD.SlowPeriod = 26
	}
	if cfg.MACD.SignalPeriod <= 0 {
		cfg.MACD.SignalPeriod = 9
	}
	if cfg.API.BinanceBase == "" {
		cfg.API.BinanceBase = "https://api.binance.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "macdbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
