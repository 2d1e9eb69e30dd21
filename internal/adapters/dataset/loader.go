package dataset

// loader.go — carga y guardado de datasets de velas en JSON.
//
// El formato de archivo usa millis para timestamps y strings para precios,
// igual que el wire format del exchange: un dataset guardado y recargado
// produce exactamente las mismas velas bit a bit.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oyakov/macdbot/internal/domain"
)

type fileDataset struct {
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	Interval    string    `json:"interval"`
	CollectedAt int64     `json:"collected_at"`
	Bars        []fileBar `json:"bars"`
}

type fileBar struct {
	OpenTime  int64  `json:"open_time"`
	CloseTime int64  `json:"close_time"`
	Open      string `json:"open"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Close     string `json:"close"`
	Volume    string `json:"volume"`
}

// Load lee un dataset desde la ruta dada. Las velas se devuelven ordenadas
// por close time. Si el archivo no trae nombre, se usa el del archivo.
func Load(path string) (domain.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset.Load: %w", err)
	}

	var fd fileDataset
	if err := json.Unmarshal(raw, &fd); err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset.Load: parse %q: %w", path, err)
	}

	ds := domain.Dataset{
		Name:        fd.Name,
		Symbol:      fd.Symbol,
		Interval:    fd.Interval,
		CollectedAt: time.UnixMilli(fd.CollectedAt).UTC(),
		Bars:        make([]domain.Bar, 0, len(fd.Bars)),
	}
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	for i, fb := range fd.Bars {
		bar, err := fb.toDomain(fd.Symbol, fd.Interval)
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("dataset.Load: bar %d: %w", i, err)
		}
		ds.Bars = append(ds.Bars, bar)
	}
	domain.SortBars(ds.Bars)
	return ds, nil
}

// Save escribe el dataset en la ruta dada, creando los directorios que falten.
func Save(path string, ds domain.Dataset) error {
	fd := fileDataset{
		Name:        ds.Name,
		Symbol:      ds.Symbol,
		Interval:    ds.Interval,
		CollectedAt: ds.CollectedAt.UnixMilli(),
		Bars:        make([]fileBar, 0, len(ds.Bars)),
	}
	for _, bar := range ds.Bars {
		fd.Bars = append(fd.Bars, fileBar{
			OpenTime:  bar.OpenTime.UnixMilli(),
			CloseTime: bar.CloseTime.UnixMilli(),
			Open:      bar.Open.String(),
			High:      bar.High.String(),
			Low:       bar.Low.String(),
			Close:     bar.Close.String(),
			Volume:    bar.Volume.String(),
		})
	}

	raw, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("dataset.Save: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataset.Save: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("dataset.Save: %w", err)
	}
	return nil
}

func (fb fileBar) toDomain(symbol, interval string) (domain.Bar, error) {
	bar := domain.Bar{
		Symbol:    symbol,
		Interval:  interval,
		OpenTime:  time.UnixMilli(fb.OpenTime).UTC(),
		CloseTime: time.UnixMilli(fb.CloseTime).UTC(),
	}

	fields := []struct {
		name string
		val  string
		dst  *decimal.Decimal
	}{
		{"open", fb.Open, &bar.Open},
		{"high", fb.High, &bar.High},
		{"low", fb.Low, &bar.Low},
		{"close", fb.Close, &bar.Close},
		{"volume", fb.Volume, &bar.Volume},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.val)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%s %q: %w", f.name, f.val, err)
		}
		*f.dst = d
	}
	return bar, nil
}
