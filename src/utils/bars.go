package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/jiaming2012/backtest-engine/src/models"
)

type BarDTO struct {
	Timestamp string  `csv:"time"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    float64 `csv:"volume"`
}

func (d *BarDTO) ToModel() (models.Bar, error) {
	t, err := time.Parse(time.RFC3339, d.Timestamp)
	if err != nil {
		t, err = time.Parse("2006-01-02 15:04:05", d.Timestamp)
		if err != nil {
			t, err = time.Parse("2006-01-02", d.Timestamp)
			if err != nil {
				return models.Bar{}, fmt.Errorf("BarDTO.ToModel: error parsing time %q: %v", d.Timestamp, err)
			}
		}
	}

	return models.Bar{
		Timestamp: t,
		Open:      d.Open,
		High:      d.High,
		Low:       d.Low,
		Close:     d.Close,
		Volume:    d.Volume,
	}, nil
}

// LoadBarsFromCsv reads an OHLCV series from a CSV file. Rows must already be
// ordered ascending by time; the engine performs no sorting or gap-filling.
func LoadBarsFromCsv(path string) ([]models.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadBarsFromCsv: failed to open %s: %w", path, err)
	}
	defer f.Close()

	var rows []*BarDTO
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("LoadBarsFromCsv: failed to parse %s: %w", path, err)
	}

	bars := make([]models.Bar, 0, len(rows))
	for i, row := range rows {
		bar, err := row.ToModel()
		if err != nil {
			return nil, fmt.Errorf("LoadBarsFromCsv: row %d: %w", i, err)
		}
		bars = append(bars, bar)
	}

	return bars, nil
}
