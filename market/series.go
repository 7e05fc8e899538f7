package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk date format for daily bar CSV files.
const DateLayout = "2006-01-02"

// Bar represents one daily OHLC (Open, High, Low, Close) bar.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is an ordered sequence of daily bars for a single instrument.
type Series struct {
	Ticker string
	Bars   []Bar
}

func (s Series) Len() int { return len(s.Bars) }

// Closes returns the close prices in bar order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Slice returns the sub-series [i, j). Bars are shared, not copied.
func (s Series) Slice(i, j int) Series {
	return Series{Ticker: s.Ticker, Bars: s.Bars[i:j]}
}

// Split partitions the series at the cutoff date: bars strictly before the
// cutoff go to train, bars at or after the cutoff go to test.
func Split(s Series, cutoff time.Time) (train, test Series) {
	i := 0
	for i < len(s.Bars) && s.Bars[i].Date.Before(cutoff) {
		i++
	}
	return s.Slice(0, i), s.Slice(i, s.Len())
}

// LoadCSV reads daily bars from a CSV file with rows:
//
//	date,open,high,low,close[,volume]
//
// where date is YYYY-MM-DD. A header row ("date,..." or "Date,...") is
// allowed. Empty and short rows are skipped.
func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	s := Series{Ticker: tickerFromPath(path)}
	sawFirst := false

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("read dataset: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		b, ok, err := parseBarRow(row)
		if err != nil {
			return Series{}, err
		}
		if !ok {
			continue
		}
		s.Bars = append(s.Bars, b)
	}

	if len(s.Bars) == 0 {
		return Series{}, fmt.Errorf("no bars found in %s", path)
	}
	return s, nil
}

func parseBarRow(row []string) (Bar, bool, error) {
	// Need at least: date,open,high,low,close
	if len(row) < 5 {
		return Bar{}, false, nil
	}

	ds := strings.TrimSpace(row[0])
	if ds == "" {
		return Bar{}, false, nil
	}
	date, err := time.Parse(DateLayout, ds)
	if err != nil {
		return Bar{}, false, fmt.Errorf("bad date %q: %w", ds, err)
	}

	var vals [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad price %q: %w", row[i+1], err)
		}
		vals[i] = v
	}

	b := Bar{
		Date:  date,
		Open:  vals[0],
		High:  vals[1],
		Low:   vals[2],
		Close: vals[3],
	}

	if len(row) > 5 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64); err == nil {
			b.Volume = v
		}
	}
	return b, true, nil
}

func tickerFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return strings.ToUpper(base)
}
