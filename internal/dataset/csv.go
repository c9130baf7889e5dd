// Package dataset loads observation series from delimited text.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soltixdb/arforecast/internal/analytics"
)

// ErrNoData is returned when a file has no data rows
var ErrNoData = errors.New("no observations found")

// Options controls how a CSV file is mapped onto a series
type Options struct {
	HasHeader   bool
	Comma       rune
	TimeColumn  string        // Header name of the time column; "" means none
	ValueColumn string        // Header name of the value column; "" picks the last column
	TimeLayout  string        // time.Parse layout, or "unix" for epoch seconds
	Start       time.Time     // First timestamp when there is no time column
	Interval    time.Duration // Spacing when there is no time column
}

// DefaultOptions reads "date,value" files with ISO dates
func DefaultOptions() Options {
	return Options{
		HasHeader:   true,
		Comma:       ',',
		TimeColumn:  "date",
		ValueColumn: "value",
		TimeLayout:  "2006-01-02",
		Interval:    30 * 24 * time.Hour,
	}
}

// LoadFile reads a series from path
func LoadFile(path string, opts Options) (analytics.TimeSeriesData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ts, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// Read parses a series. Empty cells and NA/NaN/null become the missing
// marker. Timestamps, when present, must be strictly increasing.
func Read(r io.Reader, opts Options) (analytics.TimeSeriesData, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	timeIdx, valueIdx := -1, -1
	line := 0

	if opts.HasHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return nil, ErrNoData
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		line++

		timeIdx, valueIdx, err = resolveColumns(header, opts)
		if err != nil {
			return nil, err
		}
	} else {
		valueIdx = 0
		if opts.TimeColumn != "" {
			timeIdx, valueIdx = 0, 1
		}
	}

	var ts analytics.TimeSeriesData
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		idx := valueIdx
		if idx < 0 {
			idx = len(record) - 1
		}
		if idx >= len(record) || (timeIdx >= 0 && timeIdx >= len(record)) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(idx, timeIdx)+1, len(record))
		}

		value, err := parseValue(record[idx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var at time.Time
		if timeIdx >= 0 {
			at, err = parseTime(record[timeIdx], opts.TimeLayout)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if n := len(ts); n > 0 && !at.After(ts[n-1].Time) {
				return nil, fmt.Errorf("line %d: time %s is not after %s", line, at.Format(time.RFC3339), ts[n-1].Time.Format(time.RFC3339))
			}
		} else {
			at = opts.Start.Add(time.Duration(len(ts)) * opts.Interval)
		}

		ts = append(ts, analytics.TimeSeriesPoint{Time: at, Value: value})
	}

	if len(ts) == 0 {
		return nil, ErrNoData
	}
	return ts, nil
}

func resolveColumns(header []string, opts Options) (timeIdx, valueIdx int, err error) {
	timeIdx, valueIdx = -1, -1
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case opts.ValueColumn != "" && strings.EqualFold(name, opts.ValueColumn):
			valueIdx = i
		case opts.TimeColumn != "" && strings.EqualFold(name, opts.TimeColumn):
			timeIdx = i
		}
	}

	if opts.ValueColumn != "" && valueIdx < 0 {
		return 0, 0, fmt.Errorf("value column %q not found in header %v", opts.ValueColumn, header)
	}
	if opts.TimeColumn != "" && timeIdx < 0 {
		return 0, 0, fmt.Errorf("time column %q not found in header %v", opts.TimeColumn, header)
	}
	return timeIdx, valueIdx, nil
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return analytics.Missing(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

func parseTime(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if layout == "unix" {
		secs, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid unix time %q", s)
		}
		return time.Unix(secs, 0).UTC(), nil
	}
	if layout == "" {
		layout = time.RFC3339
	}
	if t, err := time.Parse(layout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q for layout %s", s, layout)
}
