// Package analytics provides common types and utilities for time-series analytics.
package analytics

import (
	"math"
	"time"
)

// TimeSeriesPoint represents a single time-series data point with time and value.
// This is the common type used across the forecast, dataset and service packages.
type TimeSeriesPoint struct {
	Time  time.Time
	Value float64
}

// TimeSeriesData represents a collection of time-series data points
type TimeSeriesData []TimeSeriesPoint

// Values extracts just the values from the time series
func (ts TimeSeriesData) Values() []float64 {
	values := make([]float64, len(ts))
	for i, p := range ts {
		values[i] = p.Value
	}
	return values
}

// Times extracts just the times from the time series
func (ts TimeSeriesData) Times() []time.Time {
	times := make([]time.Time, len(ts))
	for i, p := range ts {
		times[i] = p.Time
	}
	return times
}

// Len returns the number of data points
func (ts TimeSeriesData) Len() int {
	return len(ts)
}

// Mean calculates the mean of all defined values. Missing values are skipped.
func (ts TimeSeriesData) Mean() float64 {
	sum := 0.0
	n := 0
	for _, p := range ts {
		if IsMissing(p.Value) {
			continue
		}
		sum += p.Value
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// FromValues builds an evenly spaced series starting at start.
func FromValues(values []float64, start time.Time, interval time.Duration) TimeSeriesData {
	ts := make(TimeSeriesData, len(values))
	for i, v := range values {
		ts[i] = TimeSeriesPoint{
			Time:  start.Add(time.Duration(i) * interval),
			Value: v,
		}
	}
	return ts
}

// Missing returns the marker used for undefined positions in derived series.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// CountMissing returns how many leading and total entries are undefined.
func CountMissing(values []float64) (leading, total int) {
	counting := true
	for _, v := range values {
		if IsMissing(v) {
			total++
			if counting {
				leading++
			}
			continue
		}
		counting = false
	}
	return leading, total
}
