// Package history keeps the bounded day-by-day log and the rolling metrics
// derived from it. The log is for display and smoothing only; the daily step
// never reads raw records.
package history

import "github.com/talgya/foodcity/internal/tuning"

// Record is one simulated day.
type Record struct {
	Day        int     `json:"day"`
	Ratio      float64 `json:"psi"`
	Production float64 `json:"prod"`
	Dispatched float64 `json:"dispatched"`
	Demand     float64 `json:"demand"`
}

// Log is the trailing day log, oldest first.
type Log struct {
	Records   []Record `json:"records"`
	Retention int      `json:"-"`
}

// NewLog returns an empty log keeping at most retention days.
// Non-positive retention uses the default 120 days.
func NewLog(retention int) *Log {
	if retention <= 0 {
		retention = tuning.HistoryRetentionDays
	}
	return &Log{Retention: retention}
}

// Append adds a day and evicts the oldest entries beyond retention.
func (l *Log) Append(r Record) {
	l.Records = append(l.Records, r)
	if l.Retention > 0 && len(l.Records) > l.Retention {
		drop := len(l.Records) - l.Retention
		l.Records = append(l.Records[:0:0], l.Records[drop:]...)
	}
}

// Len returns the number of retained days.
func (l *Log) Len() int { return len(l.Records) }

// Last returns the most recent record.
func (l *Log) Last() (Record, bool) {
	if len(l.Records) == 0 {
		return Record{}, false
	}
	return l.Records[len(l.Records)-1], true
}

// Tail returns the last n records (all of them when n exceeds the length).
func (l *Log) Tail(n int) []Record {
	if n <= 0 {
		return nil
	}
	if n > len(l.Records) {
		n = len(l.Records)
	}
	return l.Records[len(l.Records)-n:]
}

// Clone returns an independent copy.
func (l *Log) Clone() *Log {
	if l == nil {
		return nil
	}
	return &Log{Records: append([]Record(nil), l.Records...), Retention: l.Retention}
}

// RollingRatio is Σdispatched / Σdemand over the last window days,
// clamped into [0, 2]. Zero demand gives 0.
func (l *Log) RollingRatio(window int) float64 {
	return ratioOf(l.Tail(window))
}

func ratioOf(records []Record) float64 {
	dispatched, demand := 0.0, 0.0
	for _, r := range records {
		dispatched += r.Dispatched
		demand += r.Demand
	}
	if !(demand > 0) {
		return 0
	}
	return tuning.Clamp(dispatched/demand, 0, tuning.MaxSelfSufficiency)
}

// AverageProduction is the mean daily production over the last n days.
func (l *Log) AverageProduction(n int) float64 {
	tail := l.Tail(n)
	if len(tail) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range tail {
		sum += r.Production
	}
	return sum / float64(len(tail))
}

// Point is one sample of a chart series.
type Point struct {
	Day   int     `json:"day"`
	Value float64 `json:"value"`
}

// Series holds the chart data the display surface draws.
type Series struct {
	Production   []Point `json:"production"`
	RatioPercent []Point `json:"psi_percent"`
}

// Series returns production per day plus the rolling ratio in percent,
// where each ratio point covers the window ending on that day.
func (l *Log) Series(window int) Series {
	s := Series{
		Production:   make([]Point, 0, len(l.Records)),
		RatioPercent: make([]Point, 0, len(l.Records)),
	}
	for i, r := range l.Records {
		lo := max(0, i+1-window)
		s.Production = append(s.Production, Point{Day: r.Day, Value: r.Production})
		s.RatioPercent = append(s.RatioPercent, Point{Day: r.Day, Value: 100 * ratioOf(l.Records[lo:i+1])})
	}
	return s
}
