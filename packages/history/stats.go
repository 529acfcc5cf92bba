package history

import (
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats summarizes latency over recorded requests.
type Stats struct {
	Count  int64
	Errors int64
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Max    time.Duration
}

// Stats aggregates latency percentiles over the whole history using an
// HDR histogram (1ms to 1h range, 3 significant digits).
func (s *Store) Stats() (*Stats, error) {
	rows, err := s.db.Query(`SELECT duration_ms, status, error FROM history`)
	if err != nil {
		return nil, fmt.Errorf("querying history stats: %w", err)
	}
	defer rows.Close()

	hist := hdrhistogram.New(1, 3_600_000, 3)
	stats := &Stats{}

	for rows.Next() {
		var durationMs int64
		var status int
		var errText string
		if err := rows.Scan(&durationMs, &status, &errText); err != nil {
			return nil, fmt.Errorf("scanning history stats row: %w", err)
		}
		stats.Count++
		if errText != "" || status >= 400 {
			stats.Errors++
		}
		if durationMs < 1 {
			durationMs = 1
		}
		_ = hist.RecordValue(durationMs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history stats rows: %w", err)
	}

	if stats.Count > 0 {
		stats.P50 = time.Duration(hist.ValueAtQuantile(50)) * time.Millisecond
		stats.P95 = time.Duration(hist.ValueAtQuantile(95)) * time.Millisecond
		stats.P99 = time.Duration(hist.ValueAtQuantile(99)) * time.Millisecond
		stats.Max = time.Duration(hist.Max()) * time.Millisecond
	}
	return stats, nil
}
