// Package progress tracks scan throughput. It is purely observational:
// nothing here affects pipeline control flow or manifest contents.
package progress

import (
	"time"

	"github.com/objstream/bucketfest/internal/logger"
)

// DefaultReportInterval is how often periodic throughput lines are logged.
const DefaultReportInterval = 5 * time.Second

// Tracker accumulates the accepted-object count and elapsed wall time for
// one pipeline run. It is driven inline from the pipeline loop; there is
// no background goroutine.
type Tracker struct {
	log      *logger.Logger
	interval time.Duration
	start    time.Time
	last     time.Time
	objects  uint64

	now func() time.Time // test hook
}

// NewTracker starts a tracker. interval <= 0 selects DefaultReportInterval.
func NewTracker(log *logger.Logger, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	t := &Tracker{
		log:      log,
		interval: interval,
		now:      time.Now,
	}
	t.start = t.now()
	t.last = t.start
	return t
}

// Observe records the current accepted-object total and logs a throughput
// line when the report interval has elapsed.
func (t *Tracker) Observe(objects uint64) {
	t.objects = objects
	now := t.now()
	if now.Sub(t.last) < t.interval {
		return
	}
	t.last = now
	t.log.InfoWith("scanning", map[string]interface{}{
		"objects":     t.objects,
		"objects_sec": t.Rate(),
	})
}

// Elapsed returns the wall time since the tracker started.
func (t *Tracker) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Rate returns objects per second over the whole run so far.
func (t *Tracker) Rate() float64 {
	elapsed := t.Elapsed().Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(t.objects) / elapsed
}

// Objects returns the last observed total.
func (t *Tracker) Objects() uint64 {
	return t.objects
}

// LogSummary emits the final completion line.
func (t *Tracker) LogSummary(output string) {
	t.log.InfoWith("done", map[string]interface{}{
		"objects":     t.objects,
		"elapsed":     t.Elapsed().Round(time.Millisecond).String(),
		"objects_sec": t.Rate(),
		"output":      output,
	})
}
