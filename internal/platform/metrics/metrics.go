package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-local counters for requests and the payslip
// workflow. Values reset on restart.
type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64

	payslipsRendered atomic.Uint64
	renderFailures   atomic.Uint64
	storageFailures  atomic.Uint64
	bulkRuns         atomic.Uint64
}

type Snapshot struct {
	RequestsTotal    uint64  `json:"requestsTotal"`
	ErrorsTotal      uint64  `json:"errorsTotal"`
	RateLimitedTotal uint64  `json:"rateLimitedTotal"`
	AvgDurationMs    float64 `json:"avgDurationMs"`
	PayslipsRendered uint64  `json:"payslipsRendered"`
	RenderFailures   uint64  `json:"renderFailures"`
	StorageFailures  uint64  `json:"storageFailures"`
	BulkRuns         uint64  `json:"bulkRuns"`
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	if status >= 500 {
		c.errorRequests.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) PayslipRendered() { c.payslipsRendered.Add(1) }
func (c *Collector) RenderFailed()    { c.renderFailures.Add(1) }
func (c *Collector) StorageFailed()   { c.storageFailures.Add(1) }
func (c *Collector) BulkRun()         { c.bulkRuns.Add(1) }

func (c *Collector) Snapshot() Snapshot {
	total := c.totalRequests.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(c.totalDurationMs.Load()) / float64(total)
	}
	return Snapshot{
		RequestsTotal:    total,
		ErrorsTotal:      c.errorRequests.Load(),
		RateLimitedTotal: c.rateLimited.Load(),
		AvgDurationMs:    avg,
		PayslipsRendered: c.payslipsRendered.Load(),
		RenderFailures:   c.renderFailures.Load(),
		StorageFailures:  c.storageFailures.Load(),
		BulkRuns:         c.bulkRuns.Load(),
	}
}
