// Package metrics exposes an optional live HTTP dashboard, grounded on
// Gopher2600's statsview wiring, and keeps counters of the core's cycle-clock
// throughput, per-timer overflows and DMA transfers. The dashboard serves
// statsview's default runtime charts; the counters are read through the
// Recorder's accessors and are not plotted on it.
package metrics

import (
	"sync/atomic"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Recorder accumulates the counters the dashboard plots. All fields are
// updated with atomic adds from the dispatcher hot path, so recording a
// sample never contends with emulation.
type Recorder struct {
	cycles        atomic.Int64
	timerOverflow [4]atomic.Int64
	dmaTransfers  atomic.Int64

	view *statsview.Manager
}

// New configures (but does not start) a dashboard bound to addr, e.g.
// "127.0.0.1:18891".
func New(addr string) *Recorder {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	return &Recorder{view: statsview.New()}
}

// Start launches the dashboard's HTTP server in the background.
func (r *Recorder) Start() {
	go r.view.Start()
}

// Stop shuts the dashboard server down.
func (r *Recorder) Stop() {
	r.view.Stop()
}

// AddCycles records cycles consumed by one dispatcher sweep.
func (r *Recorder) AddCycles(n int) { r.cycles.Add(int64(n)) }

// AddTimerOverflow records one overflow of timer t.
func (r *Recorder) AddTimerOverflow(t int) {
	if t >= 0 && t < len(r.timerOverflow) {
		r.timerOverflow[t].Add(1)
	}
}

// AddDMATransfer records one serviced DMA channel.
func (r *Recorder) AddDMATransfer() { r.dmaTransfers.Add(1) }

// Cycles reports the running cycle-clock total.
func (r *Recorder) Cycles() int64 { return r.cycles.Load() }

// TimerOverflows reports the running overflow count for timer t.
func (r *Recorder) TimerOverflows(t int) int64 {
	if t < 0 || t >= len(r.timerOverflow) {
		return 0
	}
	return r.timerOverflow[t].Load()
}
