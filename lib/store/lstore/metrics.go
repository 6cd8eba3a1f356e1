package lstore

import (
	"io"
	"time"

	"github.com/ValentinKolb/eKV/lib/store"
	vm "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
)

// storeMetrics holds the per-store operation counters (Prometheus text format
// via VictoriaMetrics) and latency timers (go-metrics registry)
type storeMetrics struct {
	set *vm.Set

	inserts   *vm.Counter
	removes   *vm.Counter
	gets      *vm.Counter
	queries   *vm.Counter
	swept     *vm.Counter
	rollbacks *vm.Counter

	registry   gometrics.Registry
	queryTimer gometrics.Timer
	sweepTimer gometrics.Timer
	saveTimer  gometrics.Timer
}

func newStoreMetrics() *storeMetrics {
	set := vm.NewSet()
	registry := gometrics.NewRegistry()

	return &storeMetrics{
		set:       set,
		inserts:   set.NewCounter("ekv_inserts_total"),
		removes:   set.NewCounter("ekv_removes_total"),
		gets:      set.NewCounter("ekv_gets_total"),
		queries:   set.NewCounter("ekv_queries_total"),
		swept:     set.NewCounter("ekv_swept_entries_total"),
		rollbacks: set.NewCounter("ekv_rollbacks_total"),

		registry:   registry,
		queryTimer: gometrics.NewRegisteredTimer("query", registry),
		sweepTimer: gometrics.NewRegisteredTimer("sweep", registry),
		saveTimer:  gometrics.NewRegisteredTimer("save", registry),
	}
}

// counters returns the current counter values keyed by operation
func (m *storeMetrics) counters() map[string]uint64 {
	return map[string]uint64{
		"inserts":   m.inserts.Get(),
		"removes":   m.removes.Get(),
		"gets":      m.gets.Get(),
		"queries":   m.queries.Get(),
		"swept":     m.swept.Get(),
		"rollbacks": m.rollbacks.Get(),
	}
}

// timers summarizes every timer of the registry
func (m *storeMetrics) timers() map[string]store.TimerStats {
	out := make(map[string]store.TimerStats)
	m.registry.Each(func(name string, metric interface{}) {
		timer, ok := metric.(gometrics.Timer)
		if !ok {
			return
		}
		snap := timer.Snapshot()
		out[name] = store.TimerStats{
			Count:  snap.Count(),
			MeanMs: snap.Mean() / float64(time.Millisecond),
			P99Ms:  snap.Percentile(0.99) / float64(time.Millisecond),
		}
	})
	return out
}

func (m *storeMetrics) writePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}

// stop unregisters the timers, which releases their meter tickers
func (m *storeMetrics) stop() {
	m.registry.UnregisterAll()
}
