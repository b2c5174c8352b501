// Package metrics exposes Prometheus collectors describing kernel
// activity: thread counts by state, ticks processed and syscalls
// dispatched by number. It is purely observational — it adds no
// scheduling policy — so it carries the ambient observability stack
// without touching any of spec.md's Non-goals.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups the kernel's Prometheus metrics.
type Collectors struct {
	ThreadsByState  *prometheus.GaugeVec
	Ticks           prometheus.Counter
	Syscalls        *prometheus.CounterVec
	ContextSwitches prometheus.Counter
}

// New registers and returns a fresh set of collectors against reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		ThreadsByState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cortexkernel",
			Name:      "threads",
			Help:      "Number of thread table slots currently in each state.",
		}, []string{"state"}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cortexkernel",
			Name:      "ticks_total",
			Help:      "Number of scheduler ticks processed.",
		}),
		Syscalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortexkernel",
			Name:      "syscalls_total",
			Help:      "Number of syscalls dispatched, by syscall number.",
		}, []string{"syscall"}),
		ContextSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cortexkernel",
			Name:      "context_switches_total",
			Help:      "Number of times the scheduler dispatched a different thread.",
		}),
	}
	reg.MustRegister(c.ThreadsByState, c.Ticks, c.Syscalls, c.ContextSwitches)
	return c
}
