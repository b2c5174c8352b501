package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/embeddedco/cortexkernel/internal/serial"
	"github.com/embeddedco/cortexkernel/pkg/config"
	"github.com/embeddedco/cortexkernel/pkg/kernel"
	"github.com/embeddedco/cortexkernel/pkg/metrics"
	"github.com/embeddedco/cortexkernel/pkg/platform/software"
)

func newBootCmd() *cobra.Command {
	var (
		configPath  string
		metricsAddr string
		children    uint32
		dev         bool
	)

	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Boot the kernel against the goroutine-backed software platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoot(cmd.Context(), configPath, metricsAddr, children, dev)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file (overrides defaults; CORTEXKERNEL_* env vars override it)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve Prometheus metrics on")
	cmd.Flags().Uint32Var(&children, "children", 3, "number of demo child threads the spawner worker creates")
	cmd.Flags().BoolVar(&dev, "dev", false, "use zap's human-readable development logger instead of JSON")

	return cmd
}

func runBoot(ctx context.Context, configPath, metricsAddr string, children uint32, dev bool) error {
	log, err := newLogger(dev)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collectors := metrics.New(reg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server stopped", "error", err)
		}
	}()
	defer srv.Shutdown(context.Background()) //nolint:errcheck

	sink := serial.NewStdoutSink(os.Stdout)

	plat := software.New(time.Duration(1000/cfg.SchedulerIRQFreq)*time.Millisecond, cfg.Preemption)

	k := kernel.New(cfg, log.Sugar(), plat)
	k.Init()

	lockHandle := k.NewLock()
	childHandle := plat.Register(counterChild(sink, lockHandle))
	heartbeatHandle := plat.Register(heartbeatWorker(sink, '#', 500, 3))
	mainHandle := plat.Register(spawnerWorker(childHandle, heartbeatHandle, children))
	k.SeedMain(mainHandle, 0)

	stopPoll := pollMetrics(ctx, k, collectors)
	defer stopPoll()

	log.Infow("kernel booting", "max_threads", cfg.MaxThreads, "scheduler_irq_freq", cfg.SchedulerIRQFreq)

	err = k.Run(ctx)
	switch {
	case errors.Is(err, kernel.ErrReset):
		log.Infow("kernel reset requested, shutting down")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Infow("kernel interrupted, shutting down")
		return nil
	default:
		return err
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// metricsReporter copies kernel.Stats snapshots into Prometheus
// counters, tracking the last-seen cumulative value so it can report
// deltas (spec.md §2A keeps pkg/kernel itself free of any
// Prometheus import; this is the one place the two meet).
type metricsReporter struct {
	lastTicks    float64
	lastSwitches float64
	lastSyscalls [11]float64
}

func (r *metricsReporter) report(k *kernel.Kernel, c *metrics.Collectors) {
	for state, n := range k.ThreadCounts() {
		c.ThreadsByState.WithLabelValues(state.String()).Set(float64(n))
	}

	stats := k.Stats()
	c.Ticks.Add(float64(stats.Ticks) - r.lastTicks)
	r.lastTicks = float64(stats.Ticks)
	c.ContextSwitches.Add(float64(stats.ContextSwitches) - r.lastSwitches)
	r.lastSwitches = float64(stats.ContextSwitches)

	for num, count := range stats.Syscalls {
		delta := float64(count) - r.lastSyscalls[num]
		if delta > 0 {
			c.Syscalls.WithLabelValues(syscallName(num)).Add(delta)
		}
		r.lastSyscalls[num] = float64(count)
	}
}

// pollMetrics periodically copies the kernel's counters and thread
// table occupancy into the Prometheus collectors, since the kernel
// package itself never imports pkg/metrics (spec.md §2A keeps
// observability a strict outside observer of kernel state).
func pollMetrics(ctx context.Context, k *kernel.Kernel, c *metrics.Collectors) func() {
	stop := make(chan struct{})
	r := &metricsReporter{}
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.report(k, c)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}

func syscallName(num int) string {
	names := [...]string{
		"exit", "yield", "sleep", "spawn", "fork",
		"reset", "wait", "kill", "get_tid", "lock", "unlock",
	}
	if num < 0 || num >= len(names) {
		return "unknown"
	}
	return names[num]
}
