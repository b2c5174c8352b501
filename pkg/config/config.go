// Package config loads the kernel's compile-time configuration
// (spec.md §6) from defaults, environment variables and an optional
// YAML file, using github.com/spf13/viper — the same pattern the
// wider retrieved corpus (kubernetes, grafana) uses for service
// configuration, standing in for the original's #define-based
// compile-time constants.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config mirrors spec.md §6's compile-time configuration table.
type Config struct {
	MaxThreads       int  `mapstructure:"max_threads"`
	ThreadMemSize    int  `mapstructure:"thread_mem_size"`
	KernelStackSize  int  `mapstructure:"kernel_stack_size"`
	Preemption       bool `mapstructure:"preemption"`
	SchedulerIRQFreq int  `mapstructure:"scheduler_irq_freq"`
}

// Default returns spec.md's default configuration: 12 threads, 1024
// byte stacks, a 1024 byte kernel stack, preemption enabled, 1 kHz
// scheduler tick.
func Default() Config {
	return Config{
		MaxThreads:       12,
		ThreadMemSize:    1024,
		KernelStackSize:  1024,
		Preemption:       true,
		SchedulerIRQFreq: 1000,
	}
}

// CyclesPerMs is the tick-to-millisecond ratio SLEEP divides its
// argument by (spec.md §6: "1000 / IRQ_FREQ").
func (c Config) CyclesPerMs() uint32 {
	if c.SchedulerIRQFreq <= 0 {
		return 1
	}
	return uint32(1000 / c.SchedulerIRQFreq)
}

// Load reads configuration from defaults, the named YAML file (if path
// is non-empty) and environment variables prefixed CORTEXKERNEL_, with
// environment variables taking precedence over the file and the file
// over the defaults, validating the result. This is the only validation boundary in the
// system (spec.md §7: "only validate at system boundaries").
func Load(path string) (Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("max_threads", d.MaxThreads)
	v.SetDefault("thread_mem_size", d.ThreadMemSize)
	v.SetDefault("kernel_stack_size", d.KernelStackSize)
	v.SetDefault("preemption", d.Preemption)
	v.SetDefault("scheduler_irq_freq", d.SchedulerIRQFreq)

	v.SetEnvPrefix("CORTEXKERNEL")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the boundary constraints the kernel depends on.
func (c Config) Validate() error {
	if c.MaxThreads <= 0 {
		return fmt.Errorf("config: max_threads must be positive, got %d", c.MaxThreads)
	}
	if c.ThreadMemSize <= 0 || c.ThreadMemSize&(c.ThreadMemSize-1) != 0 {
		return fmt.Errorf("config: thread_mem_size must be a power of two, got %d", c.ThreadMemSize)
	}
	if c.SchedulerIRQFreq <= 0 {
		return fmt.Errorf("config: scheduler_irq_freq must be positive, got %d", c.SchedulerIRQFreq)
	}
	return nil
}
