package warmup

import (
	"context"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// WarmupConfig defines configuration for warming up the rule engine
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Number of proxy records in the sample document
	SampleRecords int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency:   runtime.NumCPU(),
		Iterations:    200,
		SampleRecords: 50,
		Duration:      5 * time.Second,
		ForceGC:       true,
	}
}

// Manager handles warmup operations
type Manager struct {
	logger      ports.Logger
	normalizers []ports.Normalizer
	streams     []ports.StreamProcessor
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// RegisterStreamProcessor adds a stream processor to be warmed up
func (wm *Manager) RegisterStreamProcessor(proc ports.StreamProcessor) {
	wm.streams = append(wm.streams, proc)
}

// WarmUp runs the sample document through every registered component.
// It returns the number of completed runs.
func (wm *Manager) WarmUp(ctx context.Context) int {
	startTime := time.Now()
	wm.logger.Info("Starting warmup",
		"components", len(wm.normalizers)+len(wm.streams),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	sample := GenerateSample(wm.config.SampleRecords)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runs := 0
			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-warmupCtx.Done():
					mu.Lock()
					total += runs
					mu.Unlock()
					return
				default:
				}

				for _, normalizer := range wm.normalizers {
					_ = normalizer.Normalize(sample)
					runs++
				}
				for _, proc := range wm.streams {
					_, _ = proc.ProcessStream(warmupCtx, strings.NewReader(sample), io.Discard)
					runs++
				}
			}
			mu.Lock()
			total += runs
			mu.Unlock()
		}()
	}
	wg.Wait()

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("Warmup completed",
		"runs", total,
		"duration", time.Since(startTime),
	)
	return total
}

// GenerateSample builds a Clash-style proxy list exercising every rule.
func GenerateSample(records int) string {
	names := []string{
		`\U0001F1ED\U0001F1F0 香港 01`,
		`日本 国内`,
		`CloudFlare-Pro|1|5.8MB/s`,
		`192.168.1.1 high-speed`,
		`挪国内`,
		`回国 上海`,
		`node.example.com`,
		`★ 美国 ★`,
		`新加坡 02`,
	}

	var sb strings.Builder
	sb.WriteString("proxies:\n")
	for i := 0; i < records; i++ {
		sb.WriteString(`  - {name: "`)
		sb.WriteString(names[i%len(names)])
		sb.WriteString(`", server: 1.1.1.1, port: 443, type: ss}`)
		sb.WriteString("\n")
	}
	return sb.String()
}
