package logger

import (
	"context"
	"sort"
	"sync"
	"time"
)

type opCounter struct {
	total   int64
	failed  int64
	latency time.Duration
}

type Metrics struct {
	mu  sync.Mutex
	ops map[string]*opCounter
}

var globalMetrics = &Metrics{ops: make(map[string]*opCounter)}

type OperationStats struct {
	Total        int64
	Failed       int64
	AvgLatencyMs float64
}

func RecordOperation(operation string, err error, duration time.Duration) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	c, ok := globalMetrics.ops[operation]
	if !ok {
		c = &opCounter{}
		globalMetrics.ops[operation] = c
	}
	c.total++
	c.latency += duration
	if err != nil {
		c.failed++
	}
}

func GetMetrics() map[string]OperationStats {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	result := make(map[string]OperationStats, len(globalMetrics.ops))
	for op, c := range globalMetrics.ops {
		stats := OperationStats{Total: c.total, Failed: c.failed}
		if c.total > 0 {
			stats.AvgLatencyMs = float64(c.latency) / float64(c.total) / 1e6
		}
		result[op] = stats
	}
	return result
}

// OperationNames returns the recorded operation names in sorted order.
func OperationNames() []string {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	names := make([]string, 0, len(globalMetrics.ops))
	for op := range globalMetrics.ops {
		names = append(names, op)
	}
	sort.Strings(names)
	return names
}

// TimedOperation runs fn, records its outcome under operation and logs the
// result through the logger carried by ctx.
func TimedOperation(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	log := FromContext(ctx).With("step", operation)
	log.Debug("starting step")

	err := fn()
	duration := time.Since(start)

	RecordOperation(operation, err, duration)

	if err != nil {
		log.Error("step failed", "error", err, "duration", duration)
	} else {
		log.Debug("step completed", "duration", duration)
	}

	return err
}

func ResetMetrics() {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	globalMetrics.ops = make(map[string]*opCounter)
}
