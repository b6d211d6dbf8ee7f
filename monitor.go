package seshat

import (
	"sync"
	"time"
)

// PerformanceMonitor tracks query and ingestion performance for one index.
type PerformanceMonitor struct {
	mu              sync.RWMutex
	searchLatencies []time.Duration
	ingestTimes     []time.Duration
	cacheHitRate    float64
	cacheHits       int64
	cacheMisses     int64
	startTime       time.Time
}

// NewPerformanceMonitor creates a new performance monitor.
func NewPerformanceMonitor() *PerformanceMonitor {
	return &PerformanceMonitor{
		startTime: time.Now(),
	}
}

// RecordSearchLatency records a query operation latency.
func (pm *PerformanceMonitor) RecordSearchLatency(latency time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.searchLatencies = append(pm.searchLatencies, latency)
	// Keep only last 1000 measurements
	if len(pm.searchLatencies) > 1000 {
		pm.searchLatencies = pm.searchLatencies[len(pm.searchLatencies)-1000:]
	}
}

// RecordIngestTime records a bulk ingestion duration.
func (pm *PerformanceMonitor) RecordIngestTime(duration time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ingestTimes = append(pm.ingestTimes, duration)
	if len(pm.ingestTimes) > 100 {
		pm.ingestTimes = pm.ingestTimes[len(pm.ingestTimes)-100:]
	}
}

// RecordCacheHit records a result-cache hit.
func (pm *PerformanceMonitor) RecordCacheHit() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.cacheHits++
	pm.updateCacheHitRate()
}

// RecordCacheMiss records a result-cache miss.
func (pm *PerformanceMonitor) RecordCacheMiss() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.cacheMisses++
	pm.updateCacheHitRate()
}

func (pm *PerformanceMonitor) updateCacheHitRate() {
	total := pm.cacheHits + pm.cacheMisses
	if total > 0 {
		pm.cacheHitRate = float64(pm.cacheHits) / float64(total)
	}
}

// GetMetrics returns the collected metrics.
func (pm *PerformanceMonitor) GetMetrics() map[string]any {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	metrics := map[string]any{
		"uptime":         time.Since(pm.startTime).String(),
		"cache_hit_rate": pm.cacheHitRate,
		"cache_hits":     pm.cacheHits,
		"cache_misses":   pm.cacheMisses,
	}

	if len(pm.searchLatencies) > 0 {
		var totalLatency time.Duration
		minLatency := pm.searchLatencies[0]
		maxLatency := pm.searchLatencies[0]

		for _, latency := range pm.searchLatencies {
			totalLatency += latency
			if latency < minLatency {
				minLatency = latency
			}
			if latency > maxLatency {
				maxLatency = latency
			}
		}

		metrics["avg_search_latency_ms"] = float64(totalLatency.Nanoseconds()) / float64(len(pm.searchLatencies)) / 1e6
		metrics["min_search_latency_ms"] = float64(minLatency.Nanoseconds()) / 1e6
		metrics["max_search_latency_ms"] = float64(maxLatency.Nanoseconds()) / 1e6
		metrics["total_searches"] = len(pm.searchLatencies)
	}

	if len(pm.ingestTimes) > 0 {
		var totalIngest time.Duration
		for _, duration := range pm.ingestTimes {
			totalIngest += duration
		}
		metrics["avg_ingest_time_ms"] = float64(totalIngest.Nanoseconds()) / float64(len(pm.ingestTimes)) / 1e6
	}

	return metrics
}
