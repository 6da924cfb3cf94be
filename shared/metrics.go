package shared

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// maxLatencySamples bounds the sliding window used for percentiles
const maxLatencySamples = 1000

// ServiceMetrics tracks request counts and latency for one service
type ServiceMetrics struct {
	serviceName         string
	totalRequests       int64
	successfulRequests  int64
	failedRequests      int64
	totalProcessingTime time.Duration
	lastUpdated         time.Time
	counters            map[string]int64
	performance         *PerformanceMetrics
	mutex               sync.RWMutex
}

// ServiceMetricsSnapshot is the read-only view served by the metrics endpoint
type ServiceMetricsSnapshot struct {
	ServiceName           string                     `json:"service_name"`
	TotalRequests         int64                      `json:"total_requests"`
	SuccessfulRequests    int64                      `json:"successful_requests"`
	FailedRequests        int64                      `json:"failed_requests"`
	SuccessRate           float64                    `json:"success_rate"`
	AverageProcessingTime time.Duration              `json:"average_processing_time"`
	LastUpdated           time.Time                  `json:"last_updated"`
	Counters              map[string]int64           `json:"counters,omitempty"`
	Performance           PerformanceMetricsSnapshot `json:"performance"`
}

func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		serviceName: serviceName,
		lastUpdated: time.Now(),
		counters:    make(map[string]int64),
		performance: NewPerformanceMetrics(),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests++
	m.totalProcessingTime += processingTime
	if success {
		m.successfulRequests++
	} else {
		m.failedRequests++
	}
	m.lastUpdated = time.Now()

	m.performance.RecordProcessingTime(processingTime)
}

// IncrementCounter bumps a named counter such as "schemes_added"
func (m *ServiceMetrics) IncrementCounter(key string, delta int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.counters[key] += delta
	m.lastUpdated = time.Now()
}

// GetSuccessRate returns the success rate as a percentage
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.successRateLocked()
}

func (m *ServiceMetrics) successRateLocked() float64 {
	if m.totalRequests == 0 {
		return 0.0
	}
	return float64(m.successfulRequests) / float64(m.totalRequests) * 100.0
}

func (m *ServiceMetrics) Snapshot() ServiceMetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}

	var average time.Duration
	if m.totalRequests > 0 {
		average = time.Duration(int64(m.totalProcessingTime) / m.totalRequests)
	}

	return ServiceMetricsSnapshot{
		ServiceName:           m.serviceName,
		TotalRequests:         m.totalRequests,
		SuccessfulRequests:    m.successfulRequests,
		FailedRequests:        m.failedRequests,
		SuccessRate:           m.successRateLocked(),
		AverageProcessingTime: average,
		LastUpdated:           m.lastUpdated,
		Counters:              counters,
		Performance:           m.performance.Snapshot(),
	}
}

// LogSummary logs a summary of current metrics
func (m *ServiceMetrics) LogSummary() {
	snapshot := m.Snapshot()

	logrus.WithFields(logrus.Fields{
		"service_name":        snapshot.ServiceName,
		"total_requests":      snapshot.TotalRequests,
		"successful_requests": snapshot.SuccessfulRequests,
		"failed_requests":     snapshot.FailedRequests,
		"success_rate":        snapshot.SuccessRate,
		"avg_processing_time": snapshot.AverageProcessingTime,
		"p95":                 snapshot.Performance.P95,
	}).Info("Service metrics summary")
}

// HTTPMetrics tracks outbound HTTP calls to third-party APIs
type HTTPMetrics struct {
	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	timeoutErrors      int64
	statusCodes        map[int]int64
	totalResponseTime  time.Duration
	mutex              sync.Mutex
}

type HTTPMetricsSnapshot struct {
	TotalRequests       int64         `json:"total_requests"`
	SuccessfulRequests  int64         `json:"successful_requests"`
	FailedRequests      int64         `json:"failed_requests"`
	TimeoutErrors       int64         `json:"timeout_errors"`
	StatusCodes         map[int]int64 `json:"status_codes"`
	AverageResponseTime time.Duration `json:"average_response_time"`
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{statusCodes: make(map[int]int64)}
}

// RecordHTTPRequest records one outbound call. statusCode is 0 when no response arrived.
func (hm *HTTPMetrics) RecordHTTPRequest(success bool, statusCode int, responseTime time.Duration, isTimeout bool) {
	hm.mutex.Lock()
	defer hm.mutex.Unlock()

	hm.totalRequests++
	hm.totalResponseTime += responseTime
	if success {
		hm.successfulRequests++
	} else {
		hm.failedRequests++
	}
	if isTimeout {
		hm.timeoutErrors++
	}
	if statusCode > 0 {
		hm.statusCodes[statusCode]++
	}
}

func (hm *HTTPMetrics) Snapshot() HTTPMetricsSnapshot {
	hm.mutex.Lock()
	defer hm.mutex.Unlock()

	codes := make(map[int]int64, len(hm.statusCodes))
	for k, v := range hm.statusCodes {
		codes[k] = v
	}

	var average time.Duration
	if hm.totalRequests > 0 {
		average = time.Duration(int64(hm.totalResponseTime) / hm.totalRequests)
	}

	return HTTPMetricsSnapshot{
		TotalRequests:       hm.totalRequests,
		SuccessfulRequests:  hm.successfulRequests,
		FailedRequests:      hm.failedRequests,
		TimeoutErrors:       hm.timeoutErrors,
		StatusCodes:         codes,
		AverageResponseTime: average,
	}
}

// PerformanceMetrics keeps a sliding window of latencies for percentile reporting
type PerformanceMetrics struct {
	samples []time.Duration
	mutex   sync.Mutex
}

type PerformanceMetricsSnapshot struct {
	Samples int           `json:"samples"`
	P50     time.Duration `json:"p50"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
}

func NewPerformanceMetrics() *PerformanceMetrics {
	return &PerformanceMetrics{samples: make([]time.Duration, 0, 64)}
}

func (pm *PerformanceMetrics) RecordProcessingTime(duration time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.samples = append(pm.samples, duration)
	if len(pm.samples) > maxLatencySamples {
		pm.samples = pm.samples[len(pm.samples)-maxLatencySamples:]
	}
}

func (pm *PerformanceMetrics) Snapshot() PerformanceMetricsSnapshot {
	pm.mutex.Lock()
	sorted := make([]time.Duration, len(pm.samples))
	copy(sorted, pm.samples)
	pm.mutex.Unlock()

	if len(sorted) == 0 {
		return PerformanceMetricsSnapshot{}
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return PerformanceMetricsSnapshot{
		Samples: len(sorted),
		P50:     percentile(sorted, 50),
		P95:     percentile(sorted, 95),
		P99:     percentile(sorted, 99),
	}
}

// percentile expects sorted input
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// ExtractionMetrics counts how extraction attempts ended
type ExtractionMetrics struct {
	attempts   int64
	structured int64
	fallbacks  int64
	malformed  int64
	apiErrors  int64
	mutex      sync.Mutex
}

type ExtractionMetricsSnapshot struct {
	Attempts       int64   `json:"attempts"`
	Structured     int64   `json:"structured"`
	Fallbacks      int64   `json:"fallbacks"`
	MalformedJSON  int64   `json:"malformed_json"`
	APIErrors      int64   `json:"api_errors"`
	StructuredRate float64 `json:"structured_rate"`
}

func NewExtractionMetrics() *ExtractionMetrics {
	return &ExtractionMetrics{}
}

func (m *ExtractionMetrics) RecordStructured() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.attempts++
	m.structured++
}

// RecordFallback records an attempt that ended with the fallback record.
// malformed distinguishes unparseable output from API failures and empty replies.
func (m *ExtractionMetrics) RecordFallback(malformed, apiError bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.attempts++
	m.fallbacks++
	if malformed {
		m.malformed++
	}
	if apiError {
		m.apiErrors++
	}
}

func (m *ExtractionMetrics) Snapshot() ExtractionMetricsSnapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var rate float64
	if m.attempts > 0 {
		rate = float64(m.structured) / float64(m.attempts) * 100.0
	}

	return ExtractionMetricsSnapshot{
		Attempts:       m.attempts,
		Structured:     m.structured,
		Fallbacks:      m.fallbacks,
		MalformedJSON:  m.malformed,
		APIErrors:      m.apiErrors,
		StructuredRate: rate,
	}
}

// MetricsRegistry groups the collectors exposed by the metrics endpoint
type MetricsRegistry struct {
	Generative *ServiceMetrics
	Ingestion  *ServiceMetrics
	Extraction *ExtractionMetrics
	Outbound   *HTTPMetrics
}

func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		Generative: NewServiceMetrics("generative_text"),
		Ingestion:  NewServiceMetrics("ingestion"),
		Extraction: NewExtractionMetrics(),
		Outbound:   NewHTTPMetrics(),
	}
}

// Snapshot returns a JSON-friendly view of every collector
func (r *MetricsRegistry) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"generative_text": r.Generative.Snapshot(),
		"ingestion":       r.Ingestion.Snapshot(),
		"extraction":      r.Extraction.Snapshot(),
		"outbound_http":   r.Outbound.Snapshot(),
	}
}
