// Package stats aggregates request latencies for repeated CLI requests.
//
// # Thread Safety
//
// Recorder is safe for concurrent use. Counters use atomic operations and
// the histogram is guarded by a mutex.
package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// histogramMin is the smallest recordable latency in microseconds.
	histogramMin     = 1
	// histogramMax is the largest recordable latency in microseconds (1 hour).
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Recorder collects latencies in an HDR histogram.
type Recorder struct {
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	statusCodes   map[int]int64
	statusCodesMu sync.Mutex

	total   atomic.Int64
	success atomic.Int64
	failed  atomic.Int64
	bytes   atomic.Int64

	startTime time.Time
}

// Summary is a point-in-time view of the recorded requests.
type Summary struct {
	Count       int64         `json:"count" yaml:"count"`
	Success     int64         `json:"success" yaml:"success"`
	Failed      int64         `json:"failed" yaml:"failed"`
	Bytes       int64         `json:"bytes" yaml:"bytes"`
	Min         time.Duration `json:"min" yaml:"min"`
	Max         time.Duration `json:"max" yaml:"max"`
	Mean        time.Duration `json:"mean" yaml:"mean"`
	StdDev      time.Duration `json:"stdDev" yaml:"stdDev"`
	P50         time.Duration `json:"p50" yaml:"p50"`
	P90         time.Duration `json:"p90" yaml:"p90"`
	P95         time.Duration `json:"p95" yaml:"p95"`
	P99         time.Duration `json:"p99" yaml:"p99"`
	StatusCodes map[int]int64 `json:"statusCodes,omitempty" yaml:"statusCodes,omitempty"`
	Elapsed     time.Duration `json:"elapsed" yaml:"elapsed"`
}

// NewRecorder creates an empty recorder. The elapsed clock starts now.
func NewRecorder() *Recorder {
	return &Recorder{
		hist:        hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		statusCodes: make(map[int]int64),
		startTime:   time.Now(),
	}
}

// Record records a completed request. Status codes of 400 and above count
// as failures.
func (r *Recorder) Record(duration time.Duration, statusCode int, bytes int64) {
	r.recordLatency(duration)

	r.statusCodesMu.Lock()
	r.statusCodes[statusCode]++
	r.statusCodesMu.Unlock()

	r.bytes.Add(bytes)
	if statusCode >= 200 && statusCode < 400 {
		r.success.Add(1)
	} else {
		r.failed.Add(1)
	}
}

// RecordFailure records a request that produced no response.
func (r *Recorder) RecordFailure(duration time.Duration) {
	r.recordLatency(duration)
	r.failed.Add(1)
}

func (r *Recorder) recordLatency(duration time.Duration) {
	latencyMicros := duration.Microseconds()
	if latencyMicros < histogramMin {
		latencyMicros = histogramMin
	}
	if latencyMicros > histogramMax {
		latencyMicros = histogramMax
	}

	// RecordValue is not thread-safe.
	r.histMu.Lock()
	_ = r.hist.RecordValue(latencyMicros)
	r.histMu.Unlock()

	r.total.Add(1)
}

// Summary returns the aggregated statistics.
func (r *Recorder) Summary() Summary {
	r.histMu.Lock()
	summary := Summary{
		Count:  r.total.Load(),
		Min:    time.Duration(r.hist.Min()) * time.Microsecond,
		Max:    time.Duration(r.hist.Max()) * time.Microsecond,
		Mean:   time.Duration(r.hist.Mean()) * time.Microsecond,
		StdDev: time.Duration(r.hist.StdDev()) * time.Microsecond,
		P50:    time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond,
		P90:    time.Duration(r.hist.ValueAtQuantile(90)) * time.Microsecond,
		P95:    time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:    time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond,
	}
	r.histMu.Unlock()

	summary.Success = r.success.Load()
	summary.Failed = r.failed.Load()
	summary.Bytes = r.bytes.Load()
	summary.Elapsed = time.Since(r.startTime)

	r.statusCodesMu.Lock()
	if len(r.statusCodes) > 0 {
		summary.StatusCodes = make(map[int]int64, len(r.statusCodes))
		for code, count := range r.statusCodes {
			summary.StatusCodes[code] = count
		}
	}
	r.statusCodesMu.Unlock()

	return summary
}

// RequestsPerSecond returns the throughput over the elapsed time.
func (s Summary) RequestsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Count) / s.Elapsed.Seconds()
}

// SortedStatusCodes returns the observed status codes in ascending order.
func (s Summary) SortedStatusCodes() []int {
	codes := make([]int, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
