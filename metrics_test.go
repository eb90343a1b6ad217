package baileys

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsCountersIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricMessagesReceived)
	m.Inc(MetricMessagesReceived)
	m.Inc(MetricAutoReplies)

	if got := m.Value(MetricMessagesReceived); got != 2 {
		t.Fatalf("MetricMessagesReceived = %d, want 2", got)
	}
	if got := m.Value(MetricAutoReplies); got != 1 {
		t.Fatalf("MetricAutoReplies = %d, want 1", got)
	}
	if got := m.Value(MetricSessionRestarts); got != 0 {
		t.Fatalf("MetricSessionRestarts = %d, want 0", got)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricMessagesReceived)
	m.Observe(MetricDispatchLatency, time.Millisecond)

	if got := m.Value(MetricMessagesReceived); got != 0 {
		t.Fatalf("disabled counter = %d, want 0", got)
	}

	s := m.Snapshot()
	if len(s.Counters) != 0 || len(s.Histograms) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", s)
	}
}

func TestMetricsNilIsSafe(t *testing.T) {
	var m *Metrics

	m.Inc(MetricMessagesReceived)
	m.Observe(MetricDispatchLatency, time.Millisecond)
	if m.Enabled() {
		t.Fatal("nil Metrics reports enabled")
	}
	if got := m.Value(MetricMessagesReceived); got != 0 {
		t.Fatalf("nil Value = %d, want 0", got)
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricDispatchLatency, 2*time.Millisecond)   // (0, 5ms] -> bucket 0
	m.Observe(MetricDispatchLatency, 30*time.Millisecond)  // (25ms, 50ms] -> bucket 3
	m.Observe(MetricDispatchLatency, 900*time.Millisecond) // overflow -> bucket 7

	buckets := m.Snapshot().Histograms[MetricDispatchLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("histogram has %d buckets, want %d", len(buckets), histBucketCount)
	}
	if buckets[0] != 1 || buckets[3] != 1 || buckets[7] != 1 {
		t.Fatalf("unexpected bucket distribution: %v", buckets)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricRetryIncrements)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricRetryIncrements); got != workers*perWorker {
		t.Fatalf("MetricRetryIncrements = %d, want %d", got, workers*perWorker)
	}
}
