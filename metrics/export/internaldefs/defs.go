package internaldefs

import (
	baileys "github.com/LeonWang2006/Baileys"
)

// CounterDef binds one internal counter to its exported metric name.
type CounterDef struct {
	ID   baileys.MetricID
	Name string
	Help string
}

// HistogramDef binds one internal histogram to its exported metric name.
type HistogramDef struct {
	ID   baileys.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: baileys.MetricConnectionOpened, Name: "baileys_connection_opened_total", Help: "Connections reaching the open state."},
	{ID: baileys.MetricConnectionClosed, Name: "baileys_connection_closed_total", Help: "Connection close events."},
	{ID: baileys.MetricSessionRestarts, Name: "baileys_session_restarts_total", Help: "Session restarts after recoverable closes."},
	{ID: baileys.MetricLoggedOut, Name: "baileys_logged_out_total", Help: "Terminal logged-out closes."},
	{ID: baileys.MetricMessagesReceived, Name: "baileys_messages_received_total", Help: "Messages delivered in upsert batches."},
	{ID: baileys.MetricAutoReplies, Name: "baileys_auto_replies_total", Help: "Completed auto-reply choreographies."},
	{ID: baileys.MetricPairingCodesIssued, Name: "baileys_pairing_codes_issued_total", Help: "Pairing codes requested and cached."},
	{ID: baileys.MetricCredsSaved, Name: "baileys_creds_saved_total", Help: "Credential persists driven by credential updates."},
	{ID: baileys.MetricRetryIncrements, Name: "baileys_retry_increments_total", Help: "Message retry-counter bumps."},
	{ID: baileys.MetricHandlerFailures, Name: "baileys_handler_failures_total", Help: "Contained per-event handler failures."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: baileys.MetricDispatchLatency, Name: "baileys_dispatch_latency_seconds", Help: "Event dispatch latency histogram."},
}

// HistogramBounds are the upper bounds of the latency buckets in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bucket bounds as metric-name-safe suffixes,
// position-aligned with HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed bucket
// count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into a cumulative
// distribution, so the last bucket carries the total sample count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
