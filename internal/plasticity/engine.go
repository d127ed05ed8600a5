// Package plasticity implements heuristic, usage-driven adaptation of a
// circuit's topology: pruning weak edges, strengthening hot ones, building
// redundant pathways, rewiring around failed nodes, and scoring network
// health. The engine observes and mutates one Circuit; it never owns the
// nodes and runs only when explicitly invoked.
package plasticity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nvandessel/synaptic/internal/circuit"
	"github.com/nvandessel/synaptic/internal/logging"
	"github.com/nvandessel/synaptic/internal/trace"
)

// Config holds tunable parameters for the plasticity engine.
type Config struct {
	// PruningThreshold is the weight below which an edge is considered
	// weak and removed by PruneWeakConnections. Default: 0.1.
	PruningThreshold float64

	// StrengthenRate is the weight increment applied to hot edges by
	// StrengthenHotPaths. Default: 0.1.
	StrengthenRate float64

	// WeakenRate is reserved for a future depression pass. It is carried in
	// the configuration surface but not read anywhere yet.
	WeakenRate float64

	// MaxRedundantPaths is reserved; CreateRedundantPath takes its count
	// per call.
	MaxRedundantPaths int

	// MetricsCap bounds the engine's per-edge metrics map. When the cap is
	// exceeded the least recently touched entries are evicted. Default: 1024.
	MetricsCap int

	// PathwayCap bounds the pathway usage map the same way. Default: 1024.
	PathwayCap int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		PruningThreshold:  0.1,
		StrengthenRate:    0.1,
		WeakenRate:        0.05,
		MaxRedundantPaths: 3,
		MetricsCap:        1024,
		PathwayCap:        1024,
	}
}

const (
	// hotUsageThreshold is the engine-observed usage count above which an
	// edge is strengthened.
	hotUsageThreshold = 3

	// maxSearchDepth bounds the depth-first path search.
	maxSearchDepth = 5

	// bypassDecay models information loss through a bypass edge created by
	// rewiring: weight = in.weight * out.weight * bypassDecay.
	bypassDecay = 0.7

	// compensationFactor scales redirected edge weights during homologous
	// compensation.
	compensationFactor = 0.8

	// syntheticPathWeight is the weight of direct edges synthesized to fill
	// a redundant path shortfall.
	syntheticPathWeight = 0.5

	// latencySampleCap bounds the rolling latency window per edge.
	latencySampleCap = 32
)

// ConnectionMetrics is the engine's own view of an edge's activity. It is
// deliberately distinct from the edge-local usage counter: the edge counts
// physical transmissions, the engine counts what it has been told about.
type ConnectionMetrics struct {
	UsageCount int
	LastUsed   time.Time
	Failures   int
	Latencies  []time.Duration
}

// PathwayStats aggregates usage of a multi-hop path.
type PathwayStats struct {
	Path           []string
	UsageCount     int
	AverageLatency time.Duration
	Reliability    float64
}

// Statistics is the read-only counter snapshot exposed to monitoring.
// Counters are monotonic except TotalConnections, which reflects live
// graph state.
type Statistics struct {
	TotalConnections  int `json:"total_connections"`
	ActivePathways    int `json:"active_pathways"`
	PrunedConnections int `json:"pruned_connections"`
	RewiresPerformed  int `json:"rewires_performed"`
	FailoversExecuted int `json:"failovers_executed"`
}

type connEntry struct {
	metrics ConnectionMetrics
	touched time.Time
}

type pathwayEntry struct {
	stats   PathwayStats
	touched time.Time
}

// Engine observes and mutates one circuit. All engine state is guarded by a
// single mutex; optimization passes are expected to be serialized relative
// to bursty traffic by the caller.
type Engine struct {
	mu      sync.Mutex
	circuit *circuit.Circuit
	cfg     Config

	logger    *slog.Logger
	decisions *logging.DecisionLogger
	journal   trace.Sink

	conn       map[string]*connEntry
	pathways   map[string]*pathwayEntry
	primary    map[string][]string
	redundant  map[string][][]string
	homologous map[string]string

	prunedCount   int
	rewireCount   int
	failoverCount int
}

// NewEngine creates a plasticity engine bound to the given circuit. Zero
// config fields are filled with defaults.
func NewEngine(c *circuit.Circuit, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.PruningThreshold == 0 {
		cfg.PruningThreshold = def.PruningThreshold
	}
	if cfg.StrengthenRate == 0 {
		cfg.StrengthenRate = def.StrengthenRate
	}
	if cfg.MetricsCap == 0 {
		cfg.MetricsCap = def.MetricsCap
	}
	if cfg.PathwayCap == 0 {
		cfg.PathwayCap = def.PathwayCap
	}

	return &Engine{
		circuit:    c,
		cfg:        cfg,
		logger:     logging.Discard(),
		conn:       make(map[string]*connEntry),
		pathways:   make(map[string]*pathwayEntry),
		primary:    make(map[string][]string),
		redundant:  make(map[string][][]string),
		homologous: make(map[string]string),
	}
}

// SetLogger attaches an operational logger. Nil restores the discard logger.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.Discard()
	}
	e.logger = l
}

// SetDecisionLogger attaches a JSONL decision trace. Nil is allowed; the
// decision logger is nil-safe.
func (e *Engine) SetDecisionLogger(dl *logging.DecisionLogger) {
	e.decisions = dl
}

// SetJournal attaches a telemetry sink for topology mutations.
func (e *Engine) SetJournal(s trace.Sink) {
	e.journal = s
}

// pathKey builds the "source->target" map key used for pathway bookkeeping.
func pathKey(source, target string) string {
	return source + "->" + target
}

// touchConn returns the metrics entry for an edge, creating it if needed and
// evicting the least recently touched entry when over the cap.
func (e *Engine) touchConn(edgeID string) *connEntry {
	entry, ok := e.conn[edgeID]
	if !ok {
		if len(e.conn) >= e.cfg.MetricsCap {
			evictOldestConn(e.conn)
		}
		entry = &connEntry{}
		e.conn[edgeID] = entry
	}
	entry.touched = time.Now()
	return entry
}

func evictOldestConn(m map[string]*connEntry) {
	var oldestKey string
	var oldest time.Time
	for k, v := range m {
		if oldestKey == "" || v.touched.Before(oldest) {
			oldestKey = k
			oldest = v.touched
		}
	}
	if oldestKey != "" {
		delete(m, oldestKey)
	}
}

func evictOldestPathway(m map[string]*pathwayEntry) {
	var oldestKey string
	var oldest time.Time
	for k, v := range m {
		if oldestKey == "" || v.touched.Before(oldest) {
			oldestKey = k
			oldest = v.touched
		}
	}
	if oldestKey != "" {
		delete(m, oldestKey)
	}
}

// RecordConnectionUsage increments the engine-local usage counter for an
// edge. This counter drives StrengthenHotPaths and is independent of the
// edge's own transmission count.
func (e *Engine) RecordConnectionUsage(edgeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := e.touchConn(edgeID)
	entry.metrics.UsageCount++
	entry.metrics.LastUsed = time.Now()
}

// RecordTransmission records a full transmission observation: usage, latency
// sample, and failure flag.
func (e *Engine) RecordTransmission(edgeID string, latency time.Duration, failed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := e.touchConn(edgeID)
	entry.metrics.UsageCount++
	entry.metrics.LastUsed = time.Now()
	if failed {
		entry.metrics.Failures++
	}
	entry.metrics.Latencies = append(entry.metrics.Latencies, latency)
	if len(entry.metrics.Latencies) > latencySampleCap {
		entry.metrics.Latencies = entry.metrics.Latencies[1:]
	}
}

// RecordPathwayUsage records one traversal of a multi-hop path, folding the
// observed latency into a running average and the success into reliability.
func (e *Engine) RecordPathwayUsage(path []string, latency time.Duration, ok bool) {
	if len(path) < 2 {
		return
	}
	key := joinPath(path)

	e.mu.Lock()
	defer e.mu.Unlock()

	entry, exists := e.pathways[key]
	if !exists {
		if len(e.pathways) >= e.cfg.PathwayCap {
			evictOldestPathway(e.pathways)
		}
		entry = &pathwayEntry{stats: PathwayStats{Path: append([]string(nil), path...)}}
		e.pathways[key] = entry
	}
	entry.touched = time.Now()

	s := &entry.stats
	prevCount := s.UsageCount
	s.UsageCount++
	s.AverageLatency = time.Duration(
		(int64(s.AverageLatency)*int64(prevCount) + int64(latency)) / int64(s.UsageCount))
	success := 0.0
	if ok {
		success = 1.0
	}
	s.Reliability = (s.Reliability*float64(prevCount) + success) / float64(s.UsageCount)
}

// ConnectionMetricsFor returns a copy of the engine's metrics for an edge.
func (e *Engine) ConnectionMetricsFor(edgeID string) (ConnectionMetrics, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.conn[edgeID]
	if !ok {
		return ConnectionMetrics{}, false
	}
	m := entry.metrics
	m.Latencies = append([]time.Duration(nil), entry.metrics.Latencies...)
	return m, true
}

// PathwayStatsFor returns a copy of the usage stats for a path.
func (e *Engine) PathwayStatsFor(path []string) (PathwayStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.pathways[joinPath(path)]
	if !ok {
		return PathwayStats{}, false
	}
	s := entry.stats
	s.Path = append([]string(nil), entry.stats.Path...)
	return s, true
}

func joinPath(path []string) string {
	key := ""
	for i, id := range path {
		if i > 0 {
			key += "->"
		}
		key += id
	}
	return key
}

// decision emits one plasticity decision to the operational log, the
// decision trace, and the journal.
func (e *Engine) decision(kind string, fields map[string]any) {
	args := make([]any, 0, len(fields)*2)
	ev := trace.Event{Kind: kind, Detail: map[string]any{}}
	for k, v := range fields {
		args = append(args, k, v)
		switch k {
		case "node":
			ev.NodeID, _ = v.(string)
		case "edge":
			ev.EdgeID, _ = v.(string)
		default:
			ev.Detail[k] = v
		}
	}
	e.logger.Debug("plasticity: "+kind, args...)

	event := map[string]any{"decision": kind}
	for k, v := range fields {
		event[k] = v
	}
	e.decisions.Log(event)

	if e.journal != nil {
		// Journal failures must never disturb an optimization pass.
		_ = e.journal.Record(context.Background(), ev)
	}
}
