package circuit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EdgeType mirrors SignalType at the connection level: an inhibitory edge
// delivers inhibitory signals regardless of what entered it.
type EdgeType string

const (
	EdgeExcitatory EdgeType = "excitatory"
	EdgeInhibitory EdgeType = "inhibitory"
)

// Speed is an edge's latency class.
type Speed string

const (
	SpeedFast       Speed = "fast"
	SpeedMyelinated Speed = "myelinated"
	SpeedSlow       Speed = "slow"
)

// Latency returns the transmission delay for the speed class.
func (s Speed) Latency() time.Duration {
	switch s {
	case SpeedMyelinated:
		return time.Millisecond
	case SpeedSlow:
		return 10 * time.Millisecond
	default:
		return 0
	}
}

const (
	// weightStep is the long-term potentiation/depression increment.
	weightStep = 0.05

	// staleAfter is how long an edge may go unused before low-usage pruning
	// applies.
	staleAfter = 30 * 24 * time.Hour

	// idleAfter is how long an edge may go unused before Hebbian adaptation
	// weakens it.
	idleAfter = 7 * 24 * time.Hour

	// minUsageToKeep is the usage count below which a stale edge is pruned.
	minUsageToKeep = 5

	// hotUsage is the usage count above which Hebbian adaptation
	// auto-strengthens.
	hotUsage = 10
)

// EdgeConfig is the construction surface for an edge.
type EdgeConfig struct {
	Weight   float64
	Type     EdgeType
	Speed    Speed
	Protocol string
}

// Edge is a weighted directed connection between two nodes. It holds shared
// references to its endpoints; the owning Circuit controls their lifetime.
// The weight is re-clamped to [0, 1] after every mutation.
type Edge struct {
	id       string
	source   *Node
	target   *Node
	etype    EdgeType
	speed    Speed
	protocol string

	mu         sync.Mutex
	weight     float64
	usageCount int
	lastUsed   time.Time // zero means never used
}

// NewEdge creates an edge between two nodes. A weight outside [0, 1] is a
// ConfigurationError. Type defaults to excitatory and speed to fast.
func NewEdge(source, target *Node, cfg EdgeConfig) (*Edge, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("edge requires both endpoints")
	}
	if cfg.Weight < 0 || cfg.Weight > 1 {
		return nil, &ConfigurationError{Field: "weight", Value: cfg.Weight, Reason: "must be in [0, 1]"}
	}
	if cfg.Type == "" {
		cfg.Type = EdgeExcitatory
	}
	if cfg.Speed == "" {
		cfg.Speed = SpeedFast
	}
	return &Edge{
		id:       uuid.New().String(),
		source:   source,
		target:   target,
		etype:    cfg.Type,
		speed:    cfg.Speed,
		protocol: cfg.Protocol,
		weight:   cfg.Weight,
	}, nil
}

// ID returns the edge's identifier.
func (e *Edge) ID() string { return e.id }

// Source returns the edge's source node.
func (e *Edge) Source() *Node { return e.source }

// Target returns the edge's target node.
func (e *Edge) Target() *Node { return e.target }

// Type returns the edge type.
func (e *Edge) Type() EdgeType { return e.etype }

// Speed returns the latency class.
func (e *Edge) Speed() Speed { return e.speed }

// Protocol returns the free-form protocol tag.
func (e *Edge) Protocol() string { return e.protocol }

// Key returns the "source->target" lookup key.
func (e *Edge) Key() string { return e.source.ID() + "->" + e.target.ID() }

// Weight returns the current weight.
func (e *Edge) Weight() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.weight
}

// UsageCount returns the number of transmissions through this edge.
func (e *Edge) UsageCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usageCount
}

// LastUsed returns the time of the most recent transmission. ok is false if
// the edge has never been used.
func (e *Edge) LastUsed() (t time.Time, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed, !e.lastUsed.IsZero()
}

// Transmit amplifies the signal by the edge weight, waits out the speed
// class latency, and delivers to the target. The latency sleep honors
// context cancellation and is the only deliberate suspension point in the
// core; callers that fan out across edges run Transmit in its own goroutine.
func (e *Edge) Transmit(ctx context.Context, sig Signal) error {
	e.mu.Lock()
	e.usageCount++
	e.lastUsed = time.Now()
	amplified := clamp(sig.Strength*e.weight, 0, 1)
	e.mu.Unlock()

	if latency := e.speed.Latency(); latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	delivered := sig
	delivered.Strength = amplified
	if e.etype == EdgeInhibitory {
		delivered.Type = SignalInhibitory
	}
	return e.target.Receive(ctx, delivered)
}

// Strengthen raises the weight by one potentiation step, clamped to 1.
func (e *Edge) Strengthen() {
	e.AdjustWeight(weightStep)
}

// Weaken lowers the weight by one depression step, clamped to 0.
func (e *Edge) Weaken() {
	e.AdjustWeight(-weightStep)
}

// AdjustWeight applies an arbitrary delta, re-clamping to [0, 1].
func (e *Edge) AdjustWeight(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weight = clamp(e.weight+delta, 0, 1)
}

// Prune zeroes the weight, logically killing the edge. Physical removal from
// the topology is the Circuit's job.
func (e *Edge) Prune() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weight = 0
}

// ShouldPrune reports whether the edge is no longer viable as of now: never
// used, stale with low usage, or already zero-weight.
func (e *Edge) ShouldPrune(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lastUsed.IsZero() {
		return true
	}
	if now.Sub(e.lastUsed) > staleAfter && e.usageCount < minUsageToKeep {
		return true
	}
	return e.weight == 0
}

// AdaptWeight applies the Hebbian usage rule: heavily used edges strengthen
// on their own, idle edges weaken.
func (e *Edge) AdaptWeight(now time.Time) {
	e.mu.Lock()
	usage := e.usageCount
	idle := !e.lastUsed.IsZero() && now.Sub(e.lastUsed) > idleAfter
	e.mu.Unlock()

	if usage > hotUsage {
		e.Strengthen()
	} else if idle {
		e.Weaken()
	}
}
