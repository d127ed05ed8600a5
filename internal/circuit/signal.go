// Package circuit implements the signal propagation core: stateful
// threshold-gated processing nodes, weighted directed edges between them,
// and the container that owns the topology. Signals carry a strength in
// [0, 1] and an opaque payload; nodes accumulate queued signals and fire
// when the excitatory surplus reaches their threshold.
package circuit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SignalType distinguishes signals that raise a node's accumulated input
// from signals that lower it.
type SignalType string

const (
	SignalExcitatory SignalType = "excitatory"
	SignalInhibitory SignalType = "inhibitory"
)

// PayloadKind tags the variant carried by a Payload.
type PayloadKind string

const (
	// PayloadNone marks a signal that carries no payload at all.
	PayloadNone PayloadKind = "none"
	// PayloadText carries a plain string in Text.
	PayloadText PayloadKind = "text"
	// PayloadFields carries structured key-value data in Fields.
	PayloadFields PayloadKind = "fields"
	// PayloadRaw carries opaque bytes in Raw.
	PayloadRaw PayloadKind = "raw"
)

// Payload is a tagged union for signal content. Exactly one of Text, Fields,
// or Raw is populated, selected by Kind. The core never interprets payload
// content; it only validates the tag at the boundary.
type Payload struct {
	Kind   PayloadKind    `json:"kind"`
	Text   string         `json:"text,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
	Raw    []byte         `json:"raw,omitempty"`
}

// Validate checks that the populated variant matches the tag.
func (p Payload) Validate() error {
	switch p.Kind {
	case PayloadNone, "":
		if p.Text != "" || p.Fields != nil || p.Raw != nil {
			return fmt.Errorf("payload kind %q must not carry content", PayloadNone)
		}
	case PayloadText:
		if p.Fields != nil || p.Raw != nil {
			return fmt.Errorf("payload kind %q carries non-text content", p.Kind)
		}
	case PayloadFields:
		if p.Text != "" || p.Raw != nil {
			return fmt.Errorf("payload kind %q carries non-field content", p.Kind)
		}
	case PayloadRaw:
		if p.Text != "" || p.Fields != nil {
			return fmt.Errorf("payload kind %q carries non-raw content", p.Kind)
		}
	default:
		return fmt.Errorf("unknown payload kind %q", p.Kind)
	}
	return nil
}

// Signal is an event routed between nodes. Strength is always in [0, 1];
// construction validates it once and transmission re-clamps after weight
// amplification.
type Signal struct {
	ID        string     `json:"id"`
	SourceID  string     `json:"source_id"`
	Type      SignalType `json:"type"`
	Strength  float64    `json:"strength"`
	Payload   Payload    `json:"payload"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewSignal builds a signal with a generated ID and the current timestamp.
// Strength outside [0, 1], an unknown type, or an inconsistent payload is a
// ConfigurationError.
func NewSignal(sourceID string, typ SignalType, strength float64, payload Payload) (Signal, error) {
	if strength < 0 || strength > 1 {
		return Signal{}, &ConfigurationError{Field: "signal strength", Value: strength, Reason: "must be in [0, 1]"}
	}
	switch typ {
	case SignalExcitatory, SignalInhibitory:
	default:
		return Signal{}, &ConfigurationError{Field: "signal type", Value: 0, Reason: fmt.Sprintf("unknown type %q", typ)}
	}
	if err := payload.Validate(); err != nil {
		return Signal{}, fmt.Errorf("invalid payload: %w", err)
	}
	if payload.Kind == "" {
		payload.Kind = PayloadNone
	}
	return Signal{
		ID:        uuid.New().String(),
		SourceID:  sourceID,
		Type:      typ,
		Strength:  strength,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}, nil
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
