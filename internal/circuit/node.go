package circuit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State is a node's lifecycle state.
type State string

const (
	StateInactive State = "inactive"
	StateActive   State = "active"
	StateFiring   State = "firing"
	StateFailed   State = "failed"
)

const (
	// queueFlushSize is the queue length that triggers an automatic
	// integrate-and-process pass. This is the only automatic flush trigger.
	queueFlushSize = 10

	// maxErrors is the error budget; once errorCount exceeds it the node is
	// demoted to failed and stays there until externally remediated.
	maxErrors = 10
)

// Processor is the injected processing behavior for a node. Implementations
// may fail; failures are captured by the node and never propagate to the
// caller of Process.
type Processor interface {
	Process(ctx context.Context, input any) (any, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, input any) (any, error)

func (f ProcessorFunc) Process(ctx context.Context, input any) (any, error) {
	return f(ctx, input)
}

// echoProcessor is the default hook: it returns its input unchanged.
type echoProcessor struct{}

func (echoProcessor) Process(ctx context.Context, input any) (any, error) {
	return input, nil
}

// Metrics counts a node's observable activity.
type Metrics struct {
	Received  int `json:"received"`
	Emitted   int `json:"emitted"`
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Integration is the result of accumulating a batch of signals against the
// node's threshold.
type Integration struct {
	ShouldFire  bool    `json:"should_fire"`
	Threshold   float64 `json:"threshold"`
	Accumulated float64 `json:"accumulated"`
	Reason      string  `json:"reason"`
}

// Output is the structured result of a processing pass. On failure Success
// is false and Err holds a ProcessingError; the error never escapes Process
// itself.
type Output struct {
	Data    any   `json:"data,omitempty"`
	Success bool  `json:"success"`
	Err     error `json:"-"`
}

// Health is a point-in-time read of a node's condition.
type Health struct {
	Healthy bool          `json:"healthy"`
	Uptime  time.Duration `json:"uptime"`
	Errors  int           `json:"errors"`
	Metrics Metrics       `json:"metrics"`
}

// Node is a stateful processing unit. All externally observable operations
// are guarded by a single mutex; callers may invoke them from any goroutine
// but each operation runs to completion before the next begins.
type Node struct {
	id        string
	threshold float64

	mu          sync.Mutex
	state       State
	queue       []Signal
	errorCount  int
	metrics     Metrics
	processor   Processor
	activatedAt time.Time
}

// NewNode creates an inactive node. A threshold outside [0, 1] is a
// ConfigurationError. A nil processor gets the default echo hook.
func NewNode(id string, threshold float64, proc Processor) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("node ID is required")
	}
	if threshold < 0 || threshold > 1 {
		return nil, &ConfigurationError{Field: "threshold", Value: threshold, Reason: "must be in [0, 1]"}
	}
	if proc == nil {
		proc = echoProcessor{}
	}
	return &Node{
		id:        id,
		threshold: threshold,
		state:     StateInactive,
		processor: proc,
	}, nil
}

// ID returns the node's immutable identifier.
func (n *Node) ID() string { return n.id }

// Threshold returns the firing threshold fixed at construction.
func (n *Node) Threshold() float64 { return n.threshold }

// State returns the current lifecycle state.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Activate transitions the node to active, clearing the signal queue and the
// error count. Activating an already active or firing node is a StateError.
func (n *Node) Activate() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateActive || n.state == StateFiring {
		return &StateError{NodeID: n.id, State: n.state, Op: "activate"}
	}
	n.state = StateActive
	n.queue = nil
	n.errorCount = 0
	n.activatedAt = time.Now()
	return nil
}

// Deactivate transitions the node to inactive and clears the queue. It
// always succeeds, from any state.
func (n *Node) Deactivate() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.state = StateInactive
	n.queue = nil
}

// Receive appends a signal to the inbound queue. The node must be active or
// firing. When the queue reaches ten signals, an integrate-and-process pass
// runs automatically as back-pressure.
func (n *Node) Receive(ctx context.Context, sig Signal) error {
	n.mu.Lock()
	if n.state != StateActive && n.state != StateFiring {
		st := n.state
		n.mu.Unlock()
		return &StateError{NodeID: n.id, State: st, Op: "receive"}
	}
	n.metrics.Received++
	n.queue = append(n.queue, sig)
	full := len(n.queue) >= queueFlushSize
	n.mu.Unlock()

	if full {
		n.Flush(ctx)
	}
	return nil
}

// QueueLen reports the number of queued signals awaiting integration.
func (n *Node) QueueLen() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

// Integrate accumulates a batch of signals against the threshold. The
// accumulated value is the excitatory sum minus the inhibitory sum, floored
// at zero; firing is inclusive at the threshold.
func (n *Node) Integrate(signals []Signal) Integration {
	var excitatory, inhibitory float64
	for _, sig := range signals {
		switch sig.Type {
		case SignalInhibitory:
			inhibitory += sig.Strength
		default:
			excitatory += sig.Strength
		}
	}

	accumulated := excitatory - inhibitory
	if accumulated < 0 {
		accumulated = 0
	}

	shouldFire := accumulated >= n.threshold
	reason := fmt.Sprintf("accumulated %.3f below threshold %.3f", accumulated, n.threshold)
	if shouldFire {
		reason = fmt.Sprintf("accumulated %.3f reached threshold %.3f", accumulated, n.threshold)
	}

	return Integration{
		ShouldFire:  shouldFire,
		Threshold:   n.threshold,
		Accumulated: accumulated,
		Reason:      reason,
	}
}

// Flush drains the queue, integrates the batch, and processes it when the
// integration says to fire. The queue is cleared whether or not the node
// fires. Returns the integration result and, if the node fired, the
// processing output.
func (n *Node) Flush(ctx context.Context) (Integration, *Output) {
	n.mu.Lock()
	batch := n.queue
	n.queue = nil
	n.mu.Unlock()

	integration := n.Integrate(batch)
	if !integration.ShouldFire {
		return integration, nil
	}

	out, err := n.Process(ctx, batch)
	if err != nil {
		// Lost the active state between drain and process; surface as a
		// failed output rather than dropping the result.
		out = Output{Success: false, Err: err}
	}
	return integration, &out
}

// Process runs the injected processing hook. The node must be active or
// firing (StateError otherwise). While the hook runs the node is firing; on
// success it reverts to active and the output carries the hook's data. A
// hook failure or panic is captured into the output and counted; once the
// error budget is exhausted the node is demoted to failed.
func (n *Node) Process(ctx context.Context, input any) (Output, error) {
	n.mu.Lock()
	if n.state != StateActive && n.state != StateFiring {
		st := n.state
		n.mu.Unlock()
		return Output{}, &StateError{NodeID: n.id, State: st, Op: "process"}
	}
	n.state = StateFiring
	proc := n.processor
	n.mu.Unlock()

	data, err := runProcessor(ctx, proc, input)

	n.mu.Lock()
	defer n.mu.Unlock()

	if err != nil {
		n.errorCount++
		n.metrics.Errors++
		if n.errorCount > maxErrors {
			n.state = StateFailed
		} else {
			n.state = StateActive
		}
		return Output{Success: false, Err: &ProcessingError{NodeID: n.id, Err: err}}, nil
	}

	n.metrics.Processed++
	n.state = StateActive
	return Output{Data: data, Success: true}, nil
}

// runProcessor invokes the hook, converting panics into errors so that no
// failure mode escapes Process.
func runProcessor(ctx context.Context, proc Processor, input any) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panicked: %v", r)
		}
	}()
	return proc.Process(ctx, input)
}

// Emit records an outbound signal. The node must be active or firing. The
// payload is not interpreted.
func (n *Node) Emit(sig Signal) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateActive && n.state != StateFiring {
		return &StateError{NodeID: n.id, State: n.state, Op: "emit"}
	}
	n.metrics.Emitted++
	return nil
}

// Transmit emits a signal and delivers it directly to the target, bypassing
// edge weighting. Rewiring and bypass logic use this node-to-node shortcut.
func (n *Node) Transmit(ctx context.Context, target *Node, sig Signal) error {
	if target == nil {
		return fmt.Errorf("node %s: transmit target is required", n.id)
	}
	if err := n.Emit(sig); err != nil {
		return err
	}
	return target.Receive(ctx, sig)
}

// ErrorCount returns the number of processing failures since activation.
func (n *Node) ErrorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.errorCount
}

// Metrics returns a copy of the node's activity counters.
func (n *Node) Metrics() Metrics {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.metrics
}

// HealthCheck is a pure read of the node's condition. A node is healthy when
// it has not failed and its error count is inside the budget.
func (n *Node) HealthCheck() Health {
	n.mu.Lock()
	defer n.mu.Unlock()

	var uptime time.Duration
	if !n.activatedAt.IsZero() && n.state != StateInactive {
		uptime = time.Since(n.activatedAt)
	}

	return Health{
		Healthy: n.state != StateFailed && n.errorCount < maxErrors,
		Uptime:  uptime,
		Errors:  n.errorCount,
		Metrics: n.metrics,
	}
}
