package plasticity

import (
	"context"
	"math"
	"testing"

	"github.com/nvandessel/synaptic/internal/circuit"
)

func TestDetectFailedNeurons(t *testing.T) {
	c := newTestCircuit(t, []string{"a", "b", "c"}, nil)
	eng := NewEngine(c, DefaultConfig())

	if down := eng.DetectFailedNeurons(); len(down) != 0 {
		t.Fatalf("healthy circuit reports %v as down", down)
	}

	c.Node("b").Deactivate()
	c.Node("c").Deactivate()

	down := eng.DetectFailedNeurons()
	if len(down) != 2 || down[0] != "b" || down[1] != "c" {
		t.Errorf("down = %v, want [b c]", down)
	}
}

func TestRewireAroundFailure(t *testing.T) {
	ctx := context.Background()
	c := newTestCircuit(t, []string{"a", "b", "c"}, map[string]float64{
		"a->b": 0.8,
		"b->c": 0.8,
	})
	eng := NewEngine(c, DefaultConfig())

	c.Node("b").Deactivate()

	created, err := eng.RewireAroundFailure(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if created != 1 {
		t.Fatalf("created %d bypasses, want 1", created)
	}

	bypass := c.Connection("a->c")
	if bypass == nil {
		t.Fatal("bypass a->c not created")
	}
	// 0.8 * 0.8 * 0.7 = 0.448.
	if got := bypass.Weight(); math.Abs(got-0.448) > 1e-9 {
		t.Errorf("bypass weight = %f, want 0.448", got)
	}
	if got := bypass.Protocol(); got != "bypass" {
		t.Errorf("protocol = %q, want bypass", got)
	}

	// The original edges around the failure are left in place.
	if c.Connection("a->b") == nil || c.Connection("b->c") == nil {
		t.Error("rewiring should not remove the original edges")
	}

	if got := eng.GetStatistics().RewiresPerformed; got != 1 {
		t.Errorf("RewiresPerformed = %d, want 1", got)
	}
}

func TestRewireIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newTestCircuit(t, []string{"a", "b", "c"}, map[string]float64{
		"a->b": 0.8,
		"b->c": 0.8,
	})
	eng := NewEngine(c, DefaultConfig())

	if _, err := eng.RewireAroundFailure(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	created, err := eng.RewireAroundFailure(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if created != 0 {
		t.Errorf("second rewire created %d bypasses, want 0", created)
	}
	if got := c.ConnectionCount(); got != 3 {
		t.Errorf("ConnectionCount = %d, want 3", got)
	}
}

func TestRewireSkipsSelfLoops(t *testing.T) {
	ctx := context.Background()
	c := newTestCircuit(t, []string{"a", "b"}, map[string]float64{
		"a->b": 0.8,
		"b->a": 0.8,
	})
	eng := NewEngine(c, DefaultConfig())

	// The only (in.source, out.target) pair for b is (a, a).
	created, err := eng.RewireAroundFailure(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if created != 0 {
		t.Errorf("created %d bypasses, want 0 (self-loop skipped)", created)
	}
}

func TestRewireFanOut(t *testing.T) {
	ctx := context.Background()
	c := newTestCircuit(t, []string{"x", "y", "hub", "p", "q"}, map[string]float64{
		"x->hub": 0.5,
		"y->hub": 0.5,
		"hub->p": 0.5,
		"hub->q": 0.5,
	})
	eng := NewEngine(c, DefaultConfig())

	created, err := eng.RewireAroundFailure(ctx, "hub")
	if err != nil {
		t.Fatal(err)
	}
	// 2 inputs x 2 outputs.
	if created != 4 {
		t.Errorf("created %d bypasses, want 4", created)
	}
	for _, key := range []string{"x->p", "x->q", "y->p", "y->q"} {
		if c.Connection(key) == nil {
			t.Errorf("bypass %s missing", key)
		}
	}
}

func TestRewireUnknownNode(t *testing.T) {
	c := newTestCircuit(t, []string{"a"}, nil)
	eng := NewEngine(c, DefaultConfig())

	if _, err := eng.RewireAroundFailure(context.Background(), "ghost"); err == nil {
		t.Error("rewiring around an unknown node should fail")
	}
}

func TestRewireInheritsEdgeCharacter(t *testing.T) {
	ctx := context.Background()
	c := newTestCircuit(t, []string{"a", "b", "c"}, nil)
	if _, err := c.Connect("a", "b", circuit.EdgeConfig{
		Weight: 0.8, Type: circuit.EdgeInhibitory, Speed: circuit.SpeedSlow,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Connect("b", "c", circuit.EdgeConfig{Weight: 0.8}); err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(c, DefaultConfig())

	if _, err := eng.RewireAroundFailure(ctx, "b"); err != nil {
		t.Fatal(err)
	}

	bypass := c.Connection("a->c")
	if bypass == nil {
		t.Fatal("bypass missing")
	}
	// The bypass takes its character from the incoming edge.
	if bypass.Type() != circuit.EdgeInhibitory {
		t.Errorf("bypass type = %s, want inhibitory", bypass.Type())
	}
	if bypass.Speed() != circuit.SpeedSlow {
		t.Errorf("bypass speed = %s, want slow", bypass.Speed())
	}
}
