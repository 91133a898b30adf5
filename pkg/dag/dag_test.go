package dag

import (
	"errors"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
	n, ok := g.Node("a")
	if !ok || n.Meta == nil {
		t.Error("node meta should be initialized")
	}
}

func TestAddEdgeUnknown(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge = %v, want ErrUnknownTargetNode", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func(*DAG)
		want  error
	}{
		{
			name: "valid",
			build: func(g *DAG) {
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
			},
		},
		{
			name: "skips a row",
			build: func(g *DAG) {
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 2})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
			},
			want: ErrNonConsecutiveRows,
		},
		{
			name: "cycle",
			build: func(g *DAG) {
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
				_ = g.AddEdge(Edge{From: "b", To: "a"})
			},
			want: ErrNonConsecutiveRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			tt.build(g)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectCycles(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "a"})
	if err := g.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("detectCycles() = %v, want ErrGraphHasCycle", err)
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"z", "a", "m"} {
		_ = g.AddNode(Node{ID: id, Row: 1})
	}
	var got []string
	for _, n := range g.NodesInRow(1) {
		got = append(got, n.ID)
	}
	if len(got) != 3 || got[0] != "z" || got[1] != "a" || got[2] != "m" {
		t.Errorf("NodesInRow(1) = %v, want [z a m]", got)
	}
	if s := g.Sources(); len(s) != 3 {
		t.Errorf("Sources() = %d nodes, want 3", len(s))
	}
}
