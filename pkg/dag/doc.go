// Package dag provides a small directed acyclic graph with row-assigned
// nodes, used to describe how a distribution relates to its requirements
// and the packages it ships.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "PEAK-Rules", Row: 0, Kind: dag.NodeKindDistribution})
//	g.AddNode(dag.Node{ID: "req:decoratortools", Label: "DecoratorTools", Row: 1, Kind: dag.NodeKindRequirement})
//	g.AddEdge(dag.Edge{From: "PEAK-Rules", To: "req:decoratortools", Meta: dag.Metadata{"constraint": ">=1.0"}})
//
// Nodes and edges keep insertion order, so renderings are deterministic.
// [DAG.Validate] checks that edges only connect consecutive rows and that
// there is no cycle.
//
// DAG instances are not safe for concurrent use.
package dag
