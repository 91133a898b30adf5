// Package nodelink renders distribution graphs as node-link diagrams.
//
// # Usage
//
// Convert a DAG to DOT format, then render to SVG or PNG:
//
//	g := descriptor.Graph(d)
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The distribution is drawn at the top, requirements as ellipses labelled
// with their version constraint, packages as folders (namespace packages
// dashed) nested below their parents.
//
// Rendering runs Graphviz in-process through [github.com/goccy/go-graphviz];
// no external binaries are needed.
package nodelink
