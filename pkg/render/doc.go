// Package render holds the output renderers for distribution graphs.
//
// The [nodelink] subpackage produces Graphviz DOT, SVG and PNG diagrams.
//
// [nodelink]: github.com/matzehuels/distmeta/pkg/render/nodelink
package render
