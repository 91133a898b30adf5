package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/matzehuels/distmeta/pkg/descriptor"
	"github.com/matzehuels/distmeta/pkg/render/nodelink"
)

// Render writes d in every format of opts.Formats. The graph formats share a
// single DOT document.
func Render(ctx context.Context, d *descriptor.Descriptor, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	graphDOT := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(descriptor.Graph(d), nodelink.Options{Detailed: opts.Detailed})
		}
		return dot
	}

	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = encode(d, descriptor.WriteJSON)
		case FormatYAML:
			data, err = encode(d, descriptor.WriteYAML)
		case FormatPKGInfo:
			data, err = encode(d, descriptor.WritePKGInfo)
		case FormatDOT:
			data = []byte(graphDOT())
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, graphDOT())
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, graphDOT())
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func encode(d *descriptor.Descriptor, write func(io.Writer, *descriptor.Descriptor) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
