// Package chainmap renders the ware dependency graph as an image: graphviz
// lays it out, and sixel output puts it straight into capable terminals.
package chainmap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/BourgeoisBear/rasterm"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	sixel "github.com/mattn/go-sixel"
	xdraw "golang.org/x/image/draw"

	"github.com/Zillatron27/x4-production-analyzer/internal/analysis"
	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// Renderer draws one report's dependency chain.
type Renderer struct {
	report *analysis.Report
	chain  *analysis.DependencyChain
}

func NewRenderer(report *analysis.Report, chain *analysis.DependencyChain) *Renderer {
	return &Renderer{report: report, chain: chain}
}

func fillColor(s analysis.Status) string {
	switch s {
	case analysis.StatusSurplus:
		return "#d4c24a"
	case analysis.StatusBalanced:
		return "#4aa44a"
	case analysis.StatusShortage:
		return "#cc4444"
	case analysis.StatusNoDemand:
		return "#999999"
	default:
		return "#77444f"
	}
}

// RenderPNG lays the chain out with dot and returns the PNG bytes.
func (r *Renderer) RenderPNG(ctx context.Context) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating graphviz instance: %w", err)
	}
	defer gv.Close()

	g, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("creating graph: %w", err)
	}
	defer g.Close()

	g.SetLayout("dot")
	g.SetRankDir(cgraph.LRRank)
	g.SetBackgroundColor("#101018")

	nodes := make(map[string]*cgraph.Node)
	for _, wb := range r.report.SortedWares() {
		node, err := g.CreateNodeByName(string(wb.Ware))
		if err != nil {
			continue
		}
		node.SetLabel(fmt.Sprintf("%s\n+%.0f / -%.0f", wb.Name, wb.Production, wb.Consumption))
		node.SetShape("box")
		node.SetStyle("filled,rounded")
		node.SetFillColor(fillColor(wb.Status))
		node.SetFontColor("black")
		node.SetFontSize(12.0)
		nodes[string(wb.Ware)] = node
	}

	adj, err := r.chain.Graph().AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("reading adjacency map: %w", err)
	}
	for source, targets := range adj {
		src, ok := nodes[source]
		if !ok {
			continue
		}
		for target := range targets {
			dst, ok := nodes[target]
			if !ok {
				continue
			}
			edge, err := g.CreateEdgeByName("", src, dst)
			if err != nil {
				continue
			}
			edge.SetColor("#cccccc")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chain map: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePNGFile renders and saves the chain map.
func (r *Renderer) WritePNGFile(ctx context.Context, path string) error {
	data, err := r.RenderPNG(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Info("Chain map written", "path", path)
	return nil
}

// PrintSixel renders the chain map into a sixel escape sequence on w,
// scaled down to maxWidth pixels when the layout comes out wider.
func (r *Renderer) PrintSixel(ctx context.Context, w io.Writer, maxWidth int) error {
	data, err := r.RenderPNG(ctx)
	if err != nil {
		return err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding chain map: %w", err)
	}
	img = scaleDown(img, maxWidth)

	// Sixel wants a paletted image; dither down from full color.
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)
	if err := rasterm.SixelWriteImage(w, paletted); err != nil {
		log.Warn("Sixel fast path failed, re-encoding", "error", err)
		return EncodeSixel(w, img)
	}
	return nil
}

// EncodeSixel writes any image as sixel without palette reduction; the
// encoder quantizes itself. Slower than the paletted path but it takes
// any image.
func EncodeSixel(w io.Writer, img image.Image) error {
	return sixel.NewEncoder(w).Encode(img)
}

func scaleDown(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}
	height := bounds.Dy() * maxWidth / bounds.Dx()
	scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Over, nil)
	return scaled
}
