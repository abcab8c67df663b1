package services

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"slam-backend/models"
)

var (
	boundaryColor = color.RGBA{R: 16, G: 185, B: 129, A: 255}
	pathColor     = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	agentColor    = color.RGBA{R: 251, G: 191, B: 36, A: 255}
)

// RenderPathPNG - boundary outline, path polyline and agent marker as a PNG.
// The y axis is inverted to match canvas coordinates.
func RenderPathPNG(b models.Boundary, path []models.Waypoint, agent *models.AgentPosition, width, height vg.Length) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("coverage path (%d points)", len(path))
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}

	pad := 20.0
	p.X.Min, p.X.Max = b.X-pad, b.Right()+pad
	p.Y.Min, p.Y.Max = b.Y-pad, b.Bottom()+pad

	outline := plotter.XYs{
		{X: b.X, Y: b.Y},
		{X: b.Right(), Y: b.Y},
		{X: b.Right(), Y: b.Bottom()},
		{X: b.X, Y: b.Bottom()},
		{X: b.X, Y: b.Y},
	}
	boundaryLine, err := plotter.NewLine(outline)
	if err != nil {
		return nil, fmt.Errorf("boundary line: %w", err)
	}
	boundaryLine.Color = boundaryColor
	boundaryLine.Width = vg.Points(1.5)
	boundaryLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(boundaryLine)

	if len(path) > 0 {
		pts := make(plotter.XYs, len(path))
		for i, w := range path {
			pts[i] = plotter.XY{X: w.X, Y: w.Y}
		}
		pathLine, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("path line: %w", err)
		}
		pathLine.Color = pathColor
		pathLine.Width = vg.Points(1)
		p.Add(pathLine)
	}

	if agent != nil {
		marker, err := plotter.NewScatter(plotter.XYs{{X: agent.X, Y: agent.Y}})
		if err != nil {
			return nil, fmt.Errorf("agent marker: %w", err)
		}
		marker.GlyphStyle.Color = agentColor
		marker.GlyphStyle.Radius = vg.Points(4)
		p.Add(marker)
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}
