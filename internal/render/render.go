// Package render turns a scene model into the vector drawing tree. Every
// position comes from the model's composed projector and shelf vector; the
// only arithmetic here is midpoints and fixed pixel offsets for text.
package render

import (
	"math"

	"github.com/climb-data/climb.report/internal/config"
	"github.com/climb-data/climb.report/internal/draw"
	"github.com/climb-data/climb.report/internal/geom"
	"github.com/climb-data/climb.report/internal/scene"
	"github.com/climb-data/climb.report/internal/style"
	"github.com/climb-data/climb.report/internal/units"
)

// Fixed pixel offsets for text placed around the projected geometry.
const (
	tickLen        = 4
	distLabelGap   = 14
	gradeLabelGap  = 27
	elevLabelGap   = 8
	legendSwatch   = 12
	legendRowGap   = 6
	legendColPad   = 6
	titleBaseline  = 28
	summaryPadding = 18
)

// Render emits the full frame for the model: platform, face, grid, ribbon,
// centerline, axes, legend and title, in painter's order.
func Render(m *scene.Model, cfg config.Config) *draw.Image {
	im := &draw.Image{
		W:          cfg.Canvas.Width,
		H:          cfg.Canvas.Height,
		Background: "#faf7f0",
	}

	addPlatform(im, m, cfg)
	addFace(im, m, cfg)
	addGrid(im, m, cfg)
	addRibbon(im, m, cfg)
	addCenterline(im, m, cfg)
	addDistanceAxis(im, m, cfg)
	addElevationAxis(im, m, cfg)
	addLegend(im, m, cfg)
	addTitle(im, m, cfg)

	return im
}

func shift(p geom.Point, v geom.Point) geom.Point {
	return geom.Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// addPlatform draws the shelf slab under the face and the start wall closing
// its left end across the depth band.
func addPlatform(im *draw.Image, m *scene.Model, cfg config.Config) {
	bfl := m.Project(0, 0, m.ZNear)   // base front left
	bfr := m.Project(m.W, 0, m.ZNear) // base front right
	bbl := m.Project(0, 0, m.ZFar)    // base back left

	im.Add(draw.Polygon{
		Pts:  []geom.Point{bfl, bfr, shift(bfr, m.Shelf), shift(bfl, m.Shelf)},
		Fill: cfg.Platform.FillColor,
	})
	im.Add(draw.Polygon{
		Pts:  []geom.Point{bfl, bbl, shift(bbl, m.Shelf), shift(bfl, m.Shelf)},
		Fill: cfg.Platform.WallColor,
	})
}

func addFace(im *draw.Image, m *scene.Model, cfg config.Config) {
	im.Add(draw.Polygon{
		Pts:         m.FaceOutline,
		Fill:        cfg.Face.FillColor,
		Stroke:      cfg.Face.StrokeColor,
		StrokeWidth: cfg.Face.StrokeWidth,
	})
}

func addGrid(im *draw.Image, m *scene.Model, cfg config.Config) {
	for _, gl := range m.GridLines {
		im.Add(draw.Line{
			A:           gl.A,
			B:           gl.B,
			Stroke:      cfg.Grid.LineColor,
			StrokeWidth: cfg.Grid.LineWidth,
		})
	}
}

func addRibbon(im *draw.Image, m *scene.Model, cfg config.Config) {
	for _, tile := range m.Ribbon {
		im.Add(draw.Polygon{
			Pts:         tile.Quad[:],
			Fill:        style.ColorForGrade(tile.Grade, cfg.Buckets),
			Stroke:      cfg.Face.StrokeColor,
			StrokeWidth: cfg.Face.StrokeWidth / 2,
		})
	}
}

func addCenterline(im *draw.Image, m *scene.Model, cfg config.Config) {
	if len(m.Centerline) < 2 {
		return
	}
	im.Add(draw.Polyline{
		Pts:         m.Centerline,
		Stroke:      cfg.Road.StrokeColor,
		StrokeWidth: cfg.Road.StrokeWidth,
		Dash:        cfg.Road.DashPattern,
	})
}

// addDistanceAxis draws ticks and labels along the platform's bottom edge,
// with the per-segment grade labels a row below.
func addDistanceAxis(im *draw.Image, m *scene.Model, cfg config.Config) {
	for _, tk := range m.DistTicks {
		base := shift(tk.Anchor, m.Shelf)
		im.Add(draw.Line{
			A:           base,
			B:           geom.Point{X: base.X, Y: base.Y + tickLen},
			Stroke:      cfg.Face.StrokeColor,
			StrokeWidth: cfg.Grid.LineWidth,
		})
		im.Add(draw.Text{
			At:     geom.Point{X: base.X, Y: base.Y + distLabelGap},
			S:      tk.Label,
			Size:   cfg.Fonts.Axis,
			Fill:   "var(--ink)",
			Anchor: draw.AnchorMiddle,
		})
	}

	if len(m.DistTicks) > 0 {
		last := shift(m.DistTicks[len(m.DistTicks)-1].Anchor, m.Shelf)
		im.Add(draw.Text{
			At:     geom.Point{X: last.X, Y: last.Y + gradeLabelGap + distLabelGap},
			S:      units.DistanceUnit(cfg.Units),
			Size:   cfg.Fonts.Label,
			Fill:   "var(--ink)",
			Anchor: draw.AnchorMiddle,
		})
	}

	for _, gl := range m.GradeLabels {
		base := shift(gl.Anchor, m.Shelf)
		im.Add(draw.Text{
			At:     geom.Point{X: base.X, Y: base.Y + gradeLabelGap},
			S:      gl.Label,
			Size:   cfg.Fonts.Label,
			Fill:   "var(--ink)",
			Anchor: draw.AnchorMiddle,
		})
	}
}

func addElevationAxis(im *draw.Image, m *scene.Model, cfg config.Config) {
	for _, tk := range m.ElevTicks {
		im.Add(draw.Line{
			A:           tk.Anchor,
			B:           geom.Point{X: tk.Anchor.X - tickLen, Y: tk.Anchor.Y},
			Stroke:      cfg.Face.StrokeColor,
			StrokeWidth: cfg.Grid.LineWidth,
		})
		im.Add(draw.Text{
			At:     geom.Point{X: tk.Anchor.X - elevLabelGap, Y: tk.Anchor.Y + cfg.Fonts.Axis/3},
			S:      tk.Label,
			Size:   cfg.Fonts.Axis,
			Fill:   "var(--ink)",
			Anchor: draw.AnchorEnd,
		})
	}

	if len(m.ElevTicks) > 1 {
		top := m.ElevTicks[len(m.ElevTicks)-1].Anchor
		im.Add(draw.Text{
			At:     geom.Point{X: top.X - elevLabelGap, Y: top.Y - cfg.Fonts.Axis},
			S:      units.ElevationUnit(cfg.Units),
			Size:   cfg.Fonts.Label,
			Fill:   "var(--ink)",
			Anchor: draw.AnchorEnd,
		})
	}
}

// addLegend stacks bucket swatches in the top-right corner of the canvas.
func addLegend(im *draw.Image, m *scene.Model, cfg config.Config) {
	x := cfg.Canvas.Width - cfg.Canvas.Margin.Right - legendSwatch
	y := cfg.Canvas.Margin.Top

	for _, e := range m.Legend {
		im.Add(draw.Polygon{
			Pts: []geom.Point{
				{X: x, Y: y},
				{X: x + legendSwatch, Y: y},
				{X: x + legendSwatch, Y: y + legendSwatch},
				{X: x, Y: y + legendSwatch},
			},
			Fill: e.Color,
		})
		im.Add(draw.Text{
			At:     geom.Point{X: x - legendColPad, Y: y + legendSwatch - 2},
			S:      e.Label,
			Size:   cfg.Fonts.Legend,
			Fill:   "var(--ink)",
			Anchor: draw.AnchorEnd,
		})
		y += legendSwatch + legendRowGap
	}
}

func addTitle(im *draw.Image, m *scene.Model, cfg config.Config) {
	left := math.Max(8, cfg.Canvas.Margin.Left/2)
	if m.Title != "" {
		im.Add(draw.Text{
			At:   geom.Point{X: left, Y: titleBaseline},
			S:    m.Title,
			Size: cfg.Fonts.Title,
			Fill: "var(--ink)",
		})
	}
	im.Add(draw.Text{
		At:   geom.Point{X: left, Y: titleBaseline + summaryPadding},
		S:    m.Summary,
		Size: cfg.Fonts.Label,
		Fill: "var(--ink)",
	})
}
