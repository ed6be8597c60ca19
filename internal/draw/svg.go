package draw

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"github.com/climb-data/climb.report/internal/geom"
)

// WriteSVG serializes the image as an SVG document.
func WriteSVG(w io.Writer, im *Image) {
	canvas := svg.New(w)
	canvas.Start(im.W, im.H)

	if im.Background != "" && im.Background != "none" {
		canvas.Rect(0, 0, im.W, im.H, "fill:"+im.Background)
	}

	for _, n := range im.Nodes {
		switch v := n.(type) {
		case Polygon:
			xs, ys := split(v.Pts)
			canvas.Polygon(xs, ys, polygonStyle(v))
		case Polyline:
			xs, ys := split(v.Pts)
			canvas.Polyline(xs, ys, strokeStyle(v.Stroke, v.StrokeWidth, v.Dash))
		case Line:
			canvas.Line(v.A.X, v.A.Y, v.B.X, v.B.Y, strokeStyle(v.Stroke, v.StrokeWidth, v.Dash))
		case Text:
			canvas.Text(v.At.X, v.At.Y, v.S, textStyle(v))
		}
	}

	canvas.End()
}

func split(pts []geom.Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func polygonStyle(p Polygon) string {
	fill := p.Fill
	if fill == "" {
		fill = "none"
	}
	s := "fill:" + fill
	if p.Stroke != "" && p.StrokeWidth > 0 {
		s += fmt.Sprintf(";stroke:%s;stroke-width:%g;stroke-linejoin:round", p.Stroke, p.StrokeWidth)
	}
	return s
}

func strokeStyle(stroke string, width float64, dash []float64) string {
	s := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g;stroke-linecap:round", stroke, width)
	if len(dash) > 0 {
		parts := make([]string, len(dash))
		for i, d := range dash {
			parts[i] = fmt.Sprintf("%g", d)
		}
		s += ";stroke-dasharray:" + strings.Join(parts, ",")
	}
	return s
}

func textStyle(t Text) string {
	anchor := t.Anchor
	if anchor == "" {
		anchor = AnchorStart
	}
	return fmt.Sprintf(
		"font-family:Helvetica,Arial,sans-serif;font-size:%gpx;fill:%s;text-anchor:%s",
		t.Size, t.Fill, anchor,
	)
}
