// Package draw holds the format-agnostic vector drawing tree the renderer
// emits, plus backends that serialize it: SVG (ajstarks/svgo) and raster
// (gonum/plot vg). All coordinates are final screen pixels; backends do no
// geometry beyond Y-axis bookkeeping.
package draw

import "github.com/climb-data/climb.report/internal/geom"

// Text anchor values, matching the SVG text-anchor attribute.
const (
	AnchorStart  = "start"
	AnchorMiddle = "middle"
	AnchorEnd    = "end"
)

// Node is one drawing primitive.
type Node interface {
	node()
}

// Polygon is a closed, filled (and optionally stroked) shape.
type Polygon struct {
	Pts         []geom.Point
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Polyline is an open stroked path.
type Polyline struct {
	Pts         []geom.Point
	Stroke      string
	StrokeWidth float64
	Dash        []float64
}

// Line is a single stroked segment.
type Line struct {
	A, B        geom.Point
	Stroke      string
	StrokeWidth float64
	Dash        []float64
}

// Text places a string at a baseline anchor point.
type Text struct {
	At     geom.Point
	S      string
	Size   float64
	Fill   string
	Anchor string
}

func (Polygon) node()  {}
func (Polyline) node() {}
func (Line) node()     {}
func (Text) node()     {}

// Image is the rendered frame: a fixed-size canvas and an ordered node list
// (painter's order, first node at the bottom).
type Image struct {
	W, H       float64
	Background string
	Nodes      []Node
}

// Add appends nodes on top of the existing ones.
func (im *Image) Add(nodes ...Node) {
	im.Nodes = append(im.Nodes, nodes...)
}

// Transform returns a copy of the image with every color string passed
// through f. Used by export to resolve theme variables without mutating the
// renderer's output.
func (im *Image) Transform(f func(color string) string) *Image {
	out := &Image{W: im.W, H: im.H, Background: f(im.Background)}
	out.Nodes = make([]Node, len(im.Nodes))
	for i, n := range im.Nodes {
		switch v := n.(type) {
		case Polygon:
			v.Fill = f(v.Fill)
			v.Stroke = f(v.Stroke)
			out.Nodes[i] = v
		case Polyline:
			v.Stroke = f(v.Stroke)
			out.Nodes[i] = v
		case Line:
			v.Stroke = f(v.Stroke)
			out.Nodes[i] = v
		case Text:
			v.Fill = f(v.Fill)
			out.Nodes[i] = v
		default:
			out.Nodes[i] = n
		}
	}
	return out
}
