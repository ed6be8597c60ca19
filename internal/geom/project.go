// Package geom implements the axonometric projection used by the elevation
// renderer: a fixed scale→yaw→pitch→roll oblique transform, a fit-and-center
// routine that maps an arbitrary world box into a target screen rectangle,
// and a "nice step" tick sizer.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera holds the oblique projection parameters. XScale stretches the
// distance axis and VerticalExaggeration scales world Y before rotation, so
// it affects terrain relief only.
type Camera struct {
	YawDeg               float64 `json:"yaw_deg"`
	PitchDeg             float64 `json:"pitch_deg"`
	RollDeg              float64 `json:"roll_deg"`
	XScale               float64 `json:"x_scale"`
	VerticalExaggeration float64 `json:"vertical_exaggeration"`
}

// Point is a screen-space coordinate in pixels. Y grows down the screen.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Norm returns the euclidean length of p treated as a vector.
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }

// Projector maps a world-space point (km,km,km) to screen space (px,px).
type Projector func(x, y, z float64) Point

var (
	yawAxis   = r3.Vec{Y: 1} // vertical: mixes X and Z
	pitchAxis = r3.Vec{X: 1} // horizontal: mixes Y and Z
	rollAxis  = r3.Vec{Z: 1} // depth: mixes X and Y
)

func rotate(v r3.Vec, deg float64, axis r3.Vec) r3.Vec {
	if deg == 0 {
		return v
	}
	return r3.NewRotation(deg*math.Pi/180, axis).Rotate(v)
}

// Project applies the raw oblique transform. The rotation order is fixed
// (yaw, then pitch, then roll); the rotations do not commute and the order
// is part of the visual contract. No perspective divide: the projection is
// orthographic, so the returned pair is simply the rotated X and Y.
func Project(x, y, z float64, cam Camera) (float64, float64) {
	v := r3.Vec{X: x * cam.XScale, Y: y * cam.VerticalExaggeration, Z: z}
	v = rotate(v, cam.YawDeg, yawAxis)
	v = rotate(v, cam.PitchDeg, pitchAxis)
	v = rotate(v, cam.RollDeg, rollAxis)
	return v.X, v.Y
}

// Box is an axis-aligned world-space bounding box.
type Box struct {
	X0, Y0, Z0 float64
	X1, Y1, Z1 float64
}

// Corners returns the eight corner points of the box.
func (b Box) Corners() [8]r3.Vec {
	return [8]r3.Vec{
		{X: b.X0, Y: b.Y0, Z: b.Z0},
		{X: b.X1, Y: b.Y0, Z: b.Z0},
		{X: b.X0, Y: b.Y1, Z: b.Z0},
		{X: b.X1, Y: b.Y1, Z: b.Z0},
		{X: b.X0, Y: b.Y0, Z: b.Z1},
		{X: b.X1, Y: b.Y0, Z: b.Z1},
		{X: b.X0, Y: b.Y1, Z: b.Z1},
		{X: b.X1, Y: b.Y1, Z: b.Z1},
	}
}

// Rect is a screen-space rectangle with Y growing down.
type Rect struct {
	X0, Y0 float64
	X1, Y1 float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{(r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2} }

// degenerateExtent guards divisions when a box projects to a line or point.
const degenerateExtent = 1e-9

// FitAndCenter composes the raw projection with a uniform scale and a
// translation such that the whole box lands inside inner, centered, with
// aspect ratio preserved. Screen Y is inverted: positive world Y moves up
// the screen.
func FitAndCenter(box Box, inner Rect, cam Camera) Projector {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range box.Corners() {
		px, py := Project(c.X, c.Y, c.Z, cam)
		minX = math.Min(minX, px)
		maxX = math.Max(maxX, px)
		minY = math.Min(minY, py)
		maxY = math.Max(maxY, py)
	}

	bw := math.Max(degenerateExtent, maxX-minX)
	bh := math.Max(degenerateExtent, maxY-minY)
	scale := math.Min(inner.Width()/bw, inner.Height()/bh)

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	center := inner.Center()

	return func(x, y, z float64) Point {
		px, py := Project(x, y, z, cam)
		return Point{
			X: center.X + scale*(px-cx),
			Y: center.Y - scale*(py-cy),
		}
	}
}
