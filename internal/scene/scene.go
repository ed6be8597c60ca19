// Package scene derives the full render model for a climb: world geometry,
// ribbon depth band, composed projector with shelf correction, and every 2D
// point set the renderer draws. Build is a pure function of (profile,
// config); Builder memoizes it on those inputs.
package scene

import (
	"fmt"
	"math"

	"github.com/climb-data/climb.report/internal/config"
	"github.com/climb-data/climb.report/internal/geom"
	"github.com/climb-data/climb.report/internal/profile"
	"github.com/climb-data/climb.report/internal/style"
	"github.com/climb-data/climb.report/internal/units"
)

// Floors for degenerate input: a flat profile still gets a 10 m elevation
// span, a zero-distance profile a sliver of width, and the ribbon at least
// 10 m of depth.
const (
	minSpanM   = 10
	minWidthKm = 1e-6
	minDepthKm = 0.01
)

// maxDistLines bounds the distance grid the way ElevLineTargetCount bounds
// the elevation grid. A configured step much finer than the profile width is
// widened to the nearest nice step under this cap, so tick count stays
// proportional to the canvas, not to 1/step.
const maxDistLines = 400

// Tick is a projected anchor point with its display-unit label.
type Tick struct {
	Anchor geom.Point
	Label  string
}

// GridLine is one projected grid segment, already clipped to the terrain
// face in world space.
type GridLine struct {
	A, B geom.Point
}

// RibbonTile is the projected quad for one segment of road surface. Grade is
// kept so the renderer can consult the color bucketer.
type RibbonTile struct {
	Quad  [4]geom.Point
	Grade float64
}

// LegendEntry pairs a bucket color with its grade-range label.
type LegendEntry struct {
	Label string
	Color string
}

// Model holds everything the renderer needs. It is rebuilt in full on every
// input change and owns all of its slices.
type Model struct {
	Canvas config.Canvas

	// World extents (km) and ribbon depth bounds.
	W, H        float64
	ZNear, ZFar float64

	// Composed projector: raw oblique transform, fitted and centered into
	// the canvas, shifted by half the shelf vector.
	Project geom.Projector

	// Shelf is the screen-space platform vector. It points down-screen from
	// the terrain base toward the platform bottom and its length is exactly
	// the configured platform pixel height, whatever the camera does.
	Shelf geom.Point

	// Terrain in world space: X in km, Y in km of relative elevation
	// (min(Y) == 0).
	WorldPoints []geom.Point

	// Projected geometry.
	FaceOutline []geom.Point // closed terrain silhouette at zNear
	GridLines   []GridLine
	Ribbon      []RibbonTile
	Centerline  []geom.Point // terrain ridge at ribbon mid-depth
	DistTicks   []Tick
	GradeLabels []Tick
	ElevTicks   []Tick
	Legend      []LegendEntry
	Title       string
	Summary     string
}

// Build derives the render model. It never fails: degenerate inputs are
// clamped to epsilon geometry instead.
func Build(p *profile.ClimbProfile, cfg config.Config) *Model {
	cfg.Sanitize()

	acc := profile.Accumulate(p.Segments)
	minElevM, maxElevM := acc.ElevationRange()

	m := &Model{Canvas: cfg.Canvas}
	m.W = math.Max(minWidthKm, acc.TotalKm)
	spanM := math.Max(minSpanM, maxElevM-minElevM)
	m.H = spanM / 1000

	// Relative world points: elevation above the profile minimum, in km.
	m.WorldPoints = make([]geom.Point, len(acc.Points))
	for i, pt := range acc.Points {
		m.WorldPoints[i] = geom.Point{
			X: pt.DistanceKm,
			Y: (pt.ElevationM - minElevM) / 1000,
		}
	}

	m.ZNear, m.ZFar = ribbonDepth(m.W, cfg.Roof)

	proj := fitProjector(m, cfg)
	m.Shelf = shelfVector(proj, cfg.Platform.HeightPx)

	// Centering correction: shifting every point up by half the shelf keeps
	// the terrain-plus-platform composition centered without refitting.
	half := m.Shelf.Scale(0.5)
	m.Project = func(x, y, z float64) geom.Point {
		pt := proj(x, y, z)
		return geom.Point{X: pt.X - half.X, Y: pt.Y - half.Y}
	}

	m.buildFace()
	m.buildGrid(p, cfg, minElevM, spanM)
	m.buildRibbon(p.Segments)
	m.buildText(p, acc, cfg)

	return m
}

// ribbonDepth places the fixed-thickness depth band along Z per the anchor.
func ribbonDepth(w float64, roof config.Roof) (zNear, zFar float64) {
	depth := w * roof.DepthFraction
	if roof.DepthOverrideKm != nil {
		depth = *roof.DepthOverrideKm
	}
	depth = math.Max(minDepthKm, depth)

	switch roof.Anchor {
	case config.AnchorFront:
		zNear = roof.ZOffsetKm
	case config.AnchorBack:
		zNear = -depth + roof.ZOffsetKm
	default:
		zNear = -depth/2 + roof.ZOffsetKm
	}
	return zNear, zNear + depth
}

// fitProjector fits the world box into the canvas with vertical room
// reserved for the platform, so adding the shelf never clips.
func fitProjector(m *Model, cfg config.Config) geom.Projector {
	box := geom.Box{
		X0: 0, Y0: 0, Z0: math.Min(m.ZNear, m.ZFar),
		X1: m.W, Y1: m.H, Z1: math.Max(m.ZNear, m.ZFar),
	}

	mg := cfg.Canvas.Margin
	innerW := cfg.Canvas.Width - mg.Left - mg.Right
	innerH := cfg.Canvas.Height - mg.Top - mg.Bottom
	fitH := math.Max(1, innerH-cfg.Platform.HeightPx)
	cy := mg.Top + innerH/2

	inner := geom.Rect{
		X0: mg.Left, X1: mg.Left + innerW,
		Y0: cy - fitH/2, Y1: cy + fitH/2,
	}
	return geom.FitAndCenter(box, inner, cfg.Camera)
}

// shelfVector projects the world up-vector and rescales it to the configured
// pixel height, pointing down-screen. Camera angles steer its direction but
// never its length.
func shelfVector(proj geom.Projector, heightPx float64) geom.Point {
	p0 := proj(0, 0, 0)
	p1 := proj(0, 1, 0)
	v := geom.Point{X: p0.X - p1.X, Y: p0.Y - p1.Y}

	n := v.Norm()
	if n < 1e-9 {
		// The up-vector projects to nothing (extreme pitch); fall back to
		// straight down.
		return geom.Point{Y: heightPx}
	}
	return v.Scale(heightPx / n)
}

// terrainYAt linearly interpolates relative elevation (km) at distance x.
func (m *Model) terrainYAt(x float64) float64 {
	pts := m.WorldPoints
	if len(pts) == 0 {
		return 0
	}
	if x <= pts[0].X {
		return pts[0].Y
	}
	for i := 1; i < len(pts); i++ {
		if x <= pts[i].X {
			dx := pts[i].X - pts[i-1].X
			if dx <= 0 {
				return pts[i].Y
			}
			t := (x - pts[i-1].X) / dx
			return pts[i-1].Y + t*(pts[i].Y-pts[i-1].Y)
		}
	}
	return pts[len(pts)-1].Y
}

// buildFace projects the closed terrain silhouette at the front depth plane.
func (m *Model) buildFace() {
	out := make([]geom.Point, 0, len(m.WorldPoints)+2)
	for _, wp := range m.WorldPoints {
		out = append(out, m.Project(wp.X, wp.Y, m.ZNear))
	}
	out = append(out,
		m.Project(m.W, 0, m.ZNear),
		m.Project(0, 0, m.ZNear),
	)
	m.FaceOutline = out
}

// buildGrid derives distance and elevation grid lines, clipped to the
// terrain face in world space, plus the axis ticks and labels.
func (m *Model) buildGrid(p *profile.ClimbProfile, cfg config.Config, minElevM, spanM float64) {
	sys := cfg.Units

	// Distance lines: the step is configured in display units.
	stepKm := units.DistanceToKm(cfg.Grid.DistStep, sys)
	if stepKm > 0 && m.W/stepKm > maxDistLines {
		widthDisp := units.DistanceFromKm(m.W, sys)
		stepKm = units.DistanceToKm(geom.NiceStep(widthDisp, maxDistLines), sys)
	}
	if stepKm > 0 {
		for d := stepKm; d < m.W-1e-9; d += stepKm {
			top := m.terrainYAt(d)
			m.GridLines = append(m.GridLines, GridLine{
				A: m.Project(d, 0, m.ZNear),
				B: m.Project(d, top, m.ZNear),
			})
		}
		for d := 0.0; d <= m.W+1e-9; d += stepKm {
			dd := math.Min(d, m.W)
			m.DistTicks = append(m.DistTicks, Tick{
				Anchor: m.Project(dd, 0, m.ZNear),
				Label:  units.FormatValue(units.DistanceFromKm(dd, sys)),
			})
		}
	}

	// Elevation lines: pick a nice step in display units, convert to world km.
	spanDisp := units.ElevationFromMeters(spanM, sys)
	stepDisp := geom.NiceStep(spanDisp, cfg.Grid.ElevLineTargetCount)
	stepKmWorld := units.ElevationToMeters(stepDisp, sys) / 1000

	// Absolute labels only when the profile carries a start elevation.
	baseDisp := 0.0
	if p.StartElevationM != nil {
		baseDisp = units.ElevationFromMeters(*p.StartElevationM+minElevM, sys)
	}

	for k := 0; ; k++ {
		y := float64(k) * stepKmWorld
		if y > m.H+1e-12 || stepKmWorld <= 0 {
			break
		}
		label := units.FormatValue(math.Round(baseDisp + float64(k)*stepDisp))
		m.ElevTicks = append(m.ElevTicks, Tick{
			Anchor: m.Project(0, y, m.ZNear),
			Label:  label,
		})
		if k == 0 {
			continue // the base line is the platform edge
		}
		for _, span := range m.clipHorizontal(y) {
			m.GridLines = append(m.GridLines, GridLine{
				A: m.Project(span[0], y, m.ZNear),
				B: m.Project(span[1], y, m.ZNear),
			})
		}
	}
}

// clipHorizontal returns the [x0,x1] intervals where the terrain reaches at
// least relative elevation y (km), with crossings interpolated.
func (m *Model) clipHorizontal(y float64) [][2]float64 {
	pts := m.WorldPoints
	var spans [][2]float64
	var start float64
	inside := false

	for i, pt := range pts {
		above := pt.Y >= y
		if i == 0 {
			if above {
				start, inside = pt.X, true
			}
			continue
		}
		prev := pts[i-1]
		if above == (prev.Y >= y) {
			continue
		}
		// Crossing between prev and pt.
		x := prev.X
		if dy := pt.Y - prev.Y; dy != 0 {
			x = prev.X + (y-prev.Y)/dy*(pt.X-prev.X)
		}
		if above {
			start, inside = x, true
		} else {
			spans = append(spans, [2]float64{start, x})
			inside = false
		}
	}
	if inside {
		spans = append(spans, [2]float64{start, pts[len(pts)-1].X})
	}
	return spans
}

// buildRibbon projects one quad per positive-length segment spanning the
// depth band, plus the dashed centerline points at mid depth.
func (m *Model) buildRibbon(segments []profile.Segment) {
	zMid := (m.ZNear + m.ZFar) / 2

	m.Centerline = make([]geom.Point, len(m.WorldPoints))
	for i, wp := range m.WorldPoints {
		m.Centerline[i] = m.Project(wp.X, wp.Y, zMid)
	}

	for i, s := range segments {
		a, b := m.WorldPoints[i], m.WorldPoints[i+1]
		if b.X-a.X <= 0 {
			continue // zero-length segments keep their slot but draw nothing
		}
		grade := s.GradePercent
		if math.IsNaN(grade) || math.IsInf(grade, 0) {
			grade = 0
		}
		m.Ribbon = append(m.Ribbon, RibbonTile{
			Quad: [4]geom.Point{
				m.Project(a.X, a.Y, m.ZNear),
				m.Project(b.X, b.Y, m.ZNear),
				m.Project(b.X, b.Y, m.ZFar),
				m.Project(a.X, a.Y, m.ZFar),
			},
			Grade: grade,
		})
	}
}

// buildText derives per-segment grade labels, the legend, and the title and
// summary strings.
func (m *Model) buildText(p *profile.ClimbProfile, acc profile.Accumulation, cfg config.Config) {
	for i := range p.Segments {
		a, b := m.WorldPoints[i], m.WorldPoints[i+1]
		if b.X-a.X <= 0 {
			continue
		}
		grade := p.Segments[i].GradePercent
		if math.IsNaN(grade) || math.IsInf(grade, 0) {
			grade = 0
		}
		mid := (a.X + b.X) / 2
		m.GradeLabels = append(m.GradeLabels, Tick{
			Anchor: m.Project(mid, 0, m.ZNear),
			Label:  fmt.Sprintf("%g%%", math.Round(grade*10)/10),
		})
	}

	for i := range cfg.Buckets {
		m.Legend = append(m.Legend, LegendEntry{
			Label: style.BucketLabel(cfg.Buckets, i),
			Color: cfg.Buckets[i].Color,
		})
	}

	m.Title = p.Name
	m.Summary = fmt.Sprintf("%s · %s gain · %s%% avg",
		units.FormatDistance(acc.TotalKm, cfg.Units),
		units.FormatElevation(float64(acc.TotalGainM), cfg.Units),
		units.FormatValue(math.Round(profile.AvgGrade(p.Segments)*10)/10),
	)
}
