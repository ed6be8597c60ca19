package geom

import (
	"math"
	"testing"
)

const tol = 1e-9

func identityCamera() Camera {
	return Camera{XScale: 1, VerticalExaggeration: 1}
}

func TestProjectIdentity(t *testing.T) {
	cam := identityCamera()
	tests := []struct{ x, y, z float64 }{
		{0, 0, 0},
		{1, 2, 3},
		{-4.5, 0.001, 12},
		{1e6, -1e6, 0.5},
	}

	for _, tt := range tests {
		gx, gy := Project(tt.x, tt.y, tt.z, cam)
		if math.Abs(gx-tt.x) > tol || math.Abs(gy-tt.y) > tol {
			t.Errorf("Project(%v,%v,%v) = (%v,%v), want identity", tt.x, tt.y, tt.z, gx, gy)
		}
	}
}

func TestProjectYawMixesXZ(t *testing.T) {
	cam := identityCamera()
	cam.YawDeg = 90

	// A 90° yaw carries the depth axis onto screen X; world Y is untouched.
	gx, gy := Project(1, 2, 0, cam)
	if math.Abs(gy-2) > tol {
		t.Errorf("yaw must not change Y: got %v", gy)
	}
	if math.Abs(gx) > 1e-9 {
		t.Errorf("pure X input under 90° yaw should leave screen X near 0, got %v", gx)
	}
}

func TestProjectScalesBeforeRotation(t *testing.T) {
	cam := Camera{PitchDeg: 90, XScale: 1, VerticalExaggeration: 3}

	// Vertical exaggeration applies to world Y before the pitch rotation
	// folds Y into depth, so the exaggerated value disappears from screen Y.
	_, gy := Project(0, 1, 0, cam)
	if math.Abs(gy) > 1e-9 {
		t.Errorf("90° pitch should fold exaggerated Y out of the screen, got y=%v", gy)
	}

	cam.PitchDeg = 0
	_, gy = Project(0, 1, 0, cam)
	if math.Abs(gy-3) > tol {
		t.Errorf("exaggeration should scale Y: got %v, want 3", gy)
	}
}

func TestFitAndCenterInvariant(t *testing.T) {
	boxes := []Box{
		{0, 0, -0.5, 10, 2, 0.5},
		{0, 0, 0, 1, 0.1, 0.05},
		{0, 0, -1, 0.001, 0.001, 1}, // nearly degenerate in X/Y
		{0, 0, 0, 5, 0, 0},          // fully flat
	}
	cams := []Camera{
		{XScale: 1, VerticalExaggeration: 1},
		{YawDeg: 30, PitchDeg: 20, RollDeg: -5, XScale: 1.2, VerticalExaggeration: 6},
		{YawDeg: -60, PitchDeg: 45, RollDeg: 90, XScale: 0.5, VerticalExaggeration: 1},
	}
	inner := Rect{X0: 40, Y0: 30, X1: 760, Y1: 570}

	for _, box := range boxes {
		for _, cam := range cams {
			proj := FitAndCenter(box, inner, cam)

			minX, minY := math.Inf(1), math.Inf(1)
			maxX, maxY := math.Inf(-1), math.Inf(-1)
			for _, c := range box.Corners() {
				pt := proj(c.X, c.Y, c.Z)
				minX = math.Min(minX, pt.X)
				maxX = math.Max(maxX, pt.X)
				minY = math.Min(minY, pt.Y)
				maxY = math.Max(maxY, pt.Y)
			}

			const fpTol = 1e-6
			if minX < inner.X0-fpTol || maxX > inner.X1+fpTol ||
				minY < inner.Y0-fpTol || maxY > inner.Y1+fpTol {
				t.Errorf("box %+v cam %+v: projected corners [%v,%v]x[%v,%v] escape inner %+v",
					box, cam, minX, maxX, minY, maxY, inner)
			}

			gotCenter := Point{(minX + maxX) / 2, (minY + maxY) / 2}
			want := inner.Center()
			if math.Abs(gotCenter.X-want.X) > fpTol || math.Abs(gotCenter.Y-want.Y) > fpTol {
				t.Errorf("box %+v cam %+v: projected center %+v, want %+v", box, cam, gotCenter, want)
			}
		}
	}
}

func TestFitAndCenterInvertsScreenY(t *testing.T) {
	box := Box{0, 0, 0, 1, 1, 0}
	proj := FitAndCenter(box, Rect{0, 0, 100, 100}, identityCamera())

	lo := proj(0, 0, 0)
	hi := proj(0, 1, 0)
	if hi.Y >= lo.Y {
		t.Errorf("higher world Y should land higher on screen (smaller Y): got lo=%v hi=%v", lo.Y, hi.Y)
	}
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		name     string
		rng      float64
		maxTicks int
		want     float64
	}{
		{"spec example 97/8", 97, 8, 10},
		{"exact decade", 100, 10, 10},
		{"quarter steps", 1, 4, 0.25},
		{"small range", 0.9, 9, 0.1},
		{"large range", 12000, 6, 2000},
		{"zero ticks clamped", 5, 0, 5},
		{"zero range falls back", 0, 5, 1},
		{"negative range falls back", -10, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NiceStep(tt.rng, tt.maxTicks)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("NiceStep(%v, %d) = %v, want %v", tt.rng, tt.maxTicks, got, tt.want)
			}
		})
	}
}
