// Package config defines the render configuration: canvas, camera, ribbon
// placement, platform, grid, styles, grade buckets and display units. Values
// are validated and clamped once here, at the boundary; the pipeline trusts
// them afterwards.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/climb-data/climb.report/internal/geom"
	"github.com/climb-data/climb.report/internal/style"
	"github.com/climb-data/climb.report/internal/units"
)

// Ribbon anchor values: where the depth band sits relative to the terrain's
// Z=0 plane.
const (
	AnchorFront  = "front"
	AnchorCenter = "center"
	AnchorBack   = "back"
)

// Margin is the canvas inset in pixels.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Canvas is the fixed output surface the projection is fitted into.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// Roof controls the ribbon's depth band along the camera Z axis.
type Roof struct {
	DepthFraction   float64  `json:"depth_fraction"`
	DepthOverrideKm *float64 `json:"depth_override_km,omitempty"`
	Anchor          string   `json:"anchor"`
	ZOffsetKm       float64  `json:"z_offset_km"`
}

// Platform is the fixed-pixel-height shelf drawn beneath the terrain.
type Platform struct {
	HeightPx  float64 `json:"height_px"`
	FillColor string  `json:"fill_color"`
	WallColor string  `json:"wall_color"`
}

// Grid controls distance/elevation grid placement. DistStep is expressed in
// the active display unit (km or miles); elevation steps are chosen
// automatically to hit ElevLineTargetCount lines.
type Grid struct {
	DistStep            float64 `json:"dist_step"`
	ElevLineTargetCount int     `json:"elev_line_target_count"`
	LineColor           string  `json:"line_color"`
	LineWidth           float64 `json:"line_width"`
}

// RoadStyle styles the dashed centerline down the ribbon midline.
type RoadStyle struct {
	StrokeColor string    `json:"stroke_color"`
	StrokeWidth float64   `json:"stroke_width"`
	DashPattern []float64 `json:"dash_pattern"`
}

// FaceStyle styles the terrain silhouette polygon.
type FaceStyle struct {
	FillColor   string  `json:"fill_color"`
	StrokeColor string  `json:"stroke_color"`
	StrokeWidth float64 `json:"stroke_width"`
}

// FontSizes in pixels per text role.
type FontSizes struct {
	Title  float64 `json:"title"`
	Axis   float64 `json:"axis"`
	Label  float64 `json:"label"`
	Legend float64 `json:"legend"`
}

// Config is the full render configuration. It is a plain struct with
// enumerated fields, not an options bag; unknown JSON keys are ignored and
// out-of-range values are repaired by Sanitize.
type Config struct {
	Canvas   Canvas              `json:"canvas"`
	Camera   geom.Camera         `json:"camera"`
	Roof     Roof                `json:"roof"`
	Platform Platform            `json:"platform"`
	Grid     Grid                `json:"grid"`
	Road     RoadStyle           `json:"road"`
	Face     FaceStyle           `json:"face"`
	Fonts    FontSizes           `json:"fonts"`
	Buckets  []style.GradeBucket `json:"buckets"`
	Units    string              `json:"units"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Canvas: Canvas{
			Width:  900,
			Height: 600,
			Margin: Margin{Top: 60, Right: 40, Bottom: 70, Left: 70},
		},
		Camera: geom.Camera{
			YawDeg:               -28,
			PitchDeg:             18,
			RollDeg:              0,
			XScale:               1,
			VerticalExaggeration: 7,
		},
		Roof: Roof{
			DepthFraction: 0.06,
			Anchor:        AnchorCenter,
		},
		Platform: Platform{
			HeightPx:  26,
			FillColor: "var(--platform)",
			WallColor: "var(--wall)",
		},
		Grid: Grid{
			DistStep:            1,
			ElevLineTargetCount: 6,
			LineColor:           "var(--grid)",
			LineWidth:           0.6,
		},
		Road: RoadStyle{
			StrokeColor: "var(--road-dash)",
			StrokeWidth: 1.4,
			DashPattern: []float64{6, 5},
		},
		Face: FaceStyle{
			FillColor:   "var(--face)",
			StrokeColor: "var(--face-edge)",
			StrokeWidth: 1,
		},
		Fonts:   FontSizes{Title: 20, Axis: 11, Label: 10, Legend: 11},
		Buckets: style.DefaultBuckets(),
		Units:   units.Metric,
	}
}

// Load reads a JSON config file layered over Default(): keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// Sanitize clamps out-of-range values to safe ones. The geometry pipeline is
// designed to always produce some valid output, so bad settings are repaired
// rather than rejected.
func (c *Config) Sanitize() {
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = 900
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = 600
	}
	clampMargin := func(m *float64, limit float64) {
		if *m < 0 {
			*m = 0
		}
		if *m > limit {
			*m = limit
		}
	}
	clampMargin(&c.Canvas.Margin.Top, c.Canvas.Height/3)
	clampMargin(&c.Canvas.Margin.Bottom, c.Canvas.Height/3)
	clampMargin(&c.Canvas.Margin.Left, c.Canvas.Width/3)
	clampMargin(&c.Canvas.Margin.Right, c.Canvas.Width/3)

	if c.Camera.XScale <= 0 {
		c.Camera.XScale = 1
	}
	if c.Camera.VerticalExaggeration <= 0 {
		c.Camera.VerticalExaggeration = 1
	}

	switch c.Roof.Anchor {
	case AnchorFront, AnchorBack:
	default:
		c.Roof.Anchor = AnchorCenter
	}
	if c.Roof.DepthFraction <= 0 {
		c.Roof.DepthFraction = 0.06
	}

	if c.Platform.HeightPx < 0 {
		c.Platform.HeightPx = 0
	}
	if c.Platform.HeightPx > c.Canvas.Height/2 {
		c.Platform.HeightPx = c.Canvas.Height / 2
	}

	if c.Grid.DistStep <= 0 {
		c.Grid.DistStep = 1
	}
	if c.Grid.ElevLineTargetCount < 1 {
		c.Grid.ElevLineTargetCount = 6
	}

	if len(c.Buckets) == 0 {
		c.Buckets = style.DefaultBuckets()
	}
	if !units.IsValid(c.Units) {
		c.Units = units.Metric
	}
}
