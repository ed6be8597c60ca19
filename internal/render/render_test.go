package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climb-data/climb.report/internal/config"
	"github.com/climb-data/climb.report/internal/draw"
	"github.com/climb-data/climb.report/internal/profile"
	"github.com/climb-data/climb.report/internal/scene"
)

func renderFixture(t *testing.T, p *profile.ClimbProfile, cfg config.Config) *draw.Image {
	t.Helper()
	m := scene.Build(p, cfg)
	im := Render(m, cfg)
	require.NotNil(t, im)
	return im
}

func countNodes(im *draw.Image) (polygons, polylines, lines, texts int) {
	for _, n := range im.Nodes {
		switch n.(type) {
		case draw.Polygon:
			polygons++
		case draw.Polyline:
			polylines++
		case draw.Line:
			lines++
		case draw.Text:
			texts++
		}
	}
	return
}

func TestRenderSingleSegment(t *testing.T) {
	cfg := config.Default()
	p := &profile.ClimbProfile{
		Name:     "Test Col",
		Segments: []profile.Segment{{LengthKm: 1, GradePercent: 10}},
	}
	im := renderFixture(t, p, cfg)

	assert.Equal(t, cfg.Canvas.Width, im.W)
	assert.Equal(t, cfg.Canvas.Height, im.H)

	// platform slab + start wall + face + 1 ribbon tile + legend swatches
	polys, polylines, _, texts := countNodes(im)
	assert.Equal(t, 3+1+len(cfg.Buckets), polys, "polygon count")
	assert.Equal(t, 1, polylines, "one dashed centerline")
	assert.Greater(t, texts, 0)
}

func TestRibbonTileUsesBucketColor(t *testing.T) {
	cfg := config.Default()
	p := &profile.ClimbProfile{
		Segments: []profile.Segment{{LengthKm: 1, GradePercent: 10}},
	}
	im := renderFixture(t, p, cfg)

	// The 10% tile must take the bucket covering grade 10.
	want := ""
	for _, b := range cfg.Buckets {
		if b.UpTo >= 10 {
			want = b.Color
			break
		}
	}
	require.NotEmpty(t, want)

	found := false
	for _, n := range im.Nodes {
		poly, ok := n.(draw.Polygon)
		if ok && len(poly.Pts) == 4 && poly.Fill == want {
			found = true
		}
	}
	assert.True(t, found, "no ribbon tile with bucket color %s", want)
}

func TestRenderTileCountMatchesSegments(t *testing.T) {
	cfg := config.Default()
	p := &profile.ClimbProfile{
		Segments: []profile.Segment{
			{LengthKm: 1, GradePercent: 3},
			{LengthKm: 0, GradePercent: 9}, // degenerate, no tile
			{LengthKm: 2, GradePercent: 8},
			{LengthKm: 0.5, GradePercent: 12},
		},
	}
	m := scene.Build(p, cfg)
	require.Len(t, m.Ribbon, 3)

	im := Render(m, cfg)
	polys, _, _, _ := countNodes(im)
	// slab + wall + face + 3 tiles + legend swatches
	assert.Equal(t, 3+3+len(cfg.Buckets), polys)
}

func TestRenderedSVGHasAllElements(t *testing.T) {
	cfg := config.Default()
	p := &profile.ClimbProfile{
		Name:     "Alpe Fixture",
		Segments: []profile.Segment{{LengthKm: 2, GradePercent: 7}, {LengthKm: 1, GradePercent: 11}},
	}
	im := renderFixture(t, p, cfg)

	var buf bytes.Buffer
	draw.WriteSVG(&buf, im)
	out := buf.String()

	for _, want := range []string{"Alpe Fixture", "<polygon", "<polyline", "<line", "km", "7%", "11%"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderEmptyProfile(t *testing.T) {
	cfg := config.Default()
	im := renderFixture(t, &profile.ClimbProfile{Name: "empty"}, cfg)

	// Degenerate input still yields a valid frame: platform, wall, face,
	// legend, title; no tiles, no centerline shorter than 2 points issues.
	polys, _, _, _ := countNodes(im)
	assert.Equal(t, 3+len(cfg.Buckets), polys)
}
