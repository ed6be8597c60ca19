package draw

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/climb-data/climb.report/internal/geom"
)

var fontCache = font.NewCache(liberation.Collection())

// Rasterize paints the image onto a pixel canvas at the given density
// multiplier (1 = one pixel per screen unit). The vector coordinates are
// treated as points and the density is applied through the raster DPI, so
// strokes and text scale together.
func Rasterize(im *Image, density float64) image.Image {
	if density <= 0 {
		density = 1
	}

	pw := int(math.Round(im.W * density))
	ph := int(math.Round(im.H * density))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	c := vgimg.NewWith(
		vgimg.UseDPI(int(math.Round(72*density))),
		vgimg.UseImage(dst),
	)
	r := rasterizer{im: im, c: c}
	r.paint()
	return dst
}

type rasterizer struct {
	im *Image
	c  *vgimg.Canvas
}

// pt flips to the vg convention: origin bottom-left, Y up.
func (r rasterizer) pt(x, y float64) vg.Point {
	return vg.Point{X: vg.Length(x), Y: vg.Length(r.im.H - y)}
}

func (r rasterizer) paint() {
	if bg := parseColor(r.im.Background); bg != nil {
		var p vg.Path
		p.Move(r.pt(0, 0))
		p.Line(r.pt(r.im.W, 0))
		p.Line(r.pt(r.im.W, r.im.H))
		p.Line(r.pt(0, r.im.H))
		p.Close()
		r.c.SetColor(bg)
		r.c.Fill(p)
	}

	for _, n := range r.im.Nodes {
		switch v := n.(type) {
		case Polygon:
			r.polygon(v)
		case Polyline:
			r.stroke(v.Pts, v.Stroke, v.StrokeWidth, v.Dash)
		case Line:
			r.stroke([]geom.Point{v.A, v.B}, v.Stroke, v.StrokeWidth, v.Dash)
		case Text:
			r.text(v)
		}
	}
}

func (r rasterizer) path(pts []geom.Point, closed bool) vg.Path {
	var p vg.Path
	for i, q := range pts {
		if i == 0 {
			p.Move(r.pt(q.X, q.Y))
			continue
		}
		p.Line(r.pt(q.X, q.Y))
	}
	if closed {
		p.Close()
	}
	return p
}

func (r rasterizer) polygon(v Polygon) {
	if len(v.Pts) < 2 {
		return
	}
	p := r.path(v.Pts, true)

	if fill := parseColor(v.Fill); fill != nil {
		r.c.SetColor(fill)
		r.c.Fill(p)
	}
	if stroke := parseColor(v.Stroke); stroke != nil && v.StrokeWidth > 0 {
		r.c.SetColor(stroke)
		r.c.SetLineWidth(vg.Length(v.StrokeWidth))
		r.c.SetLineDash(nil, 0)
		r.c.Stroke(p)
	}
}

func (r rasterizer) stroke(pts []geom.Point, stroke string, width float64, dash []float64) {
	col := parseColor(stroke)
	if col == nil || width <= 0 || len(pts) < 2 {
		return
	}
	r.c.SetColor(col)
	r.c.SetLineWidth(vg.Length(width))
	pattern := make([]vg.Length, len(dash))
	for i, d := range dash {
		pattern[i] = vg.Length(d)
	}
	r.c.SetLineDash(pattern, 0)
	r.c.Stroke(r.path(pts, false))
}

func (r rasterizer) text(v Text) {
	col := parseColor(v.Fill)
	if col == nil || v.S == "" {
		return
	}

	sty := text.Style{
		Color: col,
		Font: font.Font{
			Typeface: "Liberation",
			Variant:  "Sans",
			Size:     vg.Length(v.Size),
		},
		Handler: text.Plain{Fonts: fontCache},
		XAlign:  text.XLeft,
		YAlign:  text.YBottom,
	}
	switch v.Anchor {
	case AnchorMiddle:
		sty.XAlign = text.XCenter
	case AnchorEnd:
		sty.XAlign = text.XRight
	}

	dc := vgdraw.New(r.c)
	dc.FillText(sty, r.pt(v.At.X, v.At.Y), v.S)
}

// parseColor understands #rgb, #rrggbb and #rrggbbaa hex colors plus a few
// keywords. Unknown or empty colors return nil, which skips the element.
func parseColor(s string) color.Color {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "transparent":
		return nil
	case "white":
		return color.White
	case "black":
		return color.Black
	}
	if !strings.HasPrefix(s, "#") {
		return nil
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return nil
	}

	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return nil
	}
	c := color.NRGBA{A: 0xff}
	if len(hex) == 8 {
		c.A = uint8(v)
		v >>= 8
	}
	c.B = uint8(v)
	c.G = uint8(v >> 8)
	c.R = uint8(v >> 16)
	return c
}
