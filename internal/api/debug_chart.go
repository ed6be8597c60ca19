package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/climb-data/climb.report/internal/db"
	"github.com/climb-data/climb.report/internal/httputil"
	"github.com/climb-data/climb.report/internal/profile"
)

// handleDebugChart renders a quick HTML line chart of a stored profile using
// go-echarts. This is a debugging-only endpoint (no auth) to eyeball
// accumulated elevation and per-segment grades without the full renderer.
// Query params:
//   - id (required) profile id
func (s *Server) handleDebugChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "missing 'id' parameter")
		return
	}

	p, err := s.store.GetProfile(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			httputil.NotFound(w, "profile not found")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to load profile: %v", err))
		return
	}

	acc := profile.Accumulate(p.Segments)

	x := make([]string, len(acc.Points))
	elev := make([]opts.LineData, len(acc.Points))
	for i, pt := range acc.Points {
		x[i] = fmt.Sprintf("%.2f", pt.DistanceKm)
		elev[i] = opts.LineData{Value: pt.ElevationM}
	}

	// Grade is per segment; pad the first point so the series aligns with
	// the accumulated x axis.
	grade := make([]opts.LineData, 0, len(acc.Points))
	grade = append(grade, opts.LineData{Value: 0.0})
	for _, seg := range p.Segments {
		grade = append(grade, opts.LineData{Value: seg.GradePercent})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Climb Profile Debug", Width: "1100px", Height: "620px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    p.Name,
			Subtitle: fmt.Sprintf("%.1f km, %d m gain, %.1f%% avg", acc.TotalKm, acc.TotalGainM, profile.AvgGrade(p.Segments)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "distance (km)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "elevation (m)"}),
	)
	line.SetXAxis(x).
		AddSeries("elevation", elev, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.25)})).
		AddSeries("grade %", grade)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
