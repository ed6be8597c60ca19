package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/climb-data/climb.report/internal/config"
	"github.com/climb-data/climb.report/internal/db"
	"github.com/climb-data/climb.report/internal/export"
	"github.com/climb-data/climb.report/internal/fetch"
	"github.com/climb-data/climb.report/internal/httputil"
	"github.com/climb-data/climb.report/internal/profile"
	"github.com/climb-data/climb.report/internal/render"
	"github.com/climb-data/climb.report/internal/scene"
	"github.com/climb-data/climb.report/internal/version"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves the profile store and the on-the-fly renderer over HTTP.
type Server struct {
	store   *db.Store
	cfg     config.Config
	builder *scene.Builder
	source  *fetch.Source // nil when no upstream is configured
}

func NewServer(store *db.Store, cfg config.Config, source *fetch.Source) *Server {
	return &Server{
		store:   store,
		cfg:     cfg,
		builder: &scene.Builder{},
		source:  source,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profiles", s.handleProfiles)
	mux.HandleFunc("/api/profiles/", s.handleProfileByID)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/import", s.handleImport)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/debug/profile", s.handleDebugChart)
	return mux
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listProfiles(w, r)
	case http.MethodPost:
		s.createProfile(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	metas, err := s.store.ListProfiles()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list profiles: %v", err))
		return
	}
	if metas == nil {
		metas = []db.ProfileMeta{}
	}
	httputil.WriteJSON(w, http.StatusOK, metas)
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.ClimbProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid profile body: %v", err))
		return
	}
	if len(p.Segments) == 0 {
		httputil.BadRequest(w, "profile has no segments")
		return
	}

	id, err := s.store.SaveProfile(&p)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to save profile: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// profileResponse is the detail payload: the stored profile plus derived
// totals so clients never re-implement accumulation.
type profileResponse struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	StartElevationM *float64                   `json:"start_elevation_m,omitempty"`
	Segments        []profile.Segment          `json:"segments"`
	TotalKm         float64                    `json:"total_km"`
	TotalGainM      int                        `json:"total_gain_m"`
	AvgGradePercent float64                    `json:"avg_grade_percent"`
	Points          []profile.AccumulatedPoint `json:"points"`
}

func (s *Server) handleProfileByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	if id == "" || strings.Contains(id, "/") {
		httputil.NotFound(w, "profile not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getProfile(w, r, id)
	case http.MethodDelete:
		s.deleteProfile(w, id)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request, id string) {
	p, err := s.store.GetProfile(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			httputil.NotFound(w, "profile not found")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to load profile: %v", err))
		return
	}

	// Optional re-binning: rebuild the sample track from the accumulated
	// points and slice it into fixed bins.
	if bk := r.URL.Query().Get("bin_km"); bk != "" {
		binKm, err := strconv.ParseFloat(bk, 64)
		if err != nil || binKm <= 0 {
			httputil.BadRequest(w, "invalid 'bin_km' parameter")
			return
		}
		latStep := 1
		if ls := r.URL.Query().Get("lat_step"); ls != "" {
			latStep, err = strconv.Atoi(ls)
			if err != nil || latStep < 1 {
				httputil.BadRequest(w, "invalid 'lat_step' parameter")
				return
			}
		}
		p = rebin(p, binKm, latStep)
	}

	acc := profile.Accumulate(p.Segments)
	httputil.WriteJSON(w, http.StatusOK, profileResponse{
		ID:              id,
		Name:            p.Name,
		StartElevationM: p.StartElevationM,
		Segments:        p.Segments,
		TotalKm:         acc.TotalKm,
		TotalGainM:      acc.TotalGainM,
		AvgGradePercent: profile.AvgGrade(p.Segments),
		Points:          acc.Points,
	})
}

// rebin converts a segment profile back into distance/altitude samples and
// re-slices it into fixed-length bins.
func rebin(p *profile.ClimbProfile, binKm float64, latStep int) *profile.ClimbProfile {
	acc := profile.Accumulate(p.Segments)
	distM := make([]float64, len(acc.Points))
	altM := make([]float64, len(acc.Points))
	for i, pt := range acc.Points {
		distM[i] = pt.DistanceKm * 1000
		altM[i] = pt.ElevationM
	}
	out := fetch.BuildProfile(p.Name, distM, altM, binKm, latStep)
	out.StartElevationM = p.StartElevationM
	return out
}

func (s *Server) deleteProfile(w http.ResponseWriter, id string) {
	if err := s.store.DeleteProfile(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			httputil.NotFound(w, "profile not found")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to delete profile: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderRequest is the POST /api/render body: an inline profile plus an
// optional config overlay on top of the server defaults.
type renderRequest struct {
	Profile *profile.ClimbProfile `json:"profile"`
	Config  *json.RawMessage      `json:"config,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "png" {
		httputil.BadRequest(w, "invalid 'format' parameter (want svg or png)")
		return
	}

	density := 1.0
	if d := r.URL.Query().Get("density"); d != "" {
		parsed, err := strconv.ParseFloat(d, 64)
		if err != nil || parsed <= 0 || parsed > 8 {
			httputil.BadRequest(w, "invalid 'density' parameter")
			return
		}
		density = parsed
	}

	var p *profile.ClimbProfile
	cfg := s.cfg

	switch r.Method {
	case http.MethodGet:
		id := r.URL.Query().Get("id")
		if id == "" {
			httputil.BadRequest(w, "missing 'id' parameter")
			return
		}
		stored, err := s.store.GetProfile(id)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				httputil.NotFound(w, "profile not found")
				return
			}
			httputil.InternalServerError(w, fmt.Sprintf("failed to load profile: %v", err))
			return
		}
		p = stored

	case http.MethodPost:
		var req renderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("invalid render body: %v", err))
			return
		}
		if req.Profile == nil || len(req.Profile.Segments) == 0 {
			httputil.BadRequest(w, "render body has no profile segments")
			return
		}
		p = req.Profile
		if req.Config != nil {
			if err := json.Unmarshal(*req.Config, &cfg); err != nil {
				httputil.BadRequest(w, fmt.Sprintf("invalid config overlay: %v", err))
				return
			}
			cfg.Sanitize()
		}

	default:
		httputil.MethodNotAllowed(w)
		return
	}

	model := s.builder.Model(p, cfg)
	im := render.Render(model, cfg)

	w.Header().Set("Content-Type", export.ContentType(format))
	if err := export.Encode(w, im, format, density, nil); err != nil {
		log.Printf("render encode failed: %v", err)
	}
}

// handleImport pulls a segment from the configured upstream, bins it, and
// stores the result.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.source == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no upstream source configured")
		return
	}

	segmentID, err := strconv.ParseInt(r.URL.Query().Get("segment_id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "invalid 'segment_id' parameter")
		return
	}
	binKm := 0.5
	if bk := r.URL.Query().Get("bin_km"); bk != "" {
		binKm, err = strconv.ParseFloat(bk, 64)
		if err != nil || binKm <= 0 {
			httputil.BadRequest(w, "invalid 'bin_km' parameter")
			return
		}
	}
	latStep := 1
	if ls := r.URL.Query().Get("lat_step"); ls != "" {
		latStep, err = strconv.Atoi(ls)
		if err != nil || latStep < 1 {
			httputil.BadRequest(w, "invalid 'lat_step' parameter")
			return
		}
	}

	p, err := s.source.FetchProfile(r.Context(), segmentID, binKm, latStep)
	if err != nil {
		if fe, ok := fetch.AsError(err); ok {
			httputil.WriteJSONError(w, fe.Status, fe.Error())
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to fetch segment: %v", err))
		return
	}
	if name := r.URL.Query().Get("name"); name != "" {
		p.Name = name
	}

	id, err := s.store.SaveProfile(p)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to save profile: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": version.String(),
		"render":  s.cfg,
	})
}
