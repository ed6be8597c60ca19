// Package fetch retrieves raw distance/elevation streams for a climb segment
// from a remote source and reduces them to the segment list the geometry
// pipeline consumes: decimation, fixed-distance binning with edge-interpolated
// elevation, and per-bin average grade.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/climb-data/climb.report/internal/httputil"
	"github.com/climb-data/climb.report/internal/monitoring"
	"github.com/climb-data/climb.report/internal/profile"
)

var logf = monitoring.Prefixed("fetch")

// Error classification codes. This is the only hard failure boundary in the
// system; everything downstream of a fetched profile sanitizes instead.
const (
	CodeInvalidSegment = "invalid_segment"
	CodeUpstream       = "upstream"
	CodeMissingStream  = "missing_stream"
)

// Error is a classified fetch failure with an HTTP-like status.
type Error struct {
	Code   string
	Status int
	err    error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("fetch %s (status %d): %v", e.Code, e.Status, e.err)
	}
	return fmt.Sprintf("fetch %s (status %d)", e.Code, e.Status)
}

func (e *Error) Unwrap() error { return e.err }

// AsError extracts a classified fetch error, if err carries one.
func AsError(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}

// Source fetches segment streams over HTTP.
type Source struct {
	BaseURL string
	Client  httputil.Client
}

// NewSource builds a source for the given endpoint, defaulting to the
// standard HTTP client.
func NewSource(baseURL string, client httputil.Client) *Source {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &Source{BaseURL: baseURL, Client: client}
}

// streamsPayload is the upstream response shape: parallel sample arrays of
// cumulative distance (m) and altitude (m).
type streamsPayload struct {
	Name     string    `json:"name"`
	Distance []float64 `json:"distance"`
	Altitude []float64 `json:"altitude"`
}

// FetchProfile retrieves the raw streams for segmentID and reduces them to a
// ClimbProfile with binKm-long segments. latStep decimates the raw samples
// (every latStep-th sample is kept) before binning.
func (s *Source) FetchProfile(ctx context.Context, segmentID int64, binKm float64, latStep int) (*profile.ClimbProfile, error) {
	if segmentID <= 0 {
		return nil, &Error{Code: CodeInvalidSegment, Status: http.StatusBadRequest,
			err: fmt.Errorf("segment id %d", segmentID)}
	}

	url := fmt.Sprintf("%s/segments/%d/streams?keys=distance,altitude", s.BaseURL, segmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Code: CodeUpstream, Status: http.StatusInternalServerError, err: err}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &Error{Code: CodeUpstream, Status: http.StatusBadGateway, err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Code: CodeInvalidSegment, Status: http.StatusNotFound,
			err: fmt.Errorf("segment %d not found", segmentID)}
	case resp.StatusCode != http.StatusOK:
		return nil, &Error{Code: CodeUpstream, Status: http.StatusBadGateway,
			err: fmt.Errorf("upstream returned %d", resp.StatusCode)}
	}

	var payload streamsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Code: CodeUpstream, Status: http.StatusBadGateway,
			err: fmt.Errorf("failed to decode streams: %w", err)}
	}

	if len(payload.Distance) == 0 || len(payload.Altitude) == 0 {
		return nil, &Error{Code: CodeMissingStream, Status: http.StatusUnprocessableEntity,
			err: fmt.Errorf("segment %d has no distance/altitude streams", segmentID)}
	}
	if len(payload.Distance) != len(payload.Altitude) {
		return nil, &Error{Code: CodeMissingStream, Status: http.StatusUnprocessableEntity,
			err: fmt.Errorf("stream lengths differ: %d distance vs %d altitude",
				len(payload.Distance), len(payload.Altitude))}
	}

	name := payload.Name
	if name == "" {
		name = fmt.Sprintf("Segment %d", segmentID)
	}
	return BuildProfile(name, payload.Distance, payload.Altitude, binKm, latStep), nil
}

// samplePoint is one raw observation: cumulative distance and altitude in
// meters.
type samplePoint struct {
	distM float64
	elevM float64
}

// BuildProfile reduces raw parallel streams to a binned ClimbProfile. It
// never fails; unusable samples are dropped and degenerate parameters are
// clamped.
func BuildProfile(name string, distM, altM []float64, binKm float64, latStep int) *profile.ClimbProfile {
	if latStep < 1 {
		latStep = 1
	}
	if binKm <= 0 || math.IsNaN(binKm) {
		binKm = 0.2
	}

	pts := toPoints(distM, altM, latStep)
	p := &profile.ClimbProfile{Name: name}
	if len(pts) < 2 {
		return p
	}
	start := pts[0].elevM
	p.StartElevationM = &start
	p.Segments = binSegments(pts, binKm*1000)
	return p
}

// toPoints pairs the streams, decimates, and drops non-monotonic or
// non-finite samples.
func toPoints(distM, altM []float64, latStep int) []samplePoint {
	n := len(distM)
	if len(altM) < n {
		n = len(altM)
	}

	dropped := 0
	pts := make([]samplePoint, 0, n/latStep+1)
	for i := 0; i < n; i += latStep {
		d, e := distM[i], altM[i]
		if math.IsNaN(d) || math.IsInf(d, 0) || math.IsNaN(e) || math.IsInf(e, 0) {
			dropped++
			continue
		}
		if len(pts) > 0 && d <= pts[len(pts)-1].distM {
			dropped++
			continue
		}
		pts = append(pts, samplePoint{distM: d, elevM: e})
	}
	if dropped > 0 {
		logf("dropped %d non-finite or non-monotonic samples", dropped)
	}
	// Always keep the final sample so the last partial bin reaches the top.
	if n > 0 && (n-1)%latStep != 0 {
		d, e := distM[n-1], altM[n-1]
		if !math.IsNaN(d) && !math.IsInf(d, 0) && !math.IsNaN(e) && !math.IsInf(e, 0) &&
			(len(pts) == 0 || d > pts[len(pts)-1].distM) {
			pts = append(pts, samplePoint{distM: d, elevM: e})
		}
	}
	return pts
}

// elevationAt interpolates altitude at distance d along the samples.
func elevationAt(pts []samplePoint, d float64) float64 {
	if d <= pts[0].distM {
		return pts[0].elevM
	}
	for i := 1; i < len(pts); i++ {
		if d <= pts[i].distM {
			span := pts[i].distM - pts[i-1].distM
			if span <= 0 {
				return pts[i].elevM
			}
			t := (d - pts[i-1].distM) / span
			return pts[i-1].elevM + t*(pts[i].elevM-pts[i-1].elevM)
		}
	}
	return pts[len(pts)-1].elevM
}

// binSegments slices the samples into fixed-length bins with
// edge-interpolated elevation. Bin grade is riseM over the bin's length.
func binSegments(pts []samplePoint, binM float64) []profile.Segment {
	startM := pts[0].distM
	endM := pts[len(pts)-1].distM
	totalM := endM - startM
	if totalM <= 0 {
		return nil
	}

	var segments []profile.Segment
	prevElev := pts[0].elevM
	for fromM := 0.0; fromM < totalM; fromM += binM {
		toM := math.Min(fromM+binM, totalM)
		lenM := toM - fromM
		if lenM <= 0 {
			break
		}
		elev := elevationAt(pts, startM+toM)
		riseM := elev - prevElev
		prevElev = elev

		segments = append(segments, profile.Segment{
			LengthKm:     lenM / 1000,
			GradePercent: riseM / lenM * 100,
		})
	}
	return segments
}
