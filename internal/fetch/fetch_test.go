package fetch

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climb-data/climb.report/internal/httputil"
	"github.com/climb-data/climb.report/internal/profile"
)

func TestBuildProfileBinsUniformGrade(t *testing.T) {
	// 2000 m at a constant 10%: 200 m of rise, four 500 m bins.
	dist := []float64{0, 500, 1000, 1500, 2000}
	alt := []float64{100, 150, 200, 250, 300}

	p := BuildProfile("Uniform", dist, alt, 0.5, 1)

	require.Len(t, p.Segments, 4)
	for i, s := range p.Segments {
		assert.InDelta(t, 0.5, s.LengthKm, 1e-12, "bin %d length", i)
		assert.InDelta(t, 10, s.GradePercent, 1e-9, "bin %d grade", i)
	}
	require.NotNil(t, p.StartElevationM)
	assert.Equal(t, 100.0, *p.StartElevationM)

	acc := profile.Accumulate(p.Segments)
	assert.InDelta(t, 2, acc.TotalKm, 1e-12)
	assert.Equal(t, 200, acc.TotalGainM)
}

func TestBuildProfileEdgeInterpolation(t *testing.T) {
	// Samples every 300 m but 200 m bins: bin edges fall between samples and
	// must be interpolated, not snapped.
	dist := []float64{0, 300, 600}
	alt := []float64{0, 30, 30}

	p := BuildProfile("Interp", dist, alt, 0.2, 1)

	require.Len(t, p.Segments, 3)
	// First bin: 0→200 m on the 10% ramp.
	assert.InDelta(t, 10, p.Segments[0].GradePercent, 1e-9)
	// Second bin: 200→400 m, half ramp (10 m rise over first 100 m) then flat.
	assert.InDelta(t, 5, p.Segments[1].GradePercent, 1e-9)
	// Third bin: flat.
	assert.InDelta(t, 0, p.Segments[2].GradePercent, 1e-9)
}

func TestBuildProfilePartialFinalBin(t *testing.T) {
	// 700 m total with 500 m bins: the last bin is 200 m long and its grade
	// uses the actual bin length, not the nominal one.
	dist := []float64{0, 700}
	alt := []float64{0, 70}

	p := BuildProfile("Partial", dist, alt, 0.5, 1)

	require.Len(t, p.Segments, 2)
	assert.InDelta(t, 0.5, p.Segments[0].LengthKm, 1e-12)
	assert.InDelta(t, 0.2, p.Segments[1].LengthKm, 1e-9)
	assert.InDelta(t, 10, p.Segments[0].GradePercent, 1e-9)
	assert.InDelta(t, 10, p.Segments[1].GradePercent, 1e-9)
}

func TestBuildProfileDecimation(t *testing.T) {
	dist := make([]float64, 101)
	alt := make([]float64, 101)
	for i := range dist {
		dist[i] = float64(i * 10)            // 1000 m total
		alt[i] = float64(i) + 5*math.Sin(float64(i)) // noisy 10% trend
	}

	p := BuildProfile("Decimated", dist, alt, 1, 10)
	require.Len(t, p.Segments, 1)
	// Endpoints survive decimation, so the overall rise is exact.
	assert.InDelta(t, (alt[100]-alt[0])/1000*100, p.Segments[0].GradePercent, 1e-9)
}

func TestBuildProfileSanitizesSamples(t *testing.T) {
	tests := []struct {
		name string
		dist []float64
		alt  []float64
	}{
		{"empty", nil, nil},
		{"single sample", []float64{0}, []float64{10}},
		{"all NaN", []float64{math.NaN(), math.NaN()}, []float64{1, 2}},
		{"non-monotonic only", []float64{100, 100, 50}, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildProfile("x", tt.dist, tt.alt, 0.5, 1)
			require.NotNil(t, p)
			assert.Empty(t, p.Segments)
		})
	}
}

func TestFetchProfile(t *testing.T) {
	mock := &httputil.MockClient{}
	mock.Queue(200, `{
		"name": "Col de Test",
		"distance": [0, 500, 1000],
		"altitude": [400, 440, 500]
	}`)
	src := NewSource("http://upstream", mock)

	p, err := src.FetchProfile(context.Background(), 42, 0.5, 1)
	require.NoError(t, err)
	assert.Equal(t, "Col de Test", p.Name)
	require.Len(t, p.Segments, 2)
	assert.InDelta(t, 8, p.Segments[0].GradePercent, 1e-9)
	assert.InDelta(t, 12, p.Segments[1].GradePercent, 1e-9)

	require.Len(t, mock.Requests, 1)
	assert.Equal(t, "/segments/42/streams", mock.Requests[0].URL.Path)
}

func TestFetchProfileErrors(t *testing.T) {
	tests := []struct {
		name       string
		segmentID  int64
		setup      func(*httputil.MockClient)
		wantCode   string
		wantStatus int
	}{
		{
			"invalid id", 0,
			func(m *httputil.MockClient) {},
			CodeInvalidSegment, http.StatusBadRequest,
		},
		{
			"not found", 7,
			func(m *httputil.MockClient) { m.Queue(404, "") },
			CodeInvalidSegment, http.StatusNotFound,
		},
		{
			"upstream 500", 7,
			func(m *httputil.MockClient) { m.Queue(500, "") },
			CodeUpstream, http.StatusBadGateway,
		},
		{
			"transport error", 7,
			func(m *httputil.MockClient) { m.QueueError(errors.New("conn refused")) },
			CodeUpstream, http.StatusBadGateway,
		},
		{
			"bad json", 7,
			func(m *httputil.MockClient) { m.Queue(200, "{nope") },
			CodeUpstream, http.StatusBadGateway,
		},
		{
			"missing streams", 7,
			func(m *httputil.MockClient) { m.Queue(200, `{"name":"x","distance":[],"altitude":[]}`) },
			CodeMissingStream, http.StatusUnprocessableEntity,
		},
		{
			"mismatched streams", 7,
			func(m *httputil.MockClient) {
				m.Queue(200, `{"distance":[0,1,2],"altitude":[0,1]}`)
			},
			CodeMissingStream, http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &httputil.MockClient{}
			tt.setup(mock)
			src := NewSource("http://upstream", mock)

			_, err := src.FetchProfile(context.Background(), tt.segmentID, 0.5, 1)
			require.Error(t, err)

			fe, ok := AsError(err)
			require.True(t, ok, "error must be classified: %v", err)
			assert.Equal(t, tt.wantCode, fe.Code)
			assert.Equal(t, tt.wantStatus, fe.Status)
		})
	}
}
