package profile

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAccumulate(t *testing.T) {
	segs := []Segment{
		{LengthKm: 1, GradePercent: 10},
		{LengthKm: 1, GradePercent: -5},
	}

	got := Accumulate(segs)

	want := []AccumulatedPoint{
		{DistanceKm: 0, ElevationM: 0},
		{DistanceKm: 1, ElevationM: 100},
		{DistanceKm: 2, ElevationM: 50},
	}
	if diff := cmp.Diff(want, got.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if got.TotalKm != 2 {
		t.Errorf("TotalKm = %v, want 2", got.TotalKm)
	}
	if got.TotalGainM != 100 {
		t.Errorf("TotalGainM = %v, want 100 (descents must not subtract)", got.TotalGainM)
	}
}

func TestAccumulateSanitizesInput(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		wantKm   float64
		wantElev float64
	}{
		{"negative length clamped", []Segment{{LengthKm: -3, GradePercent: 10}}, 0, 0},
		{"NaN length clamped", []Segment{{LengthKm: math.NaN(), GradePercent: 10}}, 0, 0},
		{"Inf length clamped", []Segment{{LengthKm: math.Inf(1), GradePercent: 10}}, 0, 0},
		{"NaN grade flattened", []Segment{{LengthKm: 2, GradePercent: math.NaN()}}, 2, 0},
		{"Inf grade flattened", []Segment{{LengthKm: 2, GradePercent: math.Inf(-1)}}, 2, 0},
		{"zero-length segment keeps its slot", []Segment{{LengthKm: 0, GradePercent: 12}}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Accumulate(tt.segments)
			if len(got.Points) != len(tt.segments)+1 {
				t.Fatalf("len(points) = %d, want %d", len(got.Points), len(tt.segments)+1)
			}
			last := got.Points[len(got.Points)-1]
			if last.DistanceKm != tt.wantKm {
				t.Errorf("final distance = %v, want %v", last.DistanceKm, tt.wantKm)
			}
			if last.ElevationM != tt.wantElev {
				t.Errorf("final elevation = %v, want %v", last.ElevationM, tt.wantElev)
			}
		})
	}
}

func TestAccumulateMonotonicDistance(t *testing.T) {
	segs := []Segment{
		{LengthKm: 0.5, GradePercent: 4},
		{LengthKm: 0, GradePercent: 9},
		{LengthKm: -1, GradePercent: 2},
		{LengthKm: 2.5, GradePercent: -3},
		{LengthKm: 1.2, GradePercent: 11},
	}

	got := Accumulate(segs)

	var sum float64
	for _, s := range segs {
		if s.LengthKm > 0 {
			sum += s.LengthKm
		}
	}
	for i := 1; i < len(got.Points); i++ {
		if got.Points[i].DistanceKm < got.Points[i-1].DistanceKm {
			t.Errorf("distance decreased at point %d: %v < %v",
				i, got.Points[i].DistanceKm, got.Points[i-1].DistanceKm)
		}
	}
	if math.Abs(got.Points[len(got.Points)-1].DistanceKm-sum) > 1e-12 {
		t.Errorf("final distance = %v, want %v", got.Points[len(got.Points)-1].DistanceKm, sum)
	}
}

func TestElevationRange(t *testing.T) {
	acc := Accumulate([]Segment{
		{LengthKm: 1, GradePercent: -10},
		{LengthKm: 2, GradePercent: 15},
	})

	minM, maxM := acc.ElevationRange()
	if minM != -100 {
		t.Errorf("min = %v, want -100", minM)
	}
	if maxM != 200 {
		t.Errorf("max = %v, want 200", maxM)
	}
}

func TestAvgGrade(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     float64
	}{
		{"uniform", []Segment{{LengthKm: 1, GradePercent: 10}}, 10},
		{"weighted", []Segment{{LengthKm: 1, GradePercent: 10}, {LengthKm: 3, GradePercent: 2}}, 4},
		{"zero distance guarded", nil, 0},
		{"descent included", []Segment{{LengthKm: 1, GradePercent: 10}, {LengthKm: 1, GradePercent: -10}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvgGrade(tt.segments)
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("AvgGrade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	start := 450.0
	p := &ClimbProfile{
		Name:            "Col d'Test",
		Segments:        []Segment{{LengthKm: 1, GradePercent: 8}},
		StartElevationM: &start,
	}

	c := p.Clone()
	c.Segments[0].GradePercent = 99
	*c.StartElevationM = 0

	if p.Segments[0].GradePercent != 8 {
		t.Error("clone shares segment backing array with original")
	}
	if *p.StartElevationM != 450 {
		t.Error("clone shares start elevation pointer with original")
	}
}
