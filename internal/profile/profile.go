// Package profile models a climb as an ordered sequence of distance/grade
// segments and accumulates them into cumulative distance and elevation points.
package profile

import "math"

// Segment is one stretch of road ridden at a constant average grade.
type Segment struct {
	LengthKm     float64 `json:"km"`
	GradePercent float64 `json:"grade"`
}

// ClimbProfile is a named, ordered segment list. StartElevationM, when set,
// offsets absolute elevation labels only; geometry is driven by relative
// elevation.
type ClimbProfile struct {
	Name            string    `json:"name"`
	Segments        []Segment `json:"segments"`
	StartElevationM *float64  `json:"start_elevation_m,omitempty"`
}

// Clone returns an independent copy of the profile.
func (p *ClimbProfile) Clone() *ClimbProfile {
	out := &ClimbProfile{Name: p.Name}
	out.Segments = append([]Segment(nil), p.Segments...)
	if p.StartElevationM != nil {
		v := *p.StartElevationM
		out.StartElevationM = &v
	}
	return out
}

// AccumulatedPoint is one segment boundary, starting from (0,0).
type AccumulatedPoint struct {
	DistanceKm float64 `json:"distance_km"`
	ElevationM float64 `json:"elevation_m"`
}

// Accumulation is the result of walking a segment list.
type Accumulation struct {
	Points     []AccumulatedPoint `json:"points"`
	TotalKm    float64            `json:"total_km"`
	TotalGainM int                `json:"total_gain_m"`
}

// sanitizeLength clamps negative and non-finite lengths to zero. The pipeline
// never fails on bad input; it renders whatever geometry remains.
func sanitizeLength(km float64) float64 {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return 0
	}
	return km
}

// sanitizeGrade treats non-finite grades as flat.
func sanitizeGrade(pct float64) float64 {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return pct
}

// Accumulate converts segments into cumulative distance/elevation points.
// Points[0] is always (0,0). A segment of length L km at grade g percent
// rises L*g*10 meters. TotalGainM sums only positive rises; descents do not
// subtract from gain.
func Accumulate(segments []Segment) Accumulation {
	points := make([]AccumulatedPoint, 1, len(segments)+1)
	points[0] = AccumulatedPoint{}

	var distKm, elevM, gainM float64
	for _, s := range segments {
		lengthKm := sanitizeLength(s.LengthKm)
		riseM := lengthKm * sanitizeGrade(s.GradePercent) * 10

		distKm += lengthKm
		elevM += riseM
		if riseM > 0 {
			gainM += riseM
		}
		points = append(points, AccumulatedPoint{DistanceKm: distKm, ElevationM: elevM})
	}

	return Accumulation{
		Points:     points,
		TotalKm:    distKm,
		TotalGainM: int(math.Round(gainM)),
	}
}

// ElevationRange returns the minimum and maximum cumulative elevation.
func (a Accumulation) ElevationRange() (minM, maxM float64) {
	for _, pt := range a.Points {
		if pt.ElevationM < minM {
			minM = pt.ElevationM
		}
		if pt.ElevationM > maxM {
			maxM = pt.ElevationM
		}
	}
	return minM, maxM
}

// AvgGrade returns the distance-weighted average grade in percent. A zero
// total distance is treated as 1 km to guard the division.
func AvgGrade(segments []Segment) float64 {
	var riseM, distKm float64
	for _, s := range segments {
		lengthKm := sanitizeLength(s.LengthKm)
		riseM += lengthKm * sanitizeGrade(s.GradePercent) * 10
		distKm += lengthKm
	}
	if distKm == 0 {
		distKm = 1
	}
	return riseM / (distKm * 1000) * 100
}
