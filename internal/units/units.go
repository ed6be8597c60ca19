// Package units provides shared constants and conversions for the metric and
// imperial display systems. Geometry always works in kilometers; only labels
// and grid steps pass through these conversions.
package units

import (
	"fmt"
	"strconv"
)

// Display system constants
const (
	Metric   = "metric"
	Imperial = "imperial"
)

// Conversion factors
const (
	KmPerMile    = 1.609344
	FeetPerMeter = 3.28084
)

// ValidSystems contains all valid display system values
var ValidSystems = []string{Metric, Imperial}

// IsValid checks if the given system is in the list of valid display systems
func IsValid(system string) bool {
	for _, s := range ValidSystems {
		if system == s {
			return true
		}
	}
	return false
}

// DistanceUnit returns the distance unit suffix for the system ("km" or "mi")
func DistanceUnit(system string) string {
	if system == Imperial {
		return "mi"
	}
	return "km"
}

// ElevationUnit returns the elevation unit suffix for the system ("m" or "ft")
func ElevationUnit(system string) string {
	if system == Imperial {
		return "ft"
	}
	return "m"
}

// DistanceFromKm converts kilometers to display distance units
func DistanceFromKm(km float64, system string) float64 {
	if system == Imperial {
		return km / KmPerMile
	}
	return km
}

// DistanceToKm converts a display distance value back to kilometers
func DistanceToKm(v float64, system string) float64 {
	if system == Imperial {
		return v * KmPerMile
	}
	return v
}

// ElevationFromMeters converts meters to display elevation units
func ElevationFromMeters(m float64, system string) float64 {
	if system == Imperial {
		return m * FeetPerMeter
	}
	return m
}

// ElevationToMeters converts a display elevation value back to meters
func ElevationToMeters(v float64, system string) float64 {
	if system == Imperial {
		return v / FeetPerMeter
	}
	return v
}

// FormatValue renders a numeric label without trailing zeros (12, 12.5)
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDistance renders a distance label with its unit suffix, e.g. "12.5 km"
func FormatDistance(km float64, system string) string {
	return fmt.Sprintf("%s %s", FormatValue(round1(DistanceFromKm(km, system))), DistanceUnit(system))
}

// FormatElevation renders an elevation label with its unit suffix, e.g. "980 m"
func FormatElevation(m float64, system string) string {
	return fmt.Sprintf("%d %s", int(ElevationFromMeters(m, system)+0.5), ElevationUnit(system))
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
