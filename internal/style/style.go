// Package style maps grade values to display colors and resolves theme
// color variables for export.
package style

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// GradeBucket colors all grades at or below UpTo. Bucket lists must be
// sorted by ascending UpTo; by convention the last bucket carries
// UpTo = +Inf as the catch-all.
type GradeBucket struct {
	UpTo  float64 `json:"up_to"`
	Color string  `json:"color"`
}

// MarshalJSON emits null for an infinite UpTo so bucket lists survive a JSON
// round trip (encoding/json rejects +Inf).
func (b GradeBucket) MarshalJSON() ([]byte, error) {
	type alias struct {
		UpTo  *float64 `json:"up_to"`
		Color string   `json:"color"`
	}
	a := alias{Color: b.Color}
	if !math.IsInf(b.UpTo, 1) {
		v := b.UpTo
		a.UpTo = &v
	}
	return json.Marshal(a)
}

// UnmarshalJSON maps a null or missing up_to back to +Inf.
func (b *GradeBucket) UnmarshalJSON(data []byte) error {
	type alias struct {
		UpTo  *float64 `json:"up_to"`
		Color string   `json:"color"`
	}
	var a alias
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&a); err != nil {
		return fmt.Errorf("failed to decode grade bucket: %w", err)
	}
	b.Color = a.Color
	b.UpTo = math.Inf(1)
	if a.UpTo != nil {
		b.UpTo = *a.UpTo
	}
	return nil
}

// ColorForGrade returns the color of the first bucket whose UpTo is at least
// grade. When no bucket matches (the caller omitted the +Inf terminal), the
// last bucket wins. An empty bucket list yields "".
func ColorForGrade(grade float64, buckets []GradeBucket) string {
	if len(buckets) == 0 {
		return ""
	}
	for _, b := range buckets {
		if b.UpTo >= grade {
			return b.Color
		}
	}
	return buckets[len(buckets)-1].Color
}

// DefaultBuckets is the standard climb-grade palette: green flats through
// dark red walls.
func DefaultBuckets() []GradeBucket {
	return []GradeBucket{
		{UpTo: 4, Color: "#4caf50"},
		{UpTo: 7, Color: "#ffc107"},
		{UpTo: 10, Color: "#ff7043"},
		{UpTo: 14, Color: "#e53935"},
		{UpTo: math.Inf(1), Color: "#7b1fa2"},
	}
}

// BucketLabel renders a legend label for the bucket at index i, e.g. "≤4%",
// "4–7%", ">14%" for the infinite terminal.
func BucketLabel(buckets []GradeBucket, i int) string {
	b := buckets[i]
	if math.IsInf(b.UpTo, 1) {
		if i == 0 {
			return "all grades"
		}
		return fmt.Sprintf(">%g%%", buckets[i-1].UpTo)
	}
	if i == 0 {
		return fmt.Sprintf("≤%g%%", b.UpTo)
	}
	return fmt.Sprintf("%g–%g%%", buckets[i-1].UpTo, b.UpTo)
}

// DefaultTheme maps theme variable names to concrete colors. Export
// substitutes these so serialized files carry no unresolved variables.
func DefaultTheme() map[string]string {
	return map[string]string{
		"face":      "#e8e0d2",
		"face-edge": "#8d8575",
		"platform":  "#cfc6b4",
		"wall":      "#b3a98f",
		"grid":      "#b8b0a0",
		"ink":       "#3b3a36",
		"road-dash": "#fffdf5",
	}
}

// Resolve substitutes a var(--name) color reference with its theme value.
// Concrete colors and unknown variables pass through unchanged.
func Resolve(theme map[string]string, color string) string {
	const prefix = "var(--"
	if !strings.HasPrefix(color, prefix) || !strings.HasSuffix(color, ")") {
		return color
	}
	name := color[len(prefix) : len(color)-1]
	if v, ok := theme[name]; ok {
		return v
	}
	return color
}
