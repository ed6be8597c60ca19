// Command render draws a single climb profile to an SVG or PNG file.
//
// Usage:
//
//	render -in climb.json -o climb.svg
//	render -in climb.json -o climb.png -density 2 -config render.json
//
// The input file is a JSON profile: {"name": ..., "segments": [{"km": ..., "grade": ...}]}.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"github.com/climb-data/climb.report/internal/config"
	"github.com/climb-data/climb.report/internal/export"
	"github.com/climb-data/climb.report/internal/profile"
	"github.com/climb-data/climb.report/internal/render"
	"github.com/climb-data/climb.report/internal/scene"
)

var (
	inFile     = flag.String("in", "", "Path to a profile JSON file (- for stdin)")
	outFile    = flag.String("o", "climb.svg", "Output path (.svg or .png)")
	configFile = flag.String("config", "", "Path to a JSON render config overlay")
	density    = flag.Float64("density", 1, "Pixel density multiplier for PNG output")
)

func main() {
	flag.Parse()

	if *inFile == "" {
		log.Fatal("-in is required")
	}

	var data []byte
	var err error
	if *inFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*inFile)
	}
	if err != nil {
		log.Fatalf("failed to read profile: %v", err)
	}

	var p profile.ClimbProfile
	if err := json.Unmarshal(data, &p); err != nil {
		log.Fatalf("failed to parse profile: %v", err)
	}
	if len(p.Segments) == 0 {
		log.Fatal("profile has no segments")
	}

	cfg := config.Default()
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	m := scene.Build(&p, cfg)
	im := render.Render(m, cfg)
	if err := export.WriteFile(*outFile, im, *density, nil); err != nil {
		log.Fatalf("failed to write %s: %v", *outFile, err)
	}
	log.Printf("wrote %s", *outFile)
}
