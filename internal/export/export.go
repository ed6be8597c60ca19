// Package export serializes a rendered frame: SVG verbatim, or PNG
// rasterized at a pixel-density multiplier. Theme color variables are
// resolved to concrete values before anything is written, so exported files
// never carry var(--name) references.
package export

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/climb-data/climb.report/internal/draw"
	"github.com/climb-data/climb.report/internal/style"
)

// ContentType returns the MIME type for a format accepted by Encode.
func ContentType(format string) string {
	if strings.EqualFold(format, "png") {
		return "image/png"
	}
	return "image/svg+xml"
}

// Encode writes the image to w in the given format ("svg" or "png").
// density only affects raster output. A nil theme uses the default palette.
func Encode(w io.Writer, im *draw.Image, format string, density float64, theme map[string]string) error {
	if theme == nil {
		theme = style.DefaultTheme()
	}
	resolved := im.Transform(func(c string) string { return style.Resolve(theme, c) })

	switch strings.ToLower(format) {
	case "svg":
		draw.WriteSVG(w, resolved)
	case "png":
		if err := png.Encode(w, draw.Rasterize(resolved, density)); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q (want svg or png)", format)
	}
	return nil
}

// WriteFile writes the image to path, choosing the format from the file
// extension (.svg or .png). density only affects raster output.
func WriteFile(path string, im *draw.Image, density float64, theme map[string]string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext != "svg" && ext != "png" {
		return fmt.Errorf("unsupported output format %q (want .svg or .png)", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := Encode(f, im, ext, density, theme); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	return nil
}
