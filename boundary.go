package cocoviz

// Workspace boundary sidecar files.
//
// A boundary file sits next to its image, sharing the base name with a .txt
// extension. Its fields are separated by semicolons:
//
//	1;  [[x1,y1],[x2,y2],[x3,y3],[x4,y4]];  ...
//
// The second field is a four-point list whose first and third points span the
// boundary rectangle.

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// loadBoundary reads the workspace boundary for the image at imagePath, if a
// sidecar file exists. A missing sidecar is not an error and returns nil.
func loadBoundary(imagePath string) (*image.Rectangle, error) {
	ext := filepath.Ext(imagePath)
	sidecarPath := imagePath[:len(imagePath)-len(ext)] + ".txt"

	content, err := os.ReadFile(sidecarPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read boundary file %q: %v", sidecarPath, err)
	}

	r, err := parseBoundary(string(content))
	if err != nil {
		return nil, fmt.Errorf("invalid boundary file %q: %w", sidecarPath, err)
	}
	return &r, nil
}

// parseBoundary extracts the boundary rectangle from the sidecar content.
func parseBoundary(content string) (image.Rectangle, error) {
	parts := strings.Split(content, ";")
	if len(parts) < 2 {
		return image.Rectangle{}, fmt.Errorf(
			"%w: boundary definition has %d fields, want at least 2", ErrGeometry, len(parts))
	}

	points, err := parsePointList(strings.TrimSpace(parts[1]))
	if err != nil {
		return image.Rectangle{}, err
	}
	if len(points) != 4 {
		return image.Rectangle{}, fmt.Errorf(
			"%w: boundary has %d points, want 4", ErrGeometry, len(points))
	}

	// Opposite corners of the boundary rectangle.
	return image.Rect(
		int(points[0][0]), int(points[0][1]),
		int(points[2][0]), int(points[2][1])), nil
}

// parsePointList parses a nested list of the form [[x,y],[x,y],...].
func parsePointList(s string) ([][2]float64, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("%w: point list %q is not bracketed", ErrGeometry, s)
	}

	var points [][2]float64
	inner := strings.TrimSpace(s[1 : len(s)-1])
	for inner != "" {
		end := strings.Index(inner, "]")
		if !strings.HasPrefix(inner, "[") || end < 0 {
			return nil, fmt.Errorf("%w: malformed point in %q", ErrGeometry, s)
		}

		pair := strings.Split(inner[1:end], ",")
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: point with %d values in %q", ErrGeometry, len(pair), s)
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(pair[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(pair[1]), 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: non-numeric point in %q", ErrGeometry, s)
		}
		points = append(points, [2]float64{x, y})

		inner = strings.TrimSpace(inner[end+1:])
		inner = strings.TrimSpace(strings.TrimPrefix(inner, ","))
	}

	return points, nil
}
