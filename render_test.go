package cocoviz

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return img
}

func TestRenderAnnotationsBoxOutline(t *testing.T) {
	ann := Annotation{Coords: [4]float64{10, 10, 60, 60}}

	annotated, masked, err := RenderAnnotations(whiteImage(100, 100), []Annotation{ann}, RenderOptions{})
	require.NoError(t, err)
	require.Nil(t, masked)

	// Outline pixels on all four edges, two pixels wide, growing inwards.
	require.Equal(t, boxColor, annotated.RGBAAt(10, 10))
	require.Equal(t, boxColor, annotated.RGBAAt(35, 10))
	require.Equal(t, boxColor, annotated.RGBAAt(35, 11))
	require.Equal(t, boxColor, annotated.RGBAAt(10, 35))
	require.Equal(t, boxColor, annotated.RGBAAt(59, 35))
	require.Equal(t, boxColor, annotated.RGBAAt(35, 59))

	// Interior and exterior untouched.
	require.Equal(t, white, annotated.RGBAAt(35, 35))
	require.Equal(t, white, annotated.RGBAAt(9, 9))
	require.Equal(t, white, annotated.RGBAAt(61, 61))
}

func TestRenderAnnotationsLabel(t *testing.T) {
	ann := Annotation{Label: "cat", Coords: [4]float64{20, 30, 60, 60}}

	annotated, _, err := RenderAnnotations(whiteImage(100, 100), []Annotation{ann}, RenderOptions{})
	require.NoError(t, err)

	// The backdrop sits directly above the box corner.
	require.Equal(t, boxColor, annotated.RGBAAt(21, 29))
	require.Equal(t, boxColor, annotated.RGBAAt(21, 14))
	require.Equal(t, white, annotated.RGBAAt(21, 12))
}

func TestRenderAnnotationsLabelClampedAtTopEdge(t *testing.T) {
	ann := Annotation{Label: "cat", Coords: [4]float64{5, 5, 40, 40}}

	annotated, _, err := RenderAnnotations(whiteImage(100, 100), []Annotation{ann}, RenderOptions{})
	require.NoError(t, err)

	require.Equal(t, boxColor, annotated.RGBAAt(6, 0))
	require.Equal(t, boxColor, annotated.RGBAAt(6, 1))
}

func TestRenderAnnotationsPolygonOverlay(t *testing.T) {
	ann := Annotation{
		Coords:   [4]float64{10, 10, 40, 40},
		Polygons: [][]float64{{10, 10, 40, 10, 40, 40}},
	}

	annotated, _, err := RenderAnnotations(whiteImage(100, 100), []Annotation{ann}, RenderOptions{})
	require.NoError(t, err)

	// A point inside the triangle is tinted but not opaque red.
	c := annotated.RGBAAt(35, 15)
	require.EqualValues(t, 255, c.R)
	require.Less(t, c.G, uint8(220))

	// A point outside the triangle but inside the box stays white.
	require.Equal(t, white, annotated.RGBAAt(13, 35))
}

func TestRenderAnnotationsPolygonGeometryErrors(t *testing.T) {
	tests := []struct {
		name    string
		polygon []float64
	}{
		{name: "too few points", polygon: []float64{1, 2, 3, 4}},
		{name: "odd value count", polygon: []float64{1, 2, 3, 4, 5, 6, 7}},
		{name: "empty", polygon: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ann := Annotation{
				Coords:   [4]float64{10, 10, 40, 40},
				Polygons: [][]float64{tt.polygon},
			}
			_, _, err := RenderAnnotations(whiteImage(100, 100), []Annotation{ann}, RenderOptions{})
			require.ErrorIs(t, err, ErrGeometry)
		})
	}
}

func TestRenderAnnotationsMarginMask(t *testing.T) {
	ann := Annotation{Coords: [4]float64{20, 20, 40, 40}}

	annotated, masked, err := RenderAnnotations(whiteImage(100, 100), []Annotation{ann},
		RenderOptions{MaskMarginWidth: 5})
	require.NoError(t, err)
	require.NotNil(t, masked)

	// Inside the margin-grown region the annotated pixels survive.
	require.Equal(t, annotated.RGBAAt(30, 30), masked.RGBAAt(30, 30))
	require.Equal(t, white, masked.RGBAAt(16, 16))
	require.Equal(t, boxColor, masked.RGBAAt(20, 30))

	// Everything else is blacked out.
	require.Equal(t, black, masked.RGBAAt(70, 70))
	require.Equal(t, black, masked.RGBAAt(14, 30))
	require.Equal(t, black, masked.RGBAAt(30, 46))
}

func TestRenderAnnotationsMarginMaskIncludesLabel(t *testing.T) {
	ann := Annotation{Label: "cat", Coords: [4]float64{30, 40, 60, 60}}

	_, masked, err := RenderAnnotations(whiteImage(100, 100), []Annotation{ann},
		RenderOptions{MaskMarginWidth: 2})
	require.NoError(t, err)

	// The label backdrop above the box is kept visible in the mask even
	// though it is outside the margin-grown bbox region.
	require.Equal(t, boxColor, masked.RGBAAt(31, 25))
}

func TestRenderAnnotationsBoundary(t *testing.T) {
	boundary := image.Rect(5, 5, 95, 95)

	annotated, _, err := RenderAnnotations(whiteImage(100, 100),
		[]Annotation{{Coords: [4]float64{20, 20, 40, 40}}},
		RenderOptions{Boundary: &boundary})
	require.NoError(t, err)

	require.Equal(t, boundaryColor, annotated.RGBAAt(5, 50))
	require.Equal(t, boundaryColor, annotated.RGBAAt(50, 5))
	require.Equal(t, boundaryColor, annotated.RGBAAt(94, 50))
	require.Equal(t, white, annotated.RGBAAt(50, 50))
}
