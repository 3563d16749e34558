package cocoviz

// Annotation to pixel rendering.

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderOptions control the annotation rendering.
type RenderOptions struct {
	// MaskMarginWidth is the number of pixels by which each bounding box is
	// grown in the mask output. Zero disables mask rendering.
	MaskMarginWidth int

	// Boundary is an optional workspace boundary rectangle, drawn as an
	// outline on top of all annotations.
	Boundary *image.Rectangle
}

const (
	boxStroke    = 2
	labelPadding = 2
)

var (
	boxColor      = color.RGBA{255, 0, 0, 255}
	boundaryColor = color.RGBA{0, 0, 255, 255}
	labelColor    = color.RGBA{255, 255, 255, 255}
	segmentFill   = color.NRGBA{255, 0, 0, 90}
	segmentStroke = color.NRGBA{255, 0, 0, 255}
)

// RenderAnnotations draws the annotations onto a copy of img, in list order,
// so that later annotations end up on top of earlier ones.
//
// When opts.MaskMarginWidth > 0 a second rendering is returned that keeps
// only the pixels inside the margin-grown bounding box regions and blacks
// out everything else. Otherwise masked is nil.
func RenderAnnotations(img image.Image, annotations []Annotation, opts RenderOptions) (
		annotated, masked *image.RGBA, err error) {

	bounds := img.Bounds()
	annotated = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(annotated, annotated.Bounds(), img, bounds.Min, draw.Src)

	var mask *image.Alpha
	if opts.MaskMarginWidth > 0 {
		mask = image.NewAlpha(annotated.Bounds())
	}

	for _, a := range annotations {
		if err := drawAnnotation(annotated, a, mask, opts.MaskMarginWidth); err != nil {
			return nil, nil, err
		}
	}

	if opts.Boundary != nil {
		drawRectOutline(annotated, *opts.Boundary, boundaryColor, boxStroke)
	}

	if mask != nil {
		masked = applyMask(annotated, mask)
	}

	return annotated, masked, nil
}

// drawAnnotation draws one annotation: segmentation polygons first, then the
// bounding box outline, then the label. If mask is not nil, the bounding box
// region grown by margin (and extended upwards to keep the label visible) is
// marked in it.
func drawAnnotation(dst *image.RGBA, a Annotation, mask *image.Alpha, margin int) error {
	for _, polygon := range a.Polygons {
		if err := fillPolygon(dst, polygon); err != nil {
			return err
		}
	}

	x0 := int(math.Round(a.Coords[0]))
	y0 := int(math.Round(a.Coords[1]))
	x1 := int(math.Round(a.Coords[2]))
	y1 := int(math.Round(a.Coords[3]))
	drawRectOutline(dst, image.Rect(x0, y0, x1, y1), boxColor, boxStroke)

	labelTop := y0
	if a.Label != "" {
		labelTop = drawLabel(dst, a.Label, x0, y0)
	}

	if mask != nil {
		top := y0 - margin
		if labelTop < top {
			top = labelTop
		}
		region := image.Rect(x0-margin, top, x1+margin, y1+margin).Intersect(mask.Bounds())
		draw.Draw(mask, region, image.NewUniform(color.Alpha{A: 0xff}), image.Point{}, draw.Src)
	}

	return nil
}

// fillPolygon overlays one translucent segmentation polygon with a solid
// outline. The point list holds flat x, y pairs and is closed implicitly.
func fillPolygon(dst *image.RGBA, points []float64) error {
	if len(points) < 6 || len(points)%2 != 0 {
		return fmt.Errorf("%w: segmentation polygon with %d values", ErrGeometry, len(points))
	}

	gc := draw2dimg.NewGraphicContext(dst)
	gc.SetFillColor(segmentFill)
	gc.SetStrokeColor(segmentStroke)
	gc.SetLineWidth(1)

	gc.MoveTo(points[len(points)-2], points[len(points)-1])
	for i := 0; i < len(points); i += 2 {
		gc.LineTo(points[i], points[i+1])
	}
	gc.Close()
	gc.FillStroke()

	return nil
}

// drawLabel draws the label text on a filled backdrop above the box corner at
// (x, y), clamped to the top edge of the image so the label stays visible.
// Returns the top edge of the backdrop.
func drawLabel(dst *image.RGBA, label string, x, y int) int {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, label).Ceil()
	backdropHeight := face.Height + 2*labelPadding

	top := y - backdropHeight
	if top < 0 {
		top = 0
	}

	backdrop := image.Rect(x, top, x+textWidth+2*labelPadding, top+backdropHeight)
	draw.Draw(dst, backdrop.Intersect(dst.Bounds()), image.NewUniform(boxColor),
		image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(x+labelPadding, top+labelPadding+face.Ascent),
	}
	d.DrawString(label)

	return top
}

// applyMask keeps the annotated pixels covered by the mask and blacks out the
// rest.
func applyMask(src *image.RGBA, mask *image.Alpha) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.DrawMask(out, out.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Over)
	return out
}

// drawRectOutline draws the outline of r with the given stroke width. The
// stroke grows inwards from the rectangle edges.
func drawRectOutline(img *image.RGBA, r image.Rectangle, c color.RGBA, stroke int) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.RGBA, y, x0, x1 int, c color.RGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
