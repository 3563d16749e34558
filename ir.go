package cocoviz

// The in-memory annotation representation.

// Annotation is one labeled region of an image.
type Annotation struct {
	Coords   [4]float64  // Absolute x1, y1, x2, y2 offsets from the top-left corner.
	Polygons [][]float64 // Optional segmentation polygons as flat x, y pairs.
	Label    string
}

// Width is the object width from a.Coords.
func (a Annotation) Width() float64 {
	return a.Coords[2] - a.Coords[0]
}

// Height is the object height from a.Coords.
func (a Annotation) Height() float64 {
	return a.Coords[3] - a.Coords[1]
}

// Index maps image file names to their annotations, in annotation file order.
//
// An Index is built once by FromCOCO and read-only afterwards, so it can be
// shared across rendering workers without locking.
type Index struct {
	annotations map[string][]Annotation
}

// Annotations returns the annotations for the named image file. The name must
// match the file_name recorded in the annotation file (case-sensitive).
func (idx *Index) Annotations(fileName string) ([]Annotation, bool) {
	a, ok := idx.annotations[fileName]
	return a, ok
}

// Len is the number of annotated image files in the index.
func (idx *Index) Len() int {
	return len(idx.annotations)
}
