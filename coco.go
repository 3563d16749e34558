package cocoviz

// COCO specific functionality.

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// COCOImage is a single entry of the images array in a COCO file.
type COCOImage struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// COCOAnnotation is a single entry of the annotations array in a COCO file.
//
// Segmentation is kept raw because COCO stores either polygon point lists or
// an RLE-encoded mask object in the same field.
type COCOAnnotation struct {
	ID           int64           `json:"id"`
	ImageID      int64           `json:"image_id"`
	CategoryID   int64           `json:"category_id"`
	Bbox         []float64       `json:"bbox"`
	Segmentation json.RawMessage `json:"segmentation,omitempty"`
}

// COCOCategory is a single entry of the categories array in a COCO file.
type COCOCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// COCOFile defines the COCO annotation structure for a dataset.
type COCOFile struct {
	Images      []COCOImage      `json:"images"`
	Annotations []COCOAnnotation `json:"annotations"`
	Categories  []COCOCategory   `json:"categories"`
}

// FromCOCO reads and parses COCO annotations from the file at path and builds
// the image file name index.
//
// Any error returned wraps ErrParse: without a parsed annotation file no
// image can be rendered, so callers must treat it as fatal.
func FromCOCO(path string) (*Index, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %q: %v", ErrParse, path, err)
	}

	var cocoData COCOFile
	if err := json.Unmarshal(enc, &cocoData); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in %q: %v", ErrParse, path, err)
	}
	if cocoData.Images == nil || cocoData.Annotations == nil {
		return nil, fmt.Errorf("%w: %q is missing the images or annotations array",
			ErrParse, path)
	}

	categories := make(map[int64]string, len(cocoData.Categories))
	for _, c := range cocoData.Categories {
		categories[c.ID] = c.Name
	}

	fileNames := make(map[int64]string, len(cocoData.Images))
	for _, img := range cocoData.Images {
		fileNames[img.ID] = img.FileName
	}

	// Convert to the intermediate representation, grouped by file name.
	idx := &Index{annotations: make(map[string][]Annotation, len(cocoData.Images))}
	for _, a := range cocoData.Annotations {
		fileName, ok := fileNames[a.ImageID]
		if !ok {
			log.Printf("Dropping annotation %d: unknown image id %d", a.ID, a.ImageID)
			continue
		}
		if len(a.Bbox) < 4 {
			log.Printf("Dropping annotation %d: bbox has %d values instead of 4",
				a.ID, len(a.Bbox))
			continue
		}

		label, ok := categories[a.CategoryID]
		if !ok {
			label = fmt.Sprintf("Class %d", a.CategoryID)
		}

		annotation := Annotation{
			Label:    label,
			Polygons: decodePolygons(a.Segmentation),
		}
		annotation.Coords[0] = a.Bbox[0]
		annotation.Coords[1] = a.Bbox[1]
		annotation.Coords[2] = a.Bbox[0] + a.Bbox[2]
		annotation.Coords[3] = a.Bbox[1] + a.Bbox[3]

		idx.annotations[fileName] = append(idx.annotations[fileName], annotation)
	}

	return idx, nil
}

// decodePolygons extracts polygon segmentations. RLE-encoded masks appear as
// a JSON object instead of a point list array and are not rendered.
func decodePolygons(raw json.RawMessage) [][]float64 {
	if len(raw) == 0 {
		return nil
	}

	var polygons [][]float64
	if err := json.Unmarshal(raw, &polygons); err != nil {
		return nil
	}
	return polygons
}
