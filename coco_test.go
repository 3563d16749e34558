package cocoviz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCOCO = `{
  "images": [
    {"id": 1, "file_name": "img001.jpg", "width": 100, "height": 100},
    {"id": 2, "file_name": "img002.png", "width": 100, "height": 100}
  ],
  "annotations": [
    {"id": 10, "image_id": 1, "category_id": 1, "bbox": [10, 10, 50, 50]},
    {"id": 11, "image_id": 1, "category_id": 9, "bbox": [5, 5, 20, 20],
     "segmentation": [[10, 10, 20, 10, 20, 20]]},
    {"id": 12, "image_id": 2, "category_id": 1, "bbox": [0, 0, 30, 40],
     "segmentation": {"counts": "abc", "size": [100, 100]}},
    {"id": 13, "image_id": 2, "category_id": 1, "bbox": [1, 2]},
    {"id": 14, "image_id": 99, "category_id": 1, "bbox": [0, 0, 1, 1]}
  ],
  "categories": [{"id": 1, "name": "cat"}]
}`

func writeCOCOFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "coco.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFromCOCO(t *testing.T) {
	idx, err := FromCOCO(writeCOCOFile(t, t.TempDir(), testCOCO))
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())

	anns, ok := idx.Annotations("img001.jpg")
	require.True(t, ok)
	require.Len(t, anns, 2)

	// COCO bbox x, y, w, h becomes x1, y1, x2, y2.
	require.Equal(t, "cat", anns[0].Label)
	require.Equal(t, [4]float64{10, 10, 60, 60}, anns[0].Coords)
	require.Empty(t, anns[0].Polygons)

	// Unknown categories keep a generated label; polygons are parsed.
	require.Equal(t, "Class 9", anns[1].Label)
	require.Len(t, anns[1].Polygons, 1)
	require.Equal(t, []float64{10, 10, 20, 10, 20, 20}, anns[1].Polygons[0])

	// The short bbox and the unknown image id are dropped; the RLE
	// segmentation is ignored but the annotation itself is kept.
	anns, ok = idx.Annotations("img002.png")
	require.True(t, ok)
	require.Len(t, anns, 1)
	require.Empty(t, anns[0].Polygons)

	_, ok = idx.Annotations("missing.jpg")
	require.False(t, ok)
}

func TestFromCOCOErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid JSON", content: `{"images": [`},
		{name: "not an object", content: `[1, 2, 3]`},
		{name: "missing images", content: `{"annotations": []}`},
		{name: "missing annotations", content: `{"images": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCOCO(writeCOCOFile(t, t.TempDir(), tt.content))
			require.ErrorIs(t, err, ErrParse)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := FromCOCO(filepath.Join(t.TempDir(), "nope.json"))
		require.ErrorIs(t, err, ErrParse)
	})
}

func TestAnnotationDimensions(t *testing.T) {
	a := Annotation{Coords: [4]float64{10, 20, 60, 50}}
	require.Equal(t, 50.0, a.Width())
	require.Equal(t, 30.0, a.Height())
}
