package cocoviz

import "errors"

// The error kinds that govern the force/abort policy. ErrParse is always
// fatal; the per-image kinds are skipped under force and abort the run
// otherwise.
var (
	// ErrParse reports an unusable COCO annotation file.
	ErrParse = errors.New("cannot parse COCO annotations")

	// ErrNotAnnotated reports an image file with no entry in the index.
	ErrNotAnnotated = errors.New("image is not in the annotation index")

	// ErrGeometry reports malformed annotation or boundary geometry.
	ErrGeometry = errors.New("malformed geometry")
)
