package cocoviz

// Single-image and bulk rendering entry points.

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// A job pairs one input image with its output location.
type job struct {
	imagePath  string
	outputPath string
}

// ProcessImage renders the annotations for the image at imagePath and writes
// the result to outputPath. When opts.MaskMarginWidth > 0, a second file
// named after outputPath with a "_masked.jpg" suffix is written next to it.
//
// Single-image mode and every bulk worker run through this function, so both
// modes produce identical output for the same image.
func (idx *Index) ProcessImage(imagePath, outputPath string, opts RenderOptions) error {
	annotations, ok := idx.Annotations(filepath.Base(imagePath))
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotAnnotated, filepath.Base(imagePath))
	}

	img, err := loadImage(imagePath)
	if err != nil {
		return fmt.Errorf("cannot read image %q: %v", imagePath, err)
	}

	boundary, err := loadBoundary(imagePath)
	if err != nil {
		return err
	}
	opts.Boundary = boundary

	annotated, masked, err := RenderAnnotations(img, annotations, opts)
	if err != nil {
		return fmt.Errorf("failed to render %q: %w", imagePath, err)
	}

	if err := saveImage(outputPath, annotated); err != nil {
		return fmt.Errorf("cannot write %q: %v", outputPath, err)
	}
	if masked != nil {
		maskedPath := maskedOutputPath(outputPath)
		if err := saveImage(maskedPath, masked); err != nil {
			return fmt.Errorf("cannot write %q: %v", maskedPath, err)
		}
	}

	return nil
}

// ProcessDirectory renders all images found in inputDir and its
// subdirectories, mirroring each input file's relative path under outputDir.
// At most workers images are processed in parallel; values <= 0 use the
// number of CPU cores.
//
// A per-image failure is logged (when verbose) and skipped when force is
// true. When force is false the first failure is returned and no further
// jobs are started; jobs already in flight run to completion.
func (idx *Index) ProcessDirectory(inputDir, outputDir string, opts RenderOptions,
		workers int, force, verbose bool) error {

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	imageFiles, err := imageFilesInTree(inputDir)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("Found %d images to process with %d workers", len(imageFiles), workers)
	}

	jobs := make([]job, 0, len(imageFiles))
	for _, imagePath := range imageFiles {
		rel, err := filepath.Rel(inputDir, imagePath)
		if err != nil {
			return err
		}
		outputPath := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %v", err)
		}
		jobs = append(jobs, job{imagePath: imagePath, outputPath: outputPath})
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for _, j := range jobs {
		j := j
		g.Go(func() error {
			// Once a job has failed under force=false, drop the remaining
			// jobs instead of starting them.
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := idx.ProcessImage(j.imagePath, j.outputPath, opts); err != nil {
				if !force {
					return err
				}
				if verbose {
					log.Printf("Skipping %q: %v", j.imagePath, err)
				}
			}
			return nil
		})
	}

	return g.Wait()
}
