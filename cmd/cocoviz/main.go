// Overlays COCO object annotations onto their dataset images for visual
// inspection, for a single image or for a whole directory tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sensorable/cocoviz"
)

var (
	singleImage     bool   // Process one image instead of a directory tree.
	inputPath       string // The image file (single-image mode) or image directory (bulk mode).
	cocoPath        string // The COCO annotation file.
	outputPath      string // The output image file (single-image mode) or directory (bulk mode).
	force           bool   // Keep running when a per-image error occurs.
	verbose         bool   // Print progress and per-image error messages.
	numWorkers      int    // The number of images to process in parallel.
	maskMarginWidth int    // The mask margin width; zero disables mask output.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  single-image mode:\t-s -i <image> -c <coco.json> -o <out-image>")
		_, _ = fmt.Fprintln(os.Stderr, "  bulk mode:\t\t-i <image-dir> -o <out-dir> [-c <coco.json>]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	// Each option is registered under its short and long spelling.
	flag.BoolVar(&singleImage, "s", false,
		"Process a single image instead of a directory (shorthand)")
	flag.BoolVar(&singleImage, "single-image", false,
		"Process a single image instead of a directory")
	flag.StringVar(&inputPath, "i", "",
		"The `path` to the image file (single-image mode) or image directory (bulk mode) (shorthand)")
	flag.StringVar(&inputPath, "input-path", "",
		"The `path` to the image file (single-image mode) or image directory (bulk mode)")
	flag.StringVar(&cocoPath, "c", "",
		"The `path` to the COCO annotation file (bulk mode default: coco.json in the input directory) (shorthand)")
	flag.StringVar(&cocoPath, "coco-path", "",
		"The `path` to the COCO annotation file (bulk mode default: coco.json in the input directory)")
	flag.StringVar(&outputPath, "o", "",
		"The output image `path` (single-image mode) or output directory (bulk mode) (shorthand)")
	flag.StringVar(&outputPath, "output-path", "",
		"The output image `path` (single-image mode) or output directory (bulk mode)")
	flag.BoolVar(&force, "f", true,
		"Keep running when an image fails to process (shorthand)")
	flag.BoolVar(&force, "force", true,
		"Keep running when an image fails to process")
	flag.BoolVar(&verbose, "v", true,
		"Print progress and per-image error messages (shorthand)")
	flag.BoolVar(&verbose, "verbose", true,
		"Print progress and per-image error messages")
	flag.IntVar(&numWorkers, "p", 0,
		"The `number` of images to process in parallel (default: number of CPU cores) (shorthand)")
	flag.IntVar(&numWorkers, "num-process", 0,
		"The `number` of images to process in parallel (default: number of CPU cores)")
	flag.IntVar(&maskMarginWidth, "m", 0,
		"The mask margin `width` in pixels; 0 disables mask output (shorthand)")
	flag.IntVar(&maskMarginWidth, "mask-margin-width", 0,
		"The mask margin `width` in pixels; 0 disables mask output")

	// Parse and validate flags.
	flag.Parse()

	if inputPath == "" {
		printUsageAndExit("Missing input path argument")
	}
	if outputPath == "" {
		printUsageAndExit("Missing output path argument")
	}

	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		printUsageAndExit("Input path doesn't exist: ", inputPath)
	}
	if singleImage && inputInfo.IsDir() {
		printUsageAndExit("The input path points to a directory; drop -s to run in bulk mode")
	}
	if !singleImage && !inputInfo.IsDir() {
		printUsageAndExit("The input path points to a file; pass -s to run in single-image mode")
	}

	if cocoPath == "" {
		if singleImage {
			printUsageAndExit("Missing COCO annotation path argument")
		}
		cocoPath = filepath.Join(inputPath, "coco.json")
	}

	if maskMarginWidth < 0 {
		printUsageAndExit("Invalid mask margin width: ", maskMarginWidth)
	}
	if numWorkers < 0 {
		if !force {
			printUsageAndExit("Using ", numWorkers, " workers is not supported")
		}
		if verbose {
			log.Print("Using ", numWorkers, " workers is not supported, falling back to the CPU core count")
		}
		numWorkers = 0
	}

	// Clean path arguments.
	inputPath = filepath.Clean(inputPath)
	outputPath = filepath.Clean(outputPath)
	cocoPath = filepath.Clean(cocoPath)
	if inputPath == outputPath {
		printUsageAndExit("The input and output paths cannot be identical")
	}
}

func main() {
	index, err := cocoviz.FromCOCO(cocoPath)
	if err != nil {
		log.Fatal("Failed to load the annotations: ", err)
	}
	if verbose {
		log.Printf("Loaded annotations for %d images from %s", index.Len(), cocoPath)
	}

	opts := cocoviz.RenderOptions{MaskMarginWidth: maskMarginWidth}

	if singleImage {
		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Fatal("Cannot create the output directory: ", err)
			}
		}
		if err := index.ProcessImage(inputPath, outputPath, opts); err != nil {
			if !force {
				log.Fatal("Failed to process the image: ", err)
			}
			if verbose {
				log.Print("Skipping: ", err)
			}
			return
		}
		if verbose {
			log.Print("Wrote ", outputPath)
		}
		return
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		log.Fatal("Cannot create the output directory: ", err)
	}
	if err := index.ProcessDirectory(inputPath, outputPath, opts, numWorkers, force, verbose); err != nil {
		log.Fatal("Bulk processing failed: ", err)
	}
	if verbose {
		log.Print("Done")
	}
}
