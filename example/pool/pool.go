package main

import (
	"flag"
	"image"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/detkit/go-cascade"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	cascadeFile := flag.String("c", "../data/haar_face_0.xml", "OpenCV cascade classifier XML file")
	imgDir := flag.String("d", "../data/frames/", "A directory of same sized images to run detection on")
	poolSize := flag.Int("s", 2, "Size of detection pool")
	repeat := flag.Int("r", 1, "Repeat processing image directory the specified number of times, use this if you don't have enough images")
	cores := flag.String("p", "", "Pin process to CPU cores, eg: 4,5,6,7")
	flag.Parse()

	if *cores != "" {
		pinCores(*cores)
	}

	// check dir exists
	info, err := os.Stat(*imgDir)

	if err != nil {
		log.Fatalf("No such image directory %s, error: %v\n", *imgDir, err)
	}

	if !info.IsDir() {
		log.Fatal("Image path is not a directory")
	}

	// get list of all files in the directory
	files, err := os.ReadDir(*imgDir)

	if err != nil {
		log.Fatalf("Error reading image directory: %v\n", err)
	}

	// all frames in the directory must share the size of the first one, as
	// a Detection instance is initialised for a fixed frame size
	frameSize, err := firstFrameSize(*imgDir, files)

	if err != nil {
		log.Fatalf("Error reading first frame: %v\n", err)
	}

	// create new pool, each instance runs its window scan single threaded as
	// the pool itself provides the parallelism across frames
	pool, err := cascade.NewPool(*poolSize,
		[]cascade.CascadeFile{{Path: *cascadeFile, Tag: 0}},
		frameSize, cascade.InitConfig{Threads: 1})

	if err != nil {
		log.Fatalf("Error creating detection pool: %v\n", err)
	}

	start := time.Now()

	// repeat processing the specified number of times to increase the number
	// of images processed
	for i := 0; i < *repeat; i++ {
		// process each image
		for _, file := range files {
			// skip directories
			if file.IsDir() {
				continue
			}

			// pool.Get() blocks if no instances are available in the pool
			det := pool.Get()

			go func(pool *cascade.Pool, det *cascade.Detection, file os.DirEntry) {
				processFile(det, filepath.Join(*imgDir, file.Name()))
				pool.Return(det)
			}(pool, det, file)
		}
	}

	log.Printf("Completed in %s\n", time.Since(start).String())

	pool.Close()
}

// firstFrameSize returns the pixel size of the first image file in the
// directory listing
func firstFrameSize(dir string, files []os.DirEntry) (image.Point, error) {

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		img := gocv.IMRead(filepath.Join(dir, file.Name()), gocv.IMReadColor)

		if img.Empty() {
			continue
		}

		size := image.Pt(img.Cols(), img.Rows())
		img.Close()

		return size, nil
	}

	return image.Point{}, os.ErrNotExist
}

func processFile(det *cascade.Detection, file string) {

	// load image
	img := gocv.IMRead(file, gocv.IMReadColor)

	if img.Empty() {
		log.Printf("Error reading image from: %s\n", file)
		return
	}

	defer img.Close()

	srcImg, err := img.ToImage()

	if err != nil {
		log.Printf("Error converting image %s: %v\n", file, err)
		return
	}

	start := time.Now()

	objects, err := det.Detect(srcImg, cascade.DetectOptions{})

	exe := time.Since(start)

	if err != nil {
		log.Printf("Detection failed with error: %v\n", err)
		return
	}

	log.Printf("%dms - File[%s] found %d objects\n", exe.Milliseconds(),
		file, len(objects))
}

// pinCores parses a comma separated core list and sets the process CPU
// affinity mask
func pinCores(list string) {

	var cores []int

	for _, f := range strings.Split(list, ",") {
		core, err := strconv.Atoi(strings.TrimSpace(f))

		if err != nil {
			log.Fatalf("Invalid core number %q: %v\n", f, err)
		}

		cores = append(cores, core)
	}

	if err := cascade.SetCPUAffinity(cascade.CPUCoreMask(cores)); err != nil {
		log.Fatalf("Error setting CPU affinity: %v\n", err)
	}
}
