package main

import (
	"flag"
	"image"
	"log"

	"github.com/detkit/go-cascade"
	"github.com/detkit/go-cascade/render"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	cascadeFile := flag.String("c", "../data/haar_face_0.xml", "OpenCV cascade classifier XML file")
	imgFile := flag.String("i", "../data/faces.jpg", "Image file to run detection on")
	saveFile := flag.String("o", "../data/faces-out.jpg", "Output image file with rendered detections")
	namesFile := flag.String("n", "", "Optional text file with tag names, one \"tag name\" per line")
	sizeMin := flag.Int("min", 0, "Minimum object size in pixels, 0 uses the classifier window size")
	threads := flag.Int("t", 0, "Number of scanning threads, 0 uses all CPU cores")
	flag.Parse()

	// load image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	defer img.Close()

	srcImg, err := img.ToImage()

	if err != nil {
		log.Fatal("Error converting image: ", err)
	}

	// create detection instance and load the classifier
	det := cascade.NewDetection()

	if err := det.Load(*cascadeFile, 0); err != nil {
		log.Fatal("Error loading classifier: ", err)
	}

	imageSize := image.Pt(img.Cols(), img.Rows())

	err = det.Init(imageSize, cascade.InitConfig{
		SizeMin: image.Pt(*sizeMin, *sizeMin),
		Threads: *threads,
	})

	if err != nil {
		log.Fatal("Error initialising detection: ", err)
	}

	defer det.Close()

	// run detection on the image
	objects, err := det.Detect(srcImg, cascade.DetectOptions{})

	if err != nil {
		log.Fatal("Detection failed with error: ", err)
	}

	log.Printf("Found %d objects\n", len(objects))

	for _, obj := range objects {
		log.Printf("  %v, weight=%d\n", obj.Rect, obj.Weight)
	}

	// render bounding boxes onto the image and save
	names := map[cascade.Tag]string{0: "face"}

	if *namesFile != "" {
		names, err = cascade.LoadTagNames(*namesFile)

		if err != nil {
			log.Fatal("Error loading tag names: ", err)
		}
	}

	render.DetectionBoxes(&img, objects, names, render.DefaultFont(), 2)

	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Fatal("Error saving image to: ", *saveFile)
	}

	log.Println("Saved detections to", *saveFile)
}
