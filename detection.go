package cascade

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/detkit/go-cascade/classifier"
	"github.com/detkit/go-cascade/imaging"
)

const (
	// DefaultScaleFactor is the pyramid scale step used when InitConfig
	// does not specify one
	DefaultScaleFactor = 1.1
	// DefaultGroupSizeMin is the minimum cluster weight used when
	// DetectOptions does not specify one
	DefaultGroupSizeMin = 3
	// DefaultSizeDifferenceMax is the relative size tolerance used for
	// clustering when DetectOptions does not specify one
	DefaultSizeDifferenceMax = 0.2
)

// Tag identifies which loaded classifier produced a detection.  Tags are
// caller assigned at Load time so several detectors can run in one pass.
type Tag int

// UndefinedObjectTag can be passed to Load when the caller does not need to
// tell detections of several classifiers apart.
const UndefinedObjectTag Tag = -1

// Object is one detected object in full image coordinates.  Weight is the
// number of elementary detections merged into the object and serves as a
// confidence measure.
type Object struct {
	Rect   image.Rectangle
	Weight int
	Tag    Tag
}

// classifierData is one registered classifier.
type classifierData struct {
	cascade *classifier.Cascade
	tag     Tag
}

// Detection detects objects with Haar and LBP cascade classifiers over a
// multi-scale image pyramid.  Usage is Load (one or more cascades), Init
// (once per image size), then Detect per frame.
//
// A Detection instance is not safe for concurrent Detect calls; use a Pool
// to process frames in parallel.
type Detection struct {
	data              []*classifierData
	imageSize         image.Point
	needNormalization bool
	levels            []*level
	pool              *workerPool
}

// NewDetection returns an empty detector.
func NewDetection() *Detection {
	return &Detection{}
}

// Load parses a cascade description file and registers it under the given
// tag.  It may be called multiple times to run several detectors at the
// same time.  On failure the registry is left unchanged.
func (d *Detection) Load(path string, tag Tag) error {

	c, err := classifier.Load(path)

	if err != nil {
		return err
	}

	d.Add(c, tag)
	return nil
}

// Add registers an already parsed cascade under the given tag.
func (d *Detection) Add(c *classifier.Cascade, tag Tag) {
	d.data = append(d.data, &classifierData{cascade: c, tag: tag})
}

// InitConfig holds the Init parameters.  The zero value selects the
// defaults: scale factor 1.1, no object size bounds, full frame region of
// interest and one worker per CPU.
type InitConfig struct {
	// ScaleFactor is the size ratio between neighboring pyramid levels,
	// must be greater than 1.  Smaller factors find more object sizes at
	// a higher cost
	ScaleFactor float64
	// SizeMin is the minimum object size to detect
	SizeMin image.Point
	// SizeMax is the maximum object size to detect, zero means unbounded
	SizeMax image.Point
	// ROI is an optional 8-bit mask restricting detection; it applies to
	// the center of detected objects and may have any resolution
	ROI *image.Gray
	// Threads is the worker count; values outside [1, NumCPU] select one
	// worker per CPU, 1 disables the worker pool
	Threads int
}

// Init prepares the detector for images of the given size, building the
// scale pyramid and the worker pool.  It must be called before Detect and
// again whenever the image size changes.  At least one classifier must have
// been loaded.
func (d *Detection) Init(imageSize image.Point, cfg InitConfig) error {

	if len(d.data) == 0 {
		return fmt.Errorf("no classifiers loaded")
	}

	if imageSize.X <= 0 || imageSize.Y <= 0 {
		return fmt.Errorf("invalid image size %v", imageSize)
	}

	if cfg.ScaleFactor == 0 {
		cfg.ScaleFactor = DefaultScaleFactor
	}

	if cfg.ScaleFactor <= 1 {
		return fmt.Errorf("scale factor %v must be greater than 1", cfg.ScaleFactor)
	}

	if cfg.SizeMax == (image.Point{}) {
		cfg.SizeMax = image.Pt(math.MaxInt32, math.MaxInt32)
	}

	d.imageSize = imageSize
	d.initWorkers(cfg.Threads)

	return d.initLevels(cfg)
}

// Close releases the worker pool and the pyramid.  The registered
// classifiers are kept, so the detector can be initialized again.
func (d *Detection) Close() {

	if d.pool != nil {
		d.pool.close()
		d.pool = nil
	}

	d.levels = nil
}

// DetectOptions holds the per frame Detect parameters.  The zero value
// selects the defaults: minimum cluster weight 3, size tolerance 0.2 and no
// motion masking.
type DetectOptions struct {
	// GroupSizeMin is the minimum number of elementary detections a
	// cluster needs to be reported
	GroupSizeMin int
	// SizeDifferenceMax is the maximum relative size difference between
	// elementary detections grouped into one cluster
	SizeDifferenceMax float64
	// MotionMask enables restriction of the detection region to
	// MotionRegions in addition to the ROI
	MotionMask bool
	// MotionRegions are full image coordinate rectangles of recent
	// motion; they apply to the center of detected objects
	MotionRegions []image.Rectangle
}

// Detect finds objects in src.  The image must have the size given to Init.
// An empty result is not an error.
func (d *Detection) Detect(src image.Image, opts DetectOptions) ([]Object, error) {

	if len(d.levels) == 0 {
		return nil, fmt.Errorf("detector is not initialized")
	}

	if !src.Bounds().Size().Eq(d.imageSize) {
		return nil, fmt.Errorf("image size %v does not match init size %v",
			src.Bounds().Size(), d.imageSize)
	}

	if opts.GroupSizeMin == 0 {
		opts.GroupSizeMin = DefaultGroupSizeMin
	}

	if opts.SizeDifferenceMax == 0 {
		opts.SizeDifferenceMax = DefaultSizeDifferenceMax
	}

	d.fillLevels(imaging.ToGray(src))

	candidates := make(map[Tag][]Object)

	for _, lv := range d.levels {
		mask := lv.roi
		rect := lv.rect

		if opts.MotionMask {
			rect = d.fillMotionMask(opts.MotionRegions, lv)
			mask = lv.mask
		}

		if rect.Empty() {
			continue
		}

		for i := range lv.hids {
			h := &lv.hids[i]
			d.scanClassifier(lv, h, mask, rect)
			addObjects(candidates, h.data.tag, lv, h.data.cascade.WindowSize(), rect)
		}
	}

	tags := make([]Tag, 0, len(candidates))
	for tag := range candidates {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	var objects []Object
	for _, tag := range tags {
		groupObjects(&objects, candidates[tag], opts.GroupSizeMin, opts.SizeDifferenceMax)
	}

	return objects, nil
}

// fillLevels fills every pyramid level from src.  Level 0 is resampled from
// the source image, deeper levels are resampled from level 0 so the whole
// pyramid shares one normalization pass.
func (d *Detection) fillLevels(src *image.Gray) {

	lv0 := d.levels[0]

	imaging.Resize(lv0.src, src)
	if d.needNormalization {
		imaging.EqualizeHist(lv0.src, lv0.src)
	}
	lv0.estimateIntegral()

	for _, lv := range d.levels[1:] {
		imaging.Resize(lv.src, lv0.src)
		lv.estimateIntegral()
	}
}

// fillMotionMask rebuilds the level's motion mask from the union of the
// given motion rectangles intersected with the level ROI, and returns the
// bounding rectangle of the motion area clipped to the level's detection
// rectangle.
func (d *Detection) fillMotionMask(regions []image.Rectangle, lv *level) image.Rectangle {

	imaging.Fill(lv.mask, 0)

	var rect image.Rectangle
	for _, r := range regions {
		sr := scaleRect(r, 1/lv.scale)
		rect = rect.Union(sr)
		imaging.FillRect(lv.mask, sr, 255)
	}

	rect = rect.Intersect(lv.rect)
	imaging.AndMask(lv.mask, lv.mask, lv.roi)

	return rect
}

// scanClassifier runs one classifier over the level's scan rectangle,
// writing hits into the level's destination mask.  The rectangle is shifted
// by half the window so hits denote window top-left positions.  With a
// worker pool the rows are split into one contiguous band per worker.
func (d *Detection) scanClassifier(lv *level, h *hid, mask *image.Gray, rect image.Rectangle) {

	size := h.data.cascade.WindowSize()
	r := rect.Sub(image.Pt(size.X/2, size.Y/2)).Intersect(validScanRect(lv.dims, size))

	imaging.Fill(lv.dst, 0)

	if r.Empty() {
		return
	}

	if d.pool == nil {
		h.engine.ScanRowBand(mask, r, lv.dst)
		return
	}

	n := d.pool.size()
	step := (r.Max.Y-r.Min.Y)/n + 1
	if lv.throughColumn {
		// band starts must stay on even rows for the interleaved scan
		step += step & 1
	}

	for i := 0; i < n; i++ {
		top := r.Min.Y + i*step
		if top >= r.Max.Y {
			break
		}

		bottom := top + step
		if bottom > r.Max.Y {
			bottom = r.Max.Y
		}

		d.pool.add(i, scanTask{
			engine: h.engine,
			mask:   mask,
			rect:   image.Rect(r.Min.X, top, r.Max.X, bottom),
			dst:    lv.dst,
		})
	}

	d.pool.wait()
}

// addObjects walks the level's hit mask and appends one elementary
// detection per hit, scaled back to full image coordinates.
func addObjects(candidates map[Tag][]Object, tag Tag, lv *level,
	size image.Point, rect image.Rectangle) {

	step := 1
	if lv.throughColumn {
		step = 2
	}

	r := rect.Sub(image.Pt(size.X/2, size.Y/2)).Intersect(validScanRect(lv.dims, size))

	for row := r.Min.Y; row < r.Max.Y; row += step {
		mrow := lv.dst.Pix[row*lv.dst.Stride:]
		for col := r.Min.X; col < r.Max.X; col += step {
			if mrow[col] == 0 {
				continue
			}

			candidates[tag] = append(candidates[tag], Object{
				Rect:   scaleRect(image.Rect(col, row, col+size.X, row+size.Y), lv.scale),
				Weight: 1,
				Tag:    tag,
			})
		}
	}
}

// validScanRect returns the window top-left positions keeping a window of
// the given size inside a level of the given dims.  The rectangle is built
// without image.Rect so that a window larger than the level yields negative
// Max coordinates, which Intersect resolves to the empty rectangle instead
// of canonicalizing them into a rectangle at negative positions.
func validScanRect(dims, size image.Point) image.Rectangle {
	return image.Rectangle{Max: image.Pt(dims.X-size.X, dims.Y-size.Y)}
}

// scaleRect scales all rectangle coordinates by f, rounding to nearest.
func scaleRect(r image.Rectangle, f float64) image.Rectangle {
	return image.Rect(
		int(math.Round(float64(r.Min.X)*f)),
		int(math.Round(float64(r.Min.Y)*f)),
		int(math.Round(float64(r.Max.X)*f)),
		int(math.Round(float64(r.Max.Y)*f)),
	)
}

// scalePoint scales both point coordinates by f, rounding to nearest.
func scalePoint(p image.Point, f float64) image.Point {
	return image.Pt(
		int(math.Round(float64(p.X)*f)),
		int(math.Round(float64(p.Y)*f)),
	)
}
