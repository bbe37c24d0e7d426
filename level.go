package cascade

import (
	"fmt"
	"image"

	"github.com/detkit/go-cascade/classifier"
	"github.com/detkit/go-cascade/imaging"
)

// hid is one classifier engine instance bound to a level's buffers.
type hid struct {
	engine classifier.Engine
	data   *classifierData
}

// level is one pyramid octave: the frame downscaled by scale together with
// its integral tables, masks and the engines of every classifier whose
// window fits this scale.  All buffers are allocated once at Init and
// refilled per frame.
type level struct {
	hids  []hid
	scale float64
	dims  image.Point

	src  *image.Gray
	roi  *image.Gray
	mask *image.Gray
	dst  *image.Gray

	sum    *imaging.Integral
	sqsum  *imaging.Integral
	tilted *imaging.Integral

	// rect is the bounding rectangle of the ROI support at this level
	rect image.Rectangle

	throughColumn bool
	needSqsum     bool
	needTilted    bool
}

// initLevels builds the scale pyramid.  Scales progress geometrically from
// 1.0; a level is materialized when at least one classifier window at that
// scale lies within the size bounds, and the progression stops once no
// window fits the image or the maximum bound at all.
func (d *Detection) initLevels(cfg InitConfig) error {

	d.needNormalization = false
	d.levels = nil

	scale := 1.0

	for {
		inserts := make([]bool, len(d.data))
		exit, insert := true, false

		for i, data := range d.data {
			ws := scalePoint(data.cascade.WindowSize(), scale)

			if ws.X <= cfg.SizeMax.X && ws.Y <= cfg.SizeMax.Y &&
				ws.X <= d.imageSize.X && ws.Y <= d.imageSize.Y {

				if ws.X >= cfg.SizeMin.X && ws.Y >= cfg.SizeMin.Y {
					insert = true
					inserts[i] = true
				}
				exit = false
			}
		}

		if exit {
			break
		}

		if insert {
			lv, err := d.newLevel(scale, inserts, cfg.ROI)

			if err != nil {
				d.levels = nil
				return err
			}

			d.levels = append(d.levels, lv)
		}

		scale *= cfg.ScaleFactor
	}

	if len(d.levels) == 0 {
		return fmt.Errorf("no classifier window fits the size bounds")
	}

	return nil
}

// newLevel allocates the buffers of one pyramid level and instantiates an
// engine for every classifier marked in inserts.  Engine instantiation
// failure is fatal to the whole Init.
func (d *Detection) newLevel(scale float64, inserts []bool, roi *image.Gray) (*level, error) {

	dims := image.Pt(int(float64(d.imageSize.X)/scale), int(float64(d.imageSize.Y)/scale))

	lv := &level{
		scale:         scale,
		throughColumn: scale <= 2.0,
		dims:          dims,
		src:           image.NewGray(image.Rect(0, 0, dims.X, dims.Y)),
		roi:           image.NewGray(image.Rect(0, 0, dims.X, dims.Y)),
		mask:          image.NewGray(image.Rect(0, 0, dims.X, dims.Y)),
		dst:           image.NewGray(image.Rect(0, 0, dims.X, dims.Y)),
		sum:           imaging.NewIntegral(dims),
		sqsum:         imaging.NewIntegral(dims),
		tilted:        imaging.NewIntegral(dims),
	}

	for i, data := range d.data {
		if !inserts[i] {
			continue
		}

		eng, err := classifier.NewEngine(data.cascade, lv.sum, lv.sqsum, lv.tilted,
			lv.throughColumn, data.cascade.CanInt16())

		if err != nil {
			return nil, fmt.Errorf("classifier %d at scale %.3f: %w", i, scale, err)
		}

		lv.hids = append(lv.hids, hid{engine: eng, data: data})

		isHaar := data.cascade.Family() == classifier.Haar
		lv.needSqsum = lv.needSqsum || isHaar
		lv.needTilted = lv.needTilted || data.cascade.HasTilted()
		d.needNormalization = d.needNormalization || isHaar
	}

	lv.rect = image.Rect(0, 0, dims.X, dims.Y)

	if roi == nil {
		imaging.Fill(lv.roi, 255)
	} else {
		imaging.Resize(lv.roi, roi)
		imaging.Binarize(lv.roi, 0)
		lv.rect = imaging.ShrinkToMask(lv.roi, lv.rect)
	}

	return lv, nil
}

// estimateIntegral computes the integral channels this level's classifiers
// need from the level's source buffer.
func (lv *level) estimateIntegral() {

	switch {
	case lv.needSqsum && lv.needTilted:
		imaging.IntegralImage(lv.src, lv.sum, lv.sqsum, lv.tilted)
	case lv.needSqsum:
		imaging.IntegralImage(lv.src, lv.sum, lv.sqsum, nil)
	default:
		imaging.IntegralImage(lv.src, lv.sum, nil, nil)
	}
}
