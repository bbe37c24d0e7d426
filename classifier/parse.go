package classifier

import (
	"encoding/xml"
	"fmt"
	"image"
	"math"
	"os"
	"strconv"
	"strings"
)

// maxInt16CellArea is the largest LBP cell area whose sum of 8-bit pixels
// still fits in an int16.
const maxInt16CellArea = math.MaxInt16 / 255

type xmlStorage struct {
	XMLName xml.Name   `xml:"opencv_storage"`
	Cascade xmlCascade `xml:"cascade"`
}

type xmlCascade struct {
	TypeID      string       `xml:"type_id,attr"`
	StageType   string       `xml:"stageType"`
	FeatureType string       `xml:"featureType"`
	Height      int          `xml:"height"`
	Width       int          `xml:"width"`
	Stages      []xmlStage   `xml:"stages>_"`
	Features    []xmlFeature `xml:"features>_"`
}

type xmlStage struct {
	StageThreshold  float64   `xml:"stageThreshold"`
	WeakClassifiers []xmlWeak `xml:"weakClassifiers>_"`
}

type xmlWeak struct {
	InternalNodes string `xml:"internalNodes"`
	LeafValues    string `xml:"leafValues"`
}

type xmlFeature struct {
	Rects  []string `xml:"rects>_"`
	Tilted int      `xml:"tilted"`
	Rect   string   `xml:"rect"`
}

// Load reads and parses a cascade description file.
func Load(path string) (*Cascade, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading cascade file: %w", err)
	}

	c, err := Parse(data)

	if err != nil {
		return nil, fmt.Errorf("error parsing cascade file %s: %w", path, err)
	}

	return c, nil
}

// Parse parses a cascade description from its XML representation.
func Parse(data []byte) (*Cascade, error) {

	var doc xmlStorage

	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed cascade description: %w", err)
	}

	raw := doc.Cascade

	if raw.TypeID != "opencv-cascade-classifier" {
		return nil, fmt.Errorf("unsupported cascade format, old style cascades are not supported")
	}

	if raw.StageType != "BOOST" {
		return nil, fmt.Errorf("unsupported stage type %q", raw.StageType)
	}

	if raw.Width <= 0 || raw.Height <= 0 {
		return nil, fmt.Errorf("invalid cascade window size %dx%d", raw.Width, raw.Height)
	}

	if len(raw.Stages) == 0 {
		return nil, fmt.Errorf("cascade has no stages")
	}

	if len(raw.Features) == 0 {
		return nil, fmt.Errorf("cascade has no features")
	}

	c := &Cascade{
		window: image.Pt(raw.Width, raw.Height),
	}

	var err error

	switch raw.FeatureType {
	case "HAAR":
		c.family = Haar
		err = parseHaar(c, raw)
	case "LBP":
		c.family = LBP
		err = parseLBP(c, raw)
	default:
		err = fmt.Errorf("unsupported feature type %q", raw.FeatureType)
	}

	if err != nil {
		return nil, err
	}

	return c, nil
}

// parseHaar fills the feature table and stages of a Haar cascade.
func parseHaar(c *Cascade, raw xmlCascade) error {

	for i, xf := range raw.Features {

		if len(xf.Rects) < 2 || len(xf.Rects) > 3 {
			return fmt.Errorf("feature %d: haar features require 2 or 3 rects, got %d",
				i, len(xf.Rects))
		}

		f := haarFeature{tilted: xf.Tilted != 0}

		for _, rs := range xf.Rects {
			vals, err := parseFloats(rs, 5)
			if err != nil {
				return fmt.Errorf("feature %d: bad rect %q: %w", i, rs, err)
			}

			r := image.Rect(int(vals[0]), int(vals[1]),
				int(vals[0])+int(vals[2]), int(vals[1])+int(vals[3]))

			if err := checkFeatureRect(r, c.window, f.tilted); err != nil {
				return fmt.Errorf("feature %d: %w", i, err)
			}

			f.rects = append(f.rects, haarRect{rect: r, weight: vals[4]})
		}

		c.haarFeatures = append(c.haarFeatures, f)
		c.hasTilted = c.hasTilted || f.tilted
	}

	return parseStages(c, raw, 4, len(c.haarFeatures))
}

// parseLBP fills the feature table and stages of an LBP cascade.
func parseLBP(c *Cascade, raw xmlCascade) error {

	c.canInt16 = true

	for i, xf := range raw.Features {

		vals, err := parseFloats(xf.Rect, 4)
		if err != nil {
			return fmt.Errorf("feature %d: bad rect %q: %w", i, xf.Rect, err)
		}

		x, y, w, h := int(vals[0]), int(vals[1]), int(vals[2]), int(vals[3])

		if w <= 0 || h <= 0 || x < 0 || y < 0 ||
			x+3*w > c.window.X || y+3*h > c.window.Y {
			return fmt.Errorf("feature %d: lbp grid %d,%d %dx%d exceeds window", i, x, y, w, h)
		}

		c.lbpFeatures = append(c.lbpFeatures, lbpFeature{
			cell: image.Rect(x, y, x+w, y+h),
		})

		if w*h > maxInt16CellArea {
			c.canInt16 = false
		}
	}

	return parseStages(c, raw, 11, len(c.lbpFeatures))
}

// parseStages decodes the stage list.  nodeLen is the expected number of
// internalNodes fields of a stump for this family; any other arity means a
// tree based weak classifier, which is not supported.
func parseStages(c *Cascade, raw xmlCascade, nodeLen, featureCount int) error {

	for si, xs := range raw.Stages {

		if len(xs.WeakClassifiers) == 0 {
			return fmt.Errorf("stage %d has no weak classifiers", si)
		}

		st := stage{threshold: xs.StageThreshold}

		for wi, xw := range xs.WeakClassifiers {

			nodes, err := parseFloats(xw.InternalNodes, -1)
			if err != nil {
				return fmt.Errorf("stage %d weak %d: bad internal nodes: %w", si, wi, err)
			}

			if len(nodes) != nodeLen {
				return fmt.Errorf("stage %d weak %d: tree based cascades are not supported",
					si, wi)
			}

			leaves, err := parseFloats(xw.LeafValues, 2)
			if err != nil {
				return fmt.Errorf("stage %d weak %d: bad leaf values: %w", si, wi, err)
			}

			wk := stump{
				feature: int(nodes[2]),
				left:    leaves[0],
				right:   leaves[1],
			}

			if wk.feature < 0 || wk.feature >= featureCount {
				return fmt.Errorf("stage %d weak %d: feature index %d out of range",
					si, wi, wk.feature)
			}

			if nodeLen == 4 {
				wk.threshold = nodes[3]
			} else {
				for k := 0; k < 8; k++ {
					wk.subset[k] = uint32(int64(nodes[3+k]))
				}
			}

			st.stumps = append(st.stumps, wk)
		}

		c.stages = append(c.stages, st)
	}

	return nil
}

// checkFeatureRect verifies a feature rectangle stays readable inside the
// window for both plain and tilted integral lookups.
func checkFeatureRect(r image.Rectangle, window image.Point, tilted bool) error {

	if r.Dx() <= 0 || r.Dy() <= 0 || r.Min.X < 0 || r.Min.Y < 0 {
		return fmt.Errorf("invalid feature rect %v", r)
	}

	if tilted {
		if r.Min.X-r.Dy() < 0 || r.Max.X > window.X ||
			r.Min.Y+r.Dx()+r.Dy() > window.Y {
			return fmt.Errorf("tilted feature rect %v exceeds window", r)
		}
		return nil
	}

	if r.Max.X > window.X || r.Max.Y > window.Y {
		return fmt.Errorf("feature rect %v exceeds window", r)
	}

	return nil
}

// parseFloats splits a whitespace separated number list.  want < 0 accepts
// any length.
func parseFloats(s string, want int) ([]float64, error) {

	fields := strings.Fields(s)

	if want >= 0 && len(fields) != want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(fields))
	}

	vals := make([]float64, len(fields))

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		vals[i] = v
	}

	return vals, nil
}
