package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/detkit/go-cascade"
	"gocv.io/x/gocv"
)

// boxLabel defines where the detection object label should be rendered on
// the source image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// DetectionBoxes renders the bounding boxes around the objects detected.
// tagNames maps detection tags to human readable names and may be nil, in
// which case the numeric tag is rendered.
func DetectionBoxes(img *gocv.Mat, objects []cascade.Object,
	tagNames map[cascade.Tag]string, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	// draw detection boxes
	for _, obj := range objects {

		// Get the color for this objects tag
		colorIndex := int(obj.Tag) % len(tagColors)
		if colorIndex < 0 {
			colorIndex += len(tagColors)
		}
		useClr := tagColors[colorIndex]

		// draw rectangle around detected object
		gocv.Rectangle(img, obj.Rect, useClr, lineThickness)

		// create text for label
		name, ok := tagNames[obj.Tag]
		if !ok {
			name = fmt.Sprintf("tag %d", obj.Tag)
		}

		text := fmt.Sprintf("%s %d", name, obj.Weight)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (obj.Rect.Min.X + obj.Rect.Max.X) / 2

		case Right:
			centerX = obj.Rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = obj.Rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// Adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, obj.Rect.Min.Y-font.BottomPad)

		// create box for placing text on
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			obj.Rect.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, obj.Rect.Min.Y)

		// record label rendering details
		nextLabel := boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		}
		boxLabels = append(boxLabels, nextLabel)
	}

	// draw all precalculated box labels so they are the top most layer on
	// the image
	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
