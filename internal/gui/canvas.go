package gui

import (
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/frame"
	"realtime-edge-detector/internal/metrics"
)

// FrameCanvas shows the latest processed frame.
type FrameCanvas struct {
	image *canvas.Image
	card  *widget.Card
}

func NewFrameCanvas() *FrameCanvas {
	placeholder := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for i := 0; i < len(placeholder.Pix); i += 4 {
		placeholder.Pix[i], placeholder.Pix[i+1], placeholder.Pix[i+2], placeholder.Pix[i+3] = 32, 32, 32, 255
	}

	img := canvas.NewImageFromImage(placeholder)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScalePixels
	img.SetMinSize(fyne.NewSize(320, 240))

	return &FrameCanvas{
		image: img,
		card:  widget.NewCard("Output", "", img),
	}
}

func (fc *FrameCanvas) GetContainer() fyne.CanvasObject {
	return fc.card
}

// Update displays f. Invert output has alpha 0, so it is shown opaque.
func (fc *FrameCanvas) Update(f *frame.RGBAFrame) {
	if f == nil {
		return
	}
	fc.image.Image = &opaqueImage{f.Image()}
	fc.image.Refresh()
	fc.card.SetSubTitle(fmt.Sprintf("%dx%d", f.Width, f.Height))
}

// Current returns the displayed image.
func (fc *FrameCanvas) Current() image.Image {
	return fc.image.Image
}

// opaqueImage forces alpha to 255 for display without copying pixels.
type opaqueImage struct {
	*image.RGBA
}

func (o *opaqueImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (o *opaqueImage) At(x, y int) color.Color {
	c := o.RGBA.RGBAAt(x, y)
	c.A = 255
	return c
}

// StatusBar shows timing, throughput and messages.
type StatusBar struct {
	timing  *widget.Label
	message *widget.Label
	box     *fyne.Container
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{
		timing:  widget.NewLabel("waiting for frames"),
		message: widget.NewLabel(""),
	}
	sb.box = container.NewHBox(sb.timing, widget.NewSeparator(), sb.message)
	return sb
}

func (sb *StatusBar) GetContainer() fyne.CanvasObject {
	return sb.box
}

func (sb *StatusBar) Update(lastMs float64, summary metrics.Summary, mode algorithms.Mode) {
	sb.timing.SetText(fmt.Sprintf("%s | %.2f ms | %d fps | %dx%d | %d frames",
		mode, lastMs, summary.FPS, summary.LastWidth, summary.LastHeight, summary.Frames))
}

func (sb *StatusBar) SetMessage(msg string) {
	sb.message.SetText(msg)
}

// Text returns the timing label, mainly for tests.
func (sb *StatusBar) Text() string {
	return sb.timing.Text
}
