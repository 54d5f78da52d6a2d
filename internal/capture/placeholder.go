// internal/capture/placeholder.go
package capture

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/xkilldash9x/macro-cli/api/schemas"
	"github.com/xkilldash9x/macro-cli/internal/config"
)

// Placeholder is a Grabber that renders a labelled blank frame. Dry runs use
// it so screenshot steps still produce a file.
type Placeholder struct {
	width, height int
	now           func() time.Time
}

// NewPlaceholder sizes frames from cfg.
func NewPlaceholder(cfg config.CaptureConfig) *Placeholder {
	return &Placeholder{width: cfg.Width, height: cfg.Height, now: time.Now}
}

var (
	backgroundColor = color.RGBA{R: 32, G: 36, B: 44, A: 255}
	textColor       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Grab returns a frame naming the target window and the capture time.
func (p *Placeholder) Grab(ctx context.Context, window schemas.WindowTarget) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.width <= 0 || p.height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", p.width, p.height)
	}

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)

	target := "desktop"
	if !window.IsZero() {
		target = fmt.Sprintf("window %q", window.Title)
		if window.ClassName != "" {
			target += fmt.Sprintf(" (%s)", window.ClassName)
		}
	}
	drawText(img, 10, 20, "dry run capture: "+target)
	drawText(img, 10, 40, p.now().Format(time.RFC3339))
	return img, nil
}

func drawText(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
