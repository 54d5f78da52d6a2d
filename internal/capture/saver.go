// internal/capture/saver.go
// Package capture turns grabbed frames into screenshot files.
package capture

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// Grabber produces a frame of a window, or of the whole desktop when the
// target is empty.
type Grabber interface {
	Grab(ctx context.Context, window schemas.WindowTarget) (image.Image, error)
}

type encoder func(w io.Writer, img image.Image) error

var encoders = map[string]encoder{
	".png":  png.Encode,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// Supported reports whether path has an extension Saver can encode.
func Supported(path string) bool {
	_, ok := encoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Saver implements the screen capture collaborator: it grabs a frame and
// writes it to disk in the format named by the file extension.
type Saver struct {
	grabber Grabber
	logger  *zap.Logger
}

// NewSaver returns a Saver reading frames from grabber.
func NewSaver(grabber Grabber, logger *zap.Logger) *Saver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saver{grabber: grabber, logger: logger.Named("capture")}
}

// Capture grabs one frame and writes it to path, creating the directory as
// needed. A partially written file is removed.
func (s *Saver) Capture(ctx context.Context, path string, window schemas.WindowTarget) error {
	enc, ok := encoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("unsupported screenshot format %q", filepath.Ext(path))
	}
	img, err := s.grabber.Grab(ctx, window)
	if err != nil {
		return fmt.Errorf("grabbing frame: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating screenshot directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating screenshot file: %w", err)
	}
	if err := enc(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	b := img.Bounds()
	s.logger.Debug("Saved screenshot", zap.String("path", path), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return nil
}
