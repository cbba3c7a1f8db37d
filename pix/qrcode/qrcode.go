// Package qrcode renders pix payloads as PNG QR codes.
package qrcode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/elnosh/gopix/pix"
	qr "github.com/skip2/go-qrcode"
)

const (
	MinSize = 21
	// keep images to something a browser or printer can handle
	MaxSize   = 4096
	MaxMargin = 16
)

var (
	ErrInvalidSize   = fmt.Errorf("%w: image size", pix.ErrInvalidRenderConfig)
	ErrInvalidMargin = fmt.Errorf("%w: margin", pix.ErrInvalidRenderConfig)
)

var palette = color.Palette{color.White, color.Black}

// Backend implements pix.Renderer on top of go-qrcode.
type Backend struct{}

func NewBackend() *Backend {
	return &Backend{}
}

func (b *Backend) Render(ctx context.Context, payload string, config pix.RenderConfig) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.Size < MinSize || config.Size > MaxSize {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, config.Size)
	}
	if config.Margin < 0 || config.Margin > MaxMargin {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMargin, config.Margin)
	}

	code, err := qr.New(payload, recoveryLevel(config.Level))
	if err != nil {
		return nil, fmt.Errorf("qrcode.New: %v", err)
	}
	// the quiet zone is drawn below with the configured margin
	code.DisableBorder = true
	bitmap := code.Bitmap()

	// below one pixel per module drawBitmap would drop modules
	if minSize := len(bitmap) + 2*config.Margin; config.Size < minSize {
		return nil, fmt.Errorf("%w: %v is smaller than %v modules", ErrInvalidSize, config.Size, minSize)
	}

	img := drawBitmap(bitmap, config.Margin, config.Size)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png.Encode: %v", err)
	}
	return buf.Bytes(), nil
}

// drawBitmap scales the module grid plus margin to a size x size image.
// size must be at least the module count.
func drawBitmap(bitmap [][]bool, margin, size int) *image.Paletted {
	modules := len(bitmap) + 2*margin
	img := image.NewPaletted(image.Rect(0, 0, size, size), palette)

	for y := 0; y < size; y++ {
		my := y*modules/size - margin
		if my < 0 || my >= len(bitmap) {
			continue
		}
		row := bitmap[my]
		for x := 0; x < size; x++ {
			mx := x*modules/size - margin
			if mx < 0 || mx >= len(row) {
				continue
			}
			if row[mx] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

func recoveryLevel(level pix.RecoveryLevel) qr.RecoveryLevel {
	switch level {
	case pix.RecoveryLow:
		return qr.Low
	case pix.RecoveryQuartile:
		return qr.High
	case pix.RecoveryHigh:
		return qr.Highest
	default:
		return qr.Medium
	}
}
