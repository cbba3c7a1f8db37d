package pix

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

type RecoveryLevel int

const (
	// 7% of codewords can be restored
	RecoveryLow RecoveryLevel = iota
	// 15%
	RecoveryMedium
	// 25%
	RecoveryQuartile
	// 30%
	RecoveryHigh
)

func (level RecoveryLevel) String() string {
	switch level {
	case RecoveryLow:
		return "L"
	case RecoveryMedium:
		return "M"
	case RecoveryQuartile:
		return "Q"
	case RecoveryHigh:
		return "H"
	default:
		return "unknown"
	}
}

// ParseRecoveryLevel accepts L, M, Q or H (case insensitive).
func ParseRecoveryLevel(s string) (RecoveryLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return RecoveryLow, nil
	case "M":
		return RecoveryMedium, nil
	case "Q":
		return RecoveryQuartile, nil
	case "H":
		return RecoveryHigh, nil
	default:
		return 0, fmt.Errorf("invalid recovery level '%v'", s)
	}
}

// RenderConfig controls how a payload is drawn as a QR code.
type RenderConfig struct {
	Level RecoveryLevel
	// quiet zone around the symbol, in modules
	Margin int
	// width and height of the image in pixels
	Size int
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{Level: RecoveryMedium, Margin: 1, Size: 250}
}

// Renderer turns payload text into an encoded image.
type Renderer interface {
	Render(ctx context.Context, payload string, config RenderConfig) ([]byte, error)
}

// EncodeImage builds the payload for payment and renders it with r.
// Errors from r are wrapped with ErrRender; payload errors are not.
func EncodeImage(ctx context.Context, r Renderer, payment Payment, config RenderConfig) (string, []byte, error) {
	payload, err := payment.Encode()
	if err != nil {
		return "", nil, err
	}

	img, err := r.Render(ctx, payload, config)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return payload, img, nil
}

// DataURL returns png as a base64 data URL.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
