package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// PreprocessConfig tunes the cleanup pipeline applied before
// recognition. Receipt photos benefit from grayscale plus a mild
// contrast and sharpen pass.
type PreprocessConfig struct {
	Grayscale       bool    `yaml:"grayscale"`
	ContrastAmount  float64 `yaml:"contrast_amount"`
	SharpenStrength float64 `yaml:"sharpen_strength"`
}

func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		Grayscale:       true,
		ContrastAmount:  15,
		SharpenStrength: 0.5,
	}
}

// Preprocess decodes an image, applies the cleanup pipeline and
// re-encodes it as PNG for the recognition engine.
func Preprocess(imageData []byte, cfg PreprocessConfig) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if cfg.Grayscale {
		img = imaging.Grayscale(img)
	}
	if cfg.ContrastAmount != 0 {
		img = imaging.AdjustContrast(img, cfg.ContrastAmount)
	}
	if cfg.SharpenStrength > 0 {
		img = imaging.Sharpen(img, cfg.SharpenStrength)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
