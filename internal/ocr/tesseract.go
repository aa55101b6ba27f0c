package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/finproc/statement-processor/pkg/logger"
)

// TesseractConfig configures the local Tesseract engine.
type TesseractConfig struct {
	Languages  []string         `yaml:"languages"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
}

func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Languages:  []string{"eng"},
		Preprocess: DefaultPreprocessConfig(),
	}
}

// TesseractEngine recognizes text with a local Tesseract install. A
// fresh gosseract client is created per call; the library's clients are
// not safe to share across goroutines.
type TesseractEngine struct {
	config TesseractConfig
	logger logger.Logger
}

// NewTesseractEngine probes the Tesseract install up front so a missing
// binary or language pack fails at startup rather than on the first job.
func NewTesseractEngine(cfg TesseractConfig, log logger.Logger) (*TesseractEngine, error) {
	available, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("tesseract not available: %w", err)
	}
	for _, want := range cfg.Languages {
		ok := false
		for _, lang := range available {
			if lang == want {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("tesseract language %q not installed", want)
		}
	}
	return &TesseractEngine{config: cfg, logger: log}, nil
}

func (e *TesseractEngine) Recognize(ctx context.Context, imageData []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	processed, err := Preprocess(imageData, e.config.Preprocess)
	if err != nil {
		e.logger.Warn("image preprocessing failed, using original", logger.Error(err))
		processed = imageData
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(e.config.Languages, "+")); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(processed); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *TesseractEngine) Close() error {
	return nil
}
