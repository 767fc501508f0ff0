package pdfdoc

import (
	"context"
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
)

var _ core.OCREngine = (*OCR)(nil)

// OCR rasterizes a PDF and runs each page image through docconv's tesseract
// binding. docconv only links tesseract when built with the "ocr" tag;
// without it every page fails and RecognizePDF returns the last error.
type OCR struct {
	raster *Rasterizer
	log    *logger.Logger
}

func NewOCR(raster *Rasterizer, log *logger.Logger) *OCR {
	return &OCR{raster: raster, log: log.With("component", "ocr")}
}

func (o *OCR) RecognizePDF(ctx context.Context, data []byte) (string, error) {
	images, cleanup, err := o.raster.Rasterize(ctx, data)
	defer cleanup()
	if err != nil {
		return "", err
	}

	var (
		parts   []string
		lastErr error
	)
	for i, path := range images {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := recognizeImage(path)
		if err != nil {
			o.log.Warn("ocr page failed", "page", i+1, "err", err)
			lastErr = err
			continue
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 && lastErr != nil {
		return "", fmt.Errorf("ocr: %w", lastErr)
	}

	o.log.Debug("ocr complete", "pages", len(images), "recognized", len(parts))
	return strings.Join(parts, "\n"), nil
}

func recognizeImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, _, err := docconv.ConvertImage(f)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
