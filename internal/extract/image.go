package extract

import (
	"context"
	"fmt"
)

// extractImage runs `tesseract <path> stdout -l <lang>`. The result is not
// trimmed.
func (e *Extractor) extractImage(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	e.logger.Debug("extract.ocr.done", "lang", e.cfg.Language, "chars", len(out))
	return string(out), nil
}
