package extract

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMediaType sniffs the media type of the file at path from its magic
// bytes. It is only consulted when the uploader declared no type at all.
func DetectMediaType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect media type: %w", err)
	}
	return mtype.String(), nil
}
