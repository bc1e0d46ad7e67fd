package extract

import (
	"fmt"
	"io"
	"strings"

	"askpa/internal/pkg/docxextract"
	"askpa/internal/pkg/pdfextract"
)

// Extract returns the plain text of the uploaded document, dispatching on
// the exact (case-sensitive) filename suffix. Unsupported suffixes yield an
// empty string, not an error.
func Extract(r io.Reader, filename string) (string, error) {
	switch {
	case strings.HasSuffix(filename, ".txt"):
		b, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read txt failed: %w", err)
		}
		// Invalid UTF-8 sequences are dropped instead of failing.
		return strings.ToValidUTF8(string(b), ""), nil
	case strings.HasSuffix(filename, ".pdf"):
		text, err := pdfextract.ExtractText(r)
		if err != nil {
			return "", fmt.Errorf("extract pdf text failed: %w", err)
		}
		return text, nil
	case strings.HasSuffix(filename, ".docx"):
		text, err := docxextract.ExtractText(r)
		if err != nil {
			return "", fmt.Errorf("extract docx text failed: %w", err)
		}
		return text, nil
	default:
		return "", nil
	}
}
