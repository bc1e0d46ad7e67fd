package docxextract

import (
	"bytes"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// ExtractText reads the entire content of r and extracts the text of every
// paragraph in the .docx document, joined with a single space.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}

	doc, err := docx.Parse(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}
	return strings.Join(paragraphs, " "), nil
}
