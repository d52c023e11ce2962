package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFBytes caps in-memory extraction; study materials past this are
// rejected rather than risking an OOM.
const maxPDFBytes = 50 << 20

// ExtractPDFText pulls plain text from an uploaded PDF so a study material
// can be ingested straight from the file when the provider has no extracted
// text field for it.
func ExtractPDFText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty pdf upload")
	}
	if len(content) > maxPDFBytes {
		return "", fmt.Errorf("pdf too large for in-memory extraction (%d bytes)", len(content))
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n\n")
		}
		textBuilder.WriteString(text)
	}

	extracted := strings.TrimSpace(textBuilder.String())
	if extracted == "" {
		return "", fmt.Errorf("no extractable text in pdf (%d pages)", pages)
	}
	return extracted, nil
}
