package upload

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText extracts the embedded text layer of a PDF, page by page. Scanned
// documents yield an empty string; the caller decides whether to OCR them.
func PDFText(data []byte) (text string, pages int, err error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", 0, fmt.Errorf("%w: not a PDF", ErrUnsupportedFormat)
	}
	// The parser panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	pages = reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Pages that are only images have no text; skip them.
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			continue
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(pageText)
		}
	}
	return sb.String(), pages, nil
}
