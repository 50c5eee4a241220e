package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts plain text from a PDF document. name identifies the
// document in error messages.
type PDFExtractor interface {
	Extract(name string, data []byte) (string, error)
}

type pdfExtractor struct {
	pageText func(p pdf.Page) (string, error)
}

// NewPDFExtractor returns a PDFExtractor backed by ledongthuc/pdf.
func NewPDFExtractor() PDFExtractor {
	return &pdfExtractor{pageText: pageText}
}

func pageText(p pdf.Page) (string, error) {
	return p.GetPlainText(nil)
}

// Extract returns the concatenated text of all pages, separated by blank
// lines. A page that fails to extract contributes an empty string; only a
// document that cannot be opened at all returns an error.
func (e *pdfExtractor) Extract(name string, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", name, err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		pages = append(pages, e.extractPage(r.Page(i)))
	}
	return strings.Join(pages, "\n\n"), nil
}

func (e *pdfExtractor) extractPage(page pdf.Page) (text string) {
	// The pdf library panics on some malformed content streams; treat
	// that the same as a page-level extraction error.
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	text, err := e.pageText(page)
	if err != nil {
		return ""
	}
	return text
}
