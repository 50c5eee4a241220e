package docs

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPagePDF builds a minimal two-page document. The pages carry no content
// streams; page text is supplied by the pageText stub under test.
func twoPagePDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	var offsets []int
	add := func(obj string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(obj)
	}
	add("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	add("2 0 obj\n<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>\nendobj\n")
	add("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")
	add("4 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")
	xref := buf.Len()
	buf.WriteString("xref\n0 5\n0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 5 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func TestPDFExtractor_PageErrorKeepsRemainingPages(t *testing.T) {
	calls := 0
	e := &pdfExtractor{pageText: func(p pdf.Page) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("corrupt content stream")
		}
		return "First page.", nil
	}}

	text, err := e.Extract("report.pdf", twoPagePDF())

	require.NoError(t, err)
	assert.Equal(t, "First page.\n\n", text)
	assert.Equal(t, 2, calls)
}

func TestPDFExtractor_PagePanicKeepsRemainingPages(t *testing.T) {
	calls := 0
	e := &pdfExtractor{pageText: func(p pdf.Page) (string, error) {
		calls++
		if calls == 1 {
			panic("malformed stream object")
		}
		return "Second page.", nil
	}}

	text, err := e.Extract("report.pdf", twoPagePDF())

	require.NoError(t, err)
	assert.Equal(t, "\n\nSecond page.", text)
	assert.Equal(t, 2, calls)
}

func TestPDFExtractor_UnopenableDocumentIsAnError(t *testing.T) {
	e := &pdfExtractor{pageText: pageText}

	_, err := e.Extract("broken.pdf", []byte("not a pdf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
}
