// Package pdftext extracts page-level text from PDF blobs. Extraction is
// all-or-nothing: the caller gets the full ordered page sequence or an error,
// never a partial document.
package pdftext

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the text of a single PDF page. Number is 1-based and follows
// document order; the slice index is always Number-1.
type Page struct {
	Number int
	Text   string
}

// Pages reads every page of the PDF in order. The page count consumed by the
// quota policy is len(pages).
func Pages(data io.ReaderAt, size int64) ([]Page, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages := make([]Page, 0, numPages)
	empty := true
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if strings.TrimSpace(text) != "" {
			empty = false
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	if empty {
		return nil, fmt.Errorf("pdf has no extractable text")
	}

	return pages, nil
}
