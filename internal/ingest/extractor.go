package ingest

import (
	"bytes"
	"context"

	"github.com/cognitext/cognitext/pkg/pdftext"
)

// PDFExtractor adapts pkg/pdftext to the pipeline's Extractor interface.
type PDFExtractor struct{}

func NewPDFExtractor() PDFExtractor { return PDFExtractor{} }

func (PDFExtractor) Extract(_ context.Context, data []byte) ([]pdftext.Page, error) {
	return pdftext.Pages(bytes.NewReader(data), int64(len(data)))
}
