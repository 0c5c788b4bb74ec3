package parser

import (
	"bytes"
	"fmt"
	"net/http"

	pdflib "github.com/ledongthuc/pdf"

	"fieldextract/internal/domain"
)

// PDFInspector rejects payloads that are not readable PDF documents before
// they are uploaded.
type PDFInspector struct{}

// NewPDFInspector creates a PDFInspector.
func NewPDFInspector() *PDFInspector {
	return &PDFInspector{}
}

func (p *PDFInspector) Inspect(name string, payload []byte) (err error) {
	if ct := http.DetectContentType(payload); ct != "application/pdf" {
		return fmt.Errorf("%w: %s detected as %s", domain.ErrUnsupportedFileType, name, ct)
	}

	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", domain.ErrInvalidFileFormat, name, r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidFileFormat, name, err)
	}
	if reader.NumPage() == 0 {
		return fmt.Errorf("%w: %s has no pages", domain.ErrInvalidFileFormat, name)
	}
	return nil
}
