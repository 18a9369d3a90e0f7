package export

import (
	"fmt"
	"strings"
)

// Format identifies an export encoding.
type Format string

// Supported export formats.
const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Renderer renders datasets in every supported format.
type Renderer struct {
	csv *CSVExporter
	pdf *PDFExporter
}

// NewRenderer builds a Renderer with the default exporters.
func NewRenderer() *Renderer {
	return &Renderer{csv: NewCSVExporter(), pdf: NewPDFExporter()}
}

// Render encodes the dataset using the requested format.
func (r *Renderer) Render(format Format, data Dataset, title string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return r.pdf.Render(data, title)
	case FormatCSV:
		return r.csv.Render(data)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
