package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateDocument carries the fields rendered onto a certificate PDF.
type CertificateDocument struct {
	ID          int64
	StudentName string
	Student     string
	CourseName  string
	Credits     int
	IssuedAt    time.Time
	ContentRef  string
	Valid       bool
}

// PDFExporter renders certificate documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderCertificate creates a single-page certificate document.
func (e *PDFExporter) RenderCertificate(doc CertificateDocument) ([]byte, error) {
	if doc.ID <= 0 {
		return nil, fmt.Errorf("certificate id required")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.CellFormat(0, 14, "CERTIFICATE OF COMPLETION", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 18)
	name := doc.StudentName
	if name == "" {
		name = doc.Student
	}
	pdf.CellFormat(0, 12, name, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "has completed the course", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, doc.CourseName, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	meta := []string{
		fmt.Sprintf("Certificate no. %d", doc.ID),
		fmt.Sprintf("Issued %s", doc.IssuedAt.UTC().Format("2 January 2006")),
	}
	if doc.Credits > 0 {
		meta = append(meta, fmt.Sprintf("%d credits", doc.Credits))
	}
	for _, line := range meta {
		pdf.CellFormat(0, 6, line, "", 1, "C", false, 0, "")
	}
	if doc.ContentRef != "" {
		pdf.Ln(4)
		pdf.SetFont("Courier", "", 8)
		pdf.CellFormat(0, 5, doc.ContentRef, "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
