package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/tutorcenter/backend/internal/domain/report"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat is returned for formats that are not file formats
	ErrUnsupportedFormat = errors.New("unsupported render format")
	// ErrPDFUnavailable is returned when no PDF engine is configured
	ErrPDFUnavailable = errors.New("pdf rendering is not available")
)

// PDFEngine prints a complete HTML document to PDF
type PDFEngine interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// Output is a rendered report file
type Output struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Renderer dispatches a report to the renderer of the requested format
type Renderer struct {
	pdf    PDFEngine
	logger *zap.Logger
}

// NewRenderer creates a Renderer. pdf may be nil when Chrome is not available.
func NewRenderer(pdf PDFEngine, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{pdf: pdf, logger: logger}
}

// Render renders r in format
func (rd *Renderer) Render(ctx context.Context, r *report.FinancialReport, format report.Format) (*Output, error) {
	doc := NewReportDocument(r)

	switch format {
	case report.FormatCSV:
		data, err := CSV(doc)
		if err != nil {
			return nil, err
		}
		return &Output{Data: data, ContentType: "text/csv; charset=utf-8", Extension: "csv"}, nil

	case report.FormatXLSX:
		data, err := XLSX(doc)
		if err != nil {
			return nil, err
		}
		return &Output{
			Data:        data,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Extension:   "xlsx",
		}, nil

	case report.FormatPDF:
		if rd.pdf == nil {
			return nil, ErrPDFUnavailable
		}
		html, err := HTML(doc)
		if err != nil {
			return nil, err
		}
		data, err := rd.pdf.PrintPDF(ctx, html)
		if err != nil {
			rd.logger.Warn("pdf rendering failed",
				zap.String("report_id", r.ID.String()),
				zap.Error(err))
			return nil, err
		}
		return &Output{Data: data, ContentType: "application/pdf", Extension: "pdf"}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}
