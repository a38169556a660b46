package dto

// ExportFormat selects the grade report download format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// GradeExport is a rendered grade report ready to stream.
type GradeExport struct {
	Filename    string
	ContentType string
	Body        []byte
}
