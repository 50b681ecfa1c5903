// Package report renders score reports as PDF documents.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/jung-kurt/gofpdf"
)

// Renderer writes a score report in some document format.
type Renderer interface {
	Render(w io.Writer, report *queries.ScoreReport) error
}

// PDFRenderer lays a score report out on A4 pages with the built-in Helvetica font.
type PDFRenderer struct {
	Author string
	now    func() time.Time
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{
		Author: "perfboard",
		now:    time.Now,
	}
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Task", 62, "L"},
	{"Due", 22, "C"},
	{"Completed", 24, "C"},
	{"Late", 14, "R"},
	{"Base", 14, "R"},
	{"Penalty", 17, "R"},
	{"Final", 17, "R"},
}

// Render writes the report to w.
func (r *PDFRenderer) Render(w io.Writer, report *queries.ScoreReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Score report %s %s", report.UserName, report.Month), false)
	pdf.SetAuthor(r.Author, false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Monthly score report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", r.now().UTC().Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	kv(pdf, "Developer", fmt.Sprintf("%s (%s)", report.UserName, report.UserID))
	kv(pdf, "Month", report.Month)
	kv(pdf, "Total score", fmt.Sprintf("%d of %d", report.TotalScore, report.TargetScore))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range report.Tasks {
		cells := []string{
			tr(truncate(line.TaskTitle, 38)),
			line.DueDate,
			line.CompletedDate,
			fmt.Sprintf("%d", line.DaysLate),
			fmt.Sprintf("%d", line.BaseScore),
			fmt.Sprintf("%d", line.DelayPenalty),
			fmt.Sprintf("%d", line.FinalScore),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(report.Tasks) == 0 {
		pdf.CellFormat(0, 6, "No tasks completed this month.", "1", 1, "C", false, 0, "")
	}

	return pdf.Output(w)
}

// WriteFile renders the report into path, creating parent directories.
func WriteFile(r Renderer, path string, report *queries.ScoreReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := r.Render(f, report); err != nil {
		f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}

func kv(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(35, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
