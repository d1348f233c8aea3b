package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskmanager/internal/models"
)

// ReportGenerator renders task lists as A4 PDF tables.
type ReportGenerator struct {
	FontPath string // TTF with the needed glyphs; empty means core Helvetica
	fontName string
}

type TaskReport struct {
	Username    string
	Tasks       []models.Task
	Total       int64
	GeneratedAt time.Time
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	name := "Helvetica"
	if fontPath != "" {
		name = "Report"
	}
	return &ReportGenerator{FontPath: fontPath, fontName: name}
}

// column widths in mm; 170 = A4 minus 20mm margins
var reportColumns = []struct {
	title string
	width float64
}{
	{"Title", 80},
	{"Status", 30},
	{"Priority", 25},
	{"Due", 35},
}

func (g *ReportGenerator) Render(w io.Writer, data TaskReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tasks", true)
	pdf.SetAuthor("Task Manager", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	tr := func(s string) string { return s }
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ===== Header
	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr("Tasks of "+data.Username), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	sub := fmt.Sprintf("%d task(s), generated %s", data.Total, data.GeneratedAt.Format("2006-01-02 15:04 MST"))
	pdf.CellFormat(0, 6, sub, "", 1, "L", false, 0, "")
	if int64(len(data.Tasks)) < data.Total {
		pdf.CellFormat(0, 6, fmt.Sprintf("Showing the first %d.", len(data.Tasks)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ===== Table
	pdf.SetFont(g.fontName, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range reportColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 10)
	for _, t := range data.Tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		cells := []string{fit(pdf, t.Title, reportColumns[0].width-2, tr), string(t.Status), string(t.Priority), due}
		for i, c := range reportColumns {
			pdf.CellFormat(c.width, 7, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// fit shortens s (UTF-8) with an ellipsis until its encoded form fits width.
func fit(pdf *gofpdf.Fpdf, s string, width float64, tr func(string) string) string {
	if pdf.GetStringWidth(tr(s)) <= width {
		return tr(s)
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}
