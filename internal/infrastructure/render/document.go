// Package render turns financial report snapshots into downloadable files.
package render

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/report"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CellKind tells renderers how to present a cell
type CellKind int

const (
	KindText CellKind = iota
	KindAmount
	KindPercent
	KindCount
)

// Cell is a single value of a section row
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
}

// Section is a titled table of a Document
type Section struct {
	Title   string
	Headers []string
	Rows    [][]Cell
}

// Document is the format-independent layout shared by every renderer
type Document struct {
	Title       string
	GeneratedAt time.Time
	Sections    []Section
}

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)
)

func text(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

func amount(d decimal.Decimal) Cell {
	return Cell{Kind: KindAmount, Number: d.Round(2)}
}

func percent(d decimal.Decimal) Cell {
	return Cell{Kind: KindPercent, Number: d.Round(2)}
}

func count(n int64) Cell {
	return Cell{Kind: KindCount, Number: decimal.NewFromInt(n)}
}

// CategoryTitle turns "teacher_training" into "Teacher Training"
func CategoryTitle(category string) string {
	return titleCaser.String(strings.ReplaceAll(category, "_", " "))
}

// FormatAmount formats an amount with thousands grouping and two decimals
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	frac := d.Sub(whole).Shift(2).IntPart()
	return sign + printer.Sprintf("%d", whole.IntPart()) + "." + printer.Sprintf("%02d", frac)
}

// Raw returns the machine readable form of the cell
func (c Cell) Raw() string {
	switch c.Kind {
	case KindAmount, KindPercent:
		return c.Number.StringFixed(2)
	case KindCount:
		return c.Number.String()
	}
	return c.Text
}

// Display returns the human readable form of the cell
func (c Cell) Display() string {
	switch c.Kind {
	case KindAmount:
		return FormatAmount(c.Number)
	case KindPercent:
		return FormatAmount(c.Number) + "%"
	case KindCount:
		return printer.Sprintf("%d", c.Number.IntPart())
	}
	return c.Text
}

// NewReportDocument lays out a report in a fixed field order
func NewReportDocument(r *report.FinancialReport) Document {
	const dateLayout = "2006-01-02"

	doc := Document{
		Title:       CategoryTitle(string(r.ReportType)) + " Financial Report",
		GeneratedAt: r.GeneratedAt,
	}

	doc.Sections = append(doc.Sections, Section{
		Title:   "Summary",
		Headers: []string{"Field", "Value"},
		Rows: [][]Cell{
			{text("Report ID"), text(r.ID.String())},
			{text("Report Type"), text(string(r.ReportType))},
			{text("Period Start"), text(r.PeriodStart.Format(dateLayout))},
			{text("Period End"), text(r.PeriodEnd.Format(dateLayout))},
			{text("Generated At"), text(r.GeneratedAt.UTC().Format(time.RFC3339))},
		},
	})

	rev := r.Revenue
	doc.Sections = append(doc.Sections, Section{
		Title:   "Revenue",
		Headers: []string{"Field", "Value"},
		Rows: [][]Cell{
			{text("Total Revenue"), amount(rev.TotalRevenue)},
			{text("Teacher Payments"), amount(rev.TeacherPayments)},
			{text("General Expenses"), amount(rev.GeneralExpenses)},
			{text("Total Expenses"), amount(rev.TotalExpenses)},
			{text("Net Income"), amount(rev.NetIncome)},
			{text("Profit Margin"), percent(rev.ProfitMargin)},
		},
	})

	categories := Section{
		Title:   "Expenses By Category",
		Headers: []string{"Category", "Amount", "Count"},
		Rows:    make([][]Cell, 0, len(rev.ExpensesByCategory)),
	}
	for _, c := range rev.ExpensesByCategory {
		categories.Rows = append(categories.Rows, []Cell{
			text(CategoryTitle(c.Category)),
			amount(c.Amount),
			count(c.Count),
		})
	}
	doc.Sections = append(doc.Sections, categories)

	m := r.Metrics
	doc.Sections = append(doc.Sections, Section{
		Title:   "Metrics",
		Headers: []string{"Field", "Value"},
		Rows: [][]Cell{
			{text("Active Students"), count(m.ActiveStudents)},
			{text("Active Teachers"), count(m.ActiveTeachers)},
			{text("Total Hours"), amount(m.TotalHours)},
			{text("Total Lessons"), count(m.TotalLessons)},
			{text("Attendance Rate"), percent(m.AttendanceRate)},
			{text("Average Revenue Per Student"), amount(m.AverageRevenuePerStudent)},
		},
	})

	return doc
}
