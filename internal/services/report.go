package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"alfredoptarigan/compliance-readiness/internal/compliance"
)

type ReportRenderer interface {
	Render(report compliance.Report) ([]byte, error)
}

// Page geometry in points for A4 portrait with the origin in the upper left.
const (
	pageHeight   = 842
	marginLeft   = 50
	marginTop    = 60
	marginBottom = 60
	lineHeight   = 16
	wrapColumns  = 90
)

const (
	fontRegular = "Helvetica"
	fontBold    = "Helvetica-Bold"
)

// reportLayout is the JSON content description consumed by pdfcpu's create command.
type reportLayout struct {
	Paper  string                `json:"paper"`
	Origin string                `json:"origin"`
	Pages  map[string]layoutPage `json:"pages"`
}

type layoutPage struct {
	Content layoutContent `json:"content"`
}

type layoutContent struct {
	Text []layoutText `json:"text"`
}

type layoutText struct {
	Value string     `json:"value"`
	Pos   [2]int     `json:"pos"`
	Font  layoutFont `json:"font"`
}

type layoutFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type reportRenderer struct{}

func NewReportRenderer() ReportRenderer {
	return &reportRenderer{}
}

// Render produces a PDF readiness report.
func (r *reportRenderer) Render(report compliance.Report) ([]byte, error) {
	layout, err := json.Marshal(buildReportLayout(report))
	if err != nil {
		return nil, fmt.Errorf("failed to encode report layout: %w", err)
	}

	var buf bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(layout), &buf, nil); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	return buf.Bytes(), nil
}

// layoutWriter places lines top to bottom and opens a new page when the
// current one is full.
type layoutWriter struct {
	pages []layoutPage
	y     int
}

func (w *layoutWriter) line(value, font string, size int) {
	if len(w.pages) == 0 || w.y+lineHeight > pageHeight-marginBottom {
		w.pages = append(w.pages, layoutPage{})
		w.y = marginTop
	}
	page := &w.pages[len(w.pages)-1]
	page.Content.Text = append(page.Content.Text, layoutText{
		Value: value,
		Pos:   [2]int{marginLeft, w.y},
		Font:  layoutFont{Name: font, Size: size},
	})
	w.y += lineHeight
}

func (w *layoutWriter) paragraph(value string) {
	for _, l := range wrapText(value, wrapColumns) {
		w.line(l, fontRegular, 10)
	}
}

func (w *layoutWriter) heading(value string) {
	w.blank()
	w.line(value, fontBold, 13)
}

func (w *layoutWriter) blank() {
	w.y += lineHeight / 2
}

func buildReportLayout(report compliance.Report) reportLayout {
	w := &layoutWriter{}

	w.line("Compliance Readiness Report", fontBold, 18)
	w.blank()
	w.line(fmt.Sprintf("Readiness score: %d / %s", report.ReadinessScore, formatPoints(report.MaxScore)), fontBold, 14)

	p := report.Profile
	w.heading("Extracted data")
	w.paragraph("Entity type: " + string(p.EntityType))
	w.paragraph("Paid-up capital: " + formatCapital(p.PaidUpCapital))
	w.paragraph("Business categories: " + joinOrNone(categoryLabels(p.BusinessCategories)))
	w.paragraph("Data storage locations: " + joinOrNone(p.DataStorageLocation))
	w.paragraph("Compliance officer: " + yesNo(p.HasComplianceOfficer))
	w.paragraph("Board-approved AML/CFT policy: " + yesNo(p.HasBoardApprovedAML))
	w.paragraph("Signed Articles of Association: " + yesNo(p.HasSignedAoA))
	w.paragraph("10-year record retention: " + yesNo(p.Has10YearRetention))
	w.paragraph("P2P transaction monitoring: " + yesNo(p.HasP2PMonitoringSystem))

	w.heading("Gaps")
	if len(report.FailedGaps) == 0 {
		w.paragraph("No gaps found.")
	}
	for _, gap := range report.FailedGaps {
		w.paragraph("- " + gap)
	}

	w.heading("Score breakdown")
	for _, row := range report.Breakdown {
		w.paragraph(fmt.Sprintf("%s  %s  %s / %s", row.Status, row.Check, formatPoints(row.Contribution), formatPoints(row.Weight)))
	}
	w.paragraph(fmt.Sprintf("Total: %s / %s", formatPoints(report.TotalScore), formatPoints(report.MaxScore)))

	w.heading("Recommendations")
	if len(report.Recommendations) == 0 {
		w.paragraph("None.")
	}
	for _, rec := range report.Recommendations {
		w.line(rec.Gap, fontBold, 11)
		if len(rec.Resources) == 0 {
			w.paragraph("  No matching resources.")
		}
		for _, res := range rec.Resources {
			entry := "  " + res.Name
			if res.Contact != "" {
				entry += " (" + res.Contact + ")"
			}
			w.paragraph(entry)
		}
	}

	pages := make(map[string]layoutPage, len(w.pages))
	for i, page := range w.pages {
		pages[strconv.Itoa(i+1)] = page
	}

	return reportLayout{
		Paper:  "A4P",
		Origin: "UpperLeft",
		Pages:  pages,
	}
}

// wrapText breaks s into lines of at most width runes at word boundaries.
// A line that fits is returned unchanged. Otherwise the leading indent is
// repeated on every wrapped line and words longer than width get a line of
// their own.
func wrapText(s string, width int) []string {
	if utf8.RuneCountInString(s) <= width {
		return []string{s}
	}

	body := strings.TrimLeft(s, " \t")
	indent := s[:len(s)-len(body)]
	indentLen := utf8.RuneCountInString(indent)

	var (
		lines   []string
		current strings.Builder
		length  int
	)
	for _, word := range strings.Fields(body) {
		n := utf8.RuneCountInString(word)
		if length > 0 && indentLen+length+1+n > width {
			lines = append(lines, indent+current.String())
			current.Reset()
			length = 0
		}
		if length > 0 {
			current.WriteByte(' ')
			length++
		}
		current.WriteString(word)
		length += n
	}
	return append(lines, indent+current.String())
}

// formatPoints prints whole numbers without decimals and halves with one.
func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCapital(amount int64) string {
	if amount == 0 {
		return "not found"
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return "QAR " + b.String()
}

func categoryLabels(categories []compliance.Category) []string {
	labels := make([]string, 0, len(categories))
	for _, c := range categories {
		labels = append(labels, string(c))
	}
	return labels
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
