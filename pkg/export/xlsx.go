package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sheetsage/sheetsage/pkg/model"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "SheetSage Solution"

	// Row height estimation: prose wraps at roughly 70 characters per line,
	// the formula is rendered unwrapped
	proseCharsPerLine = 70
	pointsPerLine     = 15
	minRowHeight      = 20
)

var (
	borderColor = "D1D5DB"
	sectionFill = "E5E7EB"
	formulaFill = "CCEEF9"
)

// Workbook renders one solution into a single-worksheet spreadsheet: a
// title row, then one labeled section per non-empty field. HTML fields are
// reduced to plain text first; the formula cell keeps the literal string.
func Workbook(problem string, solution *model.Solution) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, goerr.Wrap(err, "failed to rename worksheet")
	}

	b := &workbookBuilder{file: f}
	if err := b.makeStyles(); err != nil {
		return nil, err
	}

	if err := b.addTitle(); err != nil {
		return nil, err
	}

	if err := b.addSection("Problem Description:", problem, b.textStyle, false); err != nil {
		return nil, err
	}
	if err := b.addSection("Generated Formula:", solution.Formula, b.formulaStyle, true); err != nil {
		return nil, err
	}
	if err := b.addSection("Step-by-Step Guide:", HTMLToText(solution.StepByStepGuide), b.textStyle, false); err != nil {
		return nil, err
	}
	if err := b.addSection("Explanation:", HTMLToText(solution.Explanation), b.textStyle, false); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(sheetName, "A", "A", 25); err != nil {
		return nil, goerr.Wrap(err, "failed to set column width")
	}
	if err := f.SetColWidth(sheetName, "B", "D", 35); err != nil {
		return nil, goerr.Wrap(err, "failed to set column width")
	}

	return f, nil
}

type workbookBuilder struct {
	file *excelize.File
	row  int

	titleStyle        int
	sectionLabelStyle int
	formulaLabelStyle int
	textStyle         int
	formulaStyle      int
}

func sectionBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "top", Color: borderColor, Style: 1},
		{Type: "bottom", Color: borderColor, Style: 1},
		{Type: "left", Color: borderColor, Style: 1},
		{Type: "right", Color: borderColor, Style: 1},
	}
}

func (b *workbookBuilder) makeStyles() error {
	var err error

	b.titleStyle, err = b.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Bold: true, Color: "4F46E5"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create title style")
	}

	b.sectionLabelStyle, err = b.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Bold: true, Color: "111827"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{sectionFill}},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true, Indent: 1},
		Border:    sectionBorder(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create section label style")
	}

	b.formulaLabelStyle, err = b.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Bold: true, Color: "111827"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{formulaFill}},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true, Indent: 1},
		Border:    sectionBorder(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create formula label style")
	}

	b.textStyle, err = b.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true, Indent: 1},
		Border:    sectionBorder(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create text style")
	}

	b.formulaStyle, err = b.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11, Family: "Courier New", Color: "0E7490"},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: false, Indent: 1},
		Border:    sectionBorder(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create formula style")
	}

	return nil
}

func (b *workbookBuilder) addTitle() error {
	if err := b.file.MergeCell(sheetName, "A1", "D1"); err != nil {
		return goerr.Wrap(err, "failed to merge title cells")
	}
	if err := b.file.SetCellValue(sheetName, "A1", "SheetSage AI Solution"); err != nil {
		return goerr.Wrap(err, "failed to set title cell")
	}
	if err := b.file.SetCellStyle(sheetName, "A1", "A1", b.titleStyle); err != nil {
		return goerr.Wrap(err, "failed to style title cell")
	}
	if err := b.file.SetRowHeight(sheetName, 1, 30); err != nil {
		return goerr.Wrap(err, "failed to set title row height")
	}

	b.row = 1
	return nil
}

func (b *workbookBuilder) addSection(label, content string, contentStyle int, isFormula bool) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	// Thin spacer row between sections
	b.row++
	if err := b.file.SetRowHeight(sheetName, b.row, 8); err != nil {
		return goerr.Wrap(err, "failed to set spacer row height")
	}
	b.row++

	labelStyle := b.sectionLabelStyle
	if isFormula {
		labelStyle = b.formulaLabelStyle
	}

	labelCell := fmt.Sprintf("A%d", b.row)
	if err := b.file.SetCellValue(sheetName, labelCell, label); err != nil {
		return goerr.Wrap(err, "failed to set section label", goerr.V("label", label))
	}
	if err := b.file.SetCellStyle(sheetName, labelCell, labelCell, labelStyle); err != nil {
		return goerr.Wrap(err, "failed to style section label", goerr.V("label", label))
	}

	contentCell := fmt.Sprintf("B%d", b.row)
	if err := b.file.MergeCell(sheetName, contentCell, fmt.Sprintf("D%d", b.row)); err != nil {
		return goerr.Wrap(err, "failed to merge content cells", goerr.V("label", label))
	}
	if err := b.file.SetCellValue(sheetName, contentCell, content); err != nil {
		return goerr.Wrap(err, "failed to set section content", goerr.V("label", label))
	}
	if err := b.file.SetCellStyle(sheetName, contentCell, contentCell, contentStyle); err != nil {
		return goerr.Wrap(err, "failed to style section content", goerr.V("label", label))
	}

	if err := b.file.SetRowHeight(sheetName, b.row, estimateRowHeight(content, isFormula)); err != nil {
		return goerr.Wrap(err, "failed to set section row height", goerr.V("label", label))
	}

	return nil
}

// estimateRowHeight sizes a row from the explicit line count plus a wrap
// estimate for prose; the formula never wraps
func estimateRowHeight(content string, isFormula bool) float64 {
	lines := strings.Count(content, "\n") + 1

	wrapLines := 0
	if !isFormula {
		flat := strings.ReplaceAll(content, "\n", "")
		wrapLines = len([]rune(flat)) / proseCharsPerLine
	}

	total := lines + wrapLines
	if total < 1 {
		total = 1
	}

	height := float64(total*pointsPerLine + 5)
	if height < minRowHeight {
		return minRowHeight
	}
	return height
}

var (
	unsafeCharRe  = regexp.MustCompile(`[^a-zA-Z0-9_ ]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	maxNameLength = 30
)

// safeName derives a filesystem-friendly name fragment from the problem
// description: first 30 characters, non-alphanumerics stripped, whitespace
// runs collapsed to underscores. Empty results fall back to "details".
func safeName(problem string) string {
	runes := []rune(problem)
	if len(runes) > maxNameLength {
		runes = runes[:maxNameLength]
	}

	name := unsafeCharRe.ReplaceAllString(string(runes), "")
	name = whitespaceRe.ReplaceAllString(name, "_")
	if name == "" {
		return "details"
	}
	return name
}

// Filename is the download name for an exported workbook
func Filename(problem string) string {
	return "SheetSage_Solution_" + safeName(problem) + ".xlsx"
}
