package export_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sheetsage/sheetsage/pkg/export"
	"github.com/sheetsage/sheetsage/pkg/model"
)

const sheetName = "SheetSage Solution"

func TestWorkbook(t *testing.T) {
	solution := &model.Solution{
		StepByStepGuide: "<p>Use SUMIF</p>",
		Formula:         `=SUMIF(B:B,"Sales",A:A)`,
		Explanation:     "<p>It sums matches.</p>",
	}

	f, err := export.Workbook("How do I sum values in column A if column B says 'Sales'?", solution)
	gt.NoError(t, err)

	title, err := f.GetCellValue(sheetName, "A1")
	gt.NoError(t, err)
	gt.Equal(t, title, "SheetSage AI Solution")

	// Sections land on every other row after the title: problem on 3,
	// formula on 5, guide on 7, explanation on 9
	label, err := f.GetCellValue(sheetName, "A5")
	gt.NoError(t, err)
	gt.Equal(t, label, "Generated Formula:")

	// The formula cell holds the literal string, unwrapped and unmodified
	formula, err := f.GetCellValue(sheetName, "B5")
	gt.NoError(t, err)
	gt.Equal(t, formula, `=SUMIF(B:B,"Sales",A:A)`)

	guide, err := f.GetCellValue(sheetName, "B7")
	gt.NoError(t, err)
	gt.Equal(t, guide, "Use SUMIF")

	explanation, err := f.GetCellValue(sheetName, "B9")
	gt.NoError(t, err)
	gt.Equal(t, explanation, "It sums matches.")
}

func TestWorkbookSkipsEmptySections(t *testing.T) {
	solution := &model.Solution{
		StepByStepGuide: "<p>Just add the numbers.</p>",
		Formula:         "",
		Explanation:     "",
	}

	f, err := export.Workbook("add up a column", solution)
	gt.NoError(t, err)

	// With formula and explanation empty, the guide follows the problem
	// section directly
	label, err := f.GetCellValue(sheetName, "A5")
	gt.NoError(t, err)
	gt.Equal(t, label, "Step-by-Step Guide:")

	rest, err := f.GetCellValue(sheetName, "A7")
	gt.NoError(t, err)
	gt.Equal(t, rest, "")
}

func TestWorkbookRowHeights(t *testing.T) {
	long := "<p>" + stringOfLen(280) + "</p>"
	solution := &model.Solution{
		StepByStepGuide: long,
		Formula:         "=SUM(A:A)",
		Explanation:     "<p>short</p>",
	}

	f, err := export.Workbook("p", solution)
	gt.NoError(t, err)

	// 280 chars of prose wrap into 1 + 280/70 = 5 estimated lines
	guideHeight, err := f.GetRowHeight(sheetName, 7)
	gt.NoError(t, err)
	gt.Equal(t, guideHeight, float64(5*15+5))

	// Short sections stay at the minimum
	explanationHeight, err := f.GetRowHeight(sheetName, 9)
	gt.NoError(t, err)
	gt.Equal(t, explanationHeight, float64(20))
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func TestFilename(t *testing.T) {
	cases := []struct {
		problem string
		want    string
	}{
		{
			problem: "How do I sum values in column A if column B says 'Sales'?",
			want:    "SheetSage_Solution_How_do_I_sum_values_in_column_.xlsx",
		},
		{
			problem: "!!!???",
			want:    "SheetSage_Solution_details.xlsx",
		},
		{
			problem: "",
			want:    "SheetSage_Solution_details.xlsx",
		},
		{
			problem: "vlookup",
			want:    "SheetSage_Solution_vlookup.xlsx",
		},
	}

	for _, tc := range cases {
		gt.Equal(t, export.Filename(tc.problem), tc.want)
	}
}
