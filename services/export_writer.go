package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	resultsSheet = "Results"
)

var exportHeader = []string{"Question", "Type", "Answer", "Count", "Percentage"}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func validFormat(format string) bool {
	return format == FormatCSV || format == FormatXLSX
}

// exportRows flattens results into one row per option for choice questions
// and one row per text answer for open questions.
func exportRows(res *SurveyResults) [][]string {
	var rows [][]string
	for _, q := range res.Questions {
		if !q.Type.IsChoice() {
			if len(q.Answers) == 0 {
				rows = append(rows, []string{q.Text, string(q.Type), "", "0", ""})
			}
			for _, text := range q.Answers {
				rows = append(rows, []string{q.Text, string(q.Type), text, "1", ""})
			}
			continue
		}
		for _, o := range q.Options {
			rows = append(rows, []string{
				q.Text,
				string(q.Type),
				o.Text,
				strconv.Itoa(o.Count),
				strconv.FormatFloat(o.Percentage, 'f', 1, 64),
			})
		}
	}
	return rows
}

// WriteResults renders results in the given format to w.
func WriteResults(w io.Writer, format string, res *SurveyResults) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, res)
	case FormatXLSX:
		return writeXLSX(w, res)
	}
	return validationf("unsupported export format %q", format)
}

func writeCSV(w io.Writer, res *SurveyResults) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(exportRows(res)); err != nil {
		return err
	}
	return cw.Error()
}

func writeXLSX(w io.Writer, res *SurveyResults) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}

	rows := append([][]string{exportHeader}, exportRows(res)...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			// keep numbers numeric so spreadsheets can sum them
			if i > 0 && (j == 3 || j == 4) && v != "" {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					values[j] = n
					continue
				}
			}
			values[j] = v
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}
