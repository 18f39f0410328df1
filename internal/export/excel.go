package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Ranked Candidates"
	emailsSheet     = "Emails"
)

// ReportMeta carries the request details shown on the summary sheet.
type ReportMeta struct {
	JobTitle       string
	JobDescription string
}

// WriteReport renders result as an XLSX workbook into w.
func WriteReport(w io.Writer, result *models.ScreeningResult, meta ReportMeta) error {
	f, err := buildWorkbook(result, meta)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveReport writes the workbook to path, adding the .xlsx extension when missing.
func SaveReport(path string, result *models.ScreeningResult, meta ReportMeta) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if err := WriteReport(file, result, meta); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}
	return path, nil
}

func buildWorkbook(result *models.ScreeningResult, meta ReportMeta) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeSummarySheet(f, result, meta); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidatesSheet(f, result.Ranked); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}

	if len(result.Emails) > 0 {
		if _, err := f.NewSheet(emailsSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := writeEmailsSheet(f, result.Emails); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create emails sheet: %w", err)
		}
	}

	return f, nil
}

func writeSummarySheet(f *excelize.File, result *models.ScreeningResult, meta ReportMeta) error {
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetColWidth(summarySheet, "A", "A", 24)
	f.SetColWidth(summarySheet, "B", "B", 60)

	f.SetCellValue(summarySheet, "A1", "Resume Screening Report")
	f.MergeCell(summarySheet, "A1", "B1")
	f.SetCellStyle(summarySheet, "A1", "B1", titleStyle)

	scored, failed, total := 0, 0, 0
	for _, ev := range result.Ranked {
		if ev.ParseStatus == models.ParseFailed {
			failed++
			continue
		}
		scored++
		total += ev.Score
	}
	average := "n/a"
	if scored > 0 {
		average = fmt.Sprintf("%.1f", float64(total)/float64(scored))
	}

	rows := [][2]any{
		{"Batch ID", result.BatchID.String()},
		{"Generated", result.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Job Title", meta.JobTitle},
		{"Candidates", len(result.Ranked)},
		{"Scored", scored},
		{"Failed", failed},
		{"Average Score", average},
		{"Partial Result", result.Partial},
		{"Job Description", meta.JobDescription},
	}

	for i, r := range rows {
		row := i + 3
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), r[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r[1])
		f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	}
	return nil
}

var candidateHeaders = []any{"Rank", "Candidate ID", "File", "Score", "Status", "Missing Skills", "Remarks", "Failure"}

func writeCandidatesSheet(f *excelize.File, ranked models.RankedResult) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	bandStyles := map[string]int{}
	for band, color := range map[string]string{
		"excellent": "C6EFCE",
		"good":      "FFEB9C",
		"fair":      "FFC7CE",
		"poor":      "FF9999",
		"failed":    "D9D9D9",
	} {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		})
		if err != nil {
			return err
		}
		bandStyles[band] = style
	}

	widths := []float64{8, 24, 28, 8, 10, 36, 60, 20}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(candidatesSheet, col, col, w)
	}

	header := candidateHeaders
	if err := f.SetSheetRow(candidatesSheet, "A1", &header); err != nil {
		return err
	}
	f.SetCellStyle(candidatesSheet, "A1", "H1", headerStyle)

	for i, ev := range ranked {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			ev.Rank,
			ev.CandidateID,
			ev.Filename,
			ev.Score,
			string(ev.ParseStatus),
			strings.Join(ev.MissingSkills, ", "),
			ev.Remarks,
			ev.Failure,
		}
		if err := f.SetSheetRow(candidatesSheet, cell, &values); err != nil {
			return err
		}
		f.SetCellStyle(candidatesSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), bandStyles[scoreBand(ev)])
	}

	f.SetPanes(candidatesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return nil
}

func scoreBand(ev models.CandidateEvaluation) string {
	switch {
	case ev.ParseStatus == models.ParseFailed:
		return "failed"
	case ev.Score >= 90:
		return "excellent"
	case ev.Score >= 70:
		return "good"
	case ev.Score >= 50:
		return "fair"
	default:
		return "poor"
	}
}

func writeEmailsSheet(f *excelize.File, emails []models.Email) error {
	header := []any{"Candidate ID", "To", "Decision", "Subject", "Body", "AI Generated"}
	if err := f.SetSheetRow(emailsSheet, "A1", &header); err != nil {
		return err
	}

	for i, e := range emails {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{e.CandidateID, e.To, string(e.Decision), e.Subject, e.Body, e.Generated}
		if err := f.SetSheetRow(emailsSheet, cell, &values); err != nil {
			return err
		}
	}

	f.SetColWidth(emailsSheet, "D", "D", 40)
	f.SetColWidth(emailsSheet, "E", "E", 80)
	return nil
}
