package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/bincan-backend/internal/engine"
	"github.com/stemsi/bincan-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
)

// Export renders an exercise and its grading into an xlsx workbook. An
// exercise that was never batch graded is graded on the fly from its stored
// answers without persisting anything.
func (s *ExerciseService) Export(ctx context.Context, id uuid.UUID) ([]byte, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	results := e.Results
	if len(results) == 0 {
		results = engine.Grade(e.Blanks, e.Answers)
	}
	score := engine.Score(results)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Exercise ID", e.ID.String()},
		{"Category", string(e.Category)},
		{"Difficulty", string(e.Difficulty)},
		{"Created At", e.CreatedAt.Format(time.RFC3339)},
		{"Correct", score.Correct},
		{"Incorrect", score.Incorrect},
		{"Total", score.Total},
		{"Percentage", score.Percentage},
		{"Original Text", e.OriginalText},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Blank ID", "Position", "Correct Answer", "User Answer", "Correct", "Feedback"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(resultsSheet, cell, header)
	}

	byBlank := make(map[string]model.ExerciseResult, len(results))
	for _, r := range results {
		byBlank[r.BlankID] = r
	}
	for rowIndex, b := range e.Blanks {
		r := byBlank[b.ID]
		row := []interface{}{b.ID, b.Position, b.Word, r.UserAnswer, r.IsCorrect, r.Feedback}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(resultsSheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
