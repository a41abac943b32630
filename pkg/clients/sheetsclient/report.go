package sheetsclient

import (
	"fmt"

	"github.com/jakechorley/lead-allocator/pkg/core/report"
)

// ReportValues lays out a report as a tab: a summary block, a blank row, then the
// manager x category matrix
func ReportValues(r *report.AllocationReport, window string) [][]interface{} {
	values := [][]interface{}{
		{"Window", window},
		{"Status", r.Status.String()},
		{"Objective", r.DisplayObjective()},
		{"Assigned", r.Total},
		{},
	}

	header := []interface{}{"Manager"}
	for _, col := range r.Columns {
		header = append(header, col)
	}
	values = append(values, header)

	for i, row := range r.Rows {
		line := []interface{}{row}
		for _, n := range r.Counts[i] {
			line = append(line, n)
		}
		values = append(values, line)
	}

	return values
}

// PublishReport writes the report to a new tab and returns the tab's sheet ID
func (c *Client) PublishReport(spreadsheetID, title string, r *report.AllocationReport, window string) (int64, error) {
	sheetID, err := c.CreateSheet(spreadsheetID, title)
	if err != nil {
		return 0, fmt.Errorf("failed to create report tab: %w", err)
	}

	if err := c.UpdateValues(spreadsheetID, tabRange(title), ReportValues(r, window)); err != nil {
		return 0, fmt.Errorf("failed to write report: %w", err)
	}

	return sheetID, nil
}
