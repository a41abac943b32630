package services

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/report"
)

// ReportPublisher defines the operations needed to publish a report to a spreadsheet
type ReportPublisher interface {
	PublishReport(spreadsheetID, title string, r *report.AllocationReport, window string) (int64, error)
}

// EmailSender defines the operations needed to email a report
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// PublishResult lists what was published
type PublishResult struct {
	SheetTitle   string
	SheetID      int64
	EmailsSent   []string
	EmailsFailed map[string]error
}

// ReportTitle names the tab a run is published to
func ReportTitle(result *AllocationResult) string {
	return fmt.Sprintf("%s %s %s", result.AppID, result.Window(), result.RunID[:8])
}

// PublishReport writes the report to a new tab of the report spreadsheet
func PublishReport(result *AllocationResult, publisher ReportPublisher, spreadsheetID string, logger *zap.Logger) (*PublishResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("no report spreadsheet configured")
	}

	title := ReportTitle(result)
	sheetID, err := publisher.PublishReport(spreadsheetID, title, result.Report, result.Window())
	if err != nil {
		return nil, fmt.Errorf("failed to publish report: %w", err)
	}

	logger.Info("Published report", zap.String("title", title), zap.Int64("sheet_id", sheetID))
	return &PublishResult{SheetTitle: title, SheetID: sheetID}, nil
}

// EmailReport sends the text summary to every recipient. Failures for one
// recipient do not stop the others.
func EmailReport(result *AllocationResult, sender EmailSender, recipients []string, logger *zap.Logger) *PublishResult {
	out := &PublishResult{EmailsFailed: make(map[string]error)}
	subject := fmt.Sprintf("Lead allocation %s %s: %s", result.AppID, result.Window(), result.Report.Status)
	body := ReportSummary(result)

	for _, to := range recipients {
		if err := sender.SendEmail(to, subject, body); err != nil {
			logger.Warn("Failed to email report", zap.String("to", to), zap.Error(err))
			out.EmailsFailed[to] = err
			continue
		}
		out.EmailsSent = append(out.EmailsSent, to)
	}

	return out
}

// ReportSummary renders a result as plain text
func ReportSummary(result *AllocationResult) string {
	r := result.Report

	var b strings.Builder
	fmt.Fprintf(&b, "App:       %s\n", result.AppID)
	fmt.Fprintf(&b, "Window:    %s\n", result.Window())
	fmt.Fprintf(&b, "Status:    %s\n", r.Status)
	fmt.Fprintf(&b, "Objective: %.2f\n", r.DisplayObjective())
	fmt.Fprintf(&b, "Assigned:  %d\n", r.Total)
	if result.Reason != "" {
		fmt.Fprintf(&b, "Reason:    %s\n", result.Reason)
	}

	if len(r.Rows) > 0 {
		b.WriteString("\n")
		WriteMatrix(&b, r)
	}

	return b.String()
}

// WriteMatrix writes the manager x category counts as an aligned table
func WriteMatrix(out io.Writer, r *report.AllocationReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "\t")
	for _, col := range r.Columns {
		fmt.Fprintf(w, "%s\t", col)
	}
	fmt.Fprintln(w)

	for i, row := range r.Rows {
		fmt.Fprintf(w, "%s\t", row)
		for _, n := range r.Counts[i] {
			fmt.Fprintf(w, "%d\t", n)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
