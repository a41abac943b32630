package commands

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/jakechorley/lead-allocator/pkg/core/milp"
	"github.com/jakechorley/lead-allocator/pkg/core/services"
	"github.com/jakechorley/lead-allocator/pkg/db"
)

func printAllocation(out io.Writer, result *services.AllocationResult, detail bool) {
	r := result.Report

	mark := "✓"
	if r.Status != milp.StatusOptimal {
		mark = "⚠️ "
	}
	fmt.Fprintf(out, "\n%s Allocation %s\n\n", mark, r.Status)
	fmt.Fprintf(out, "Run ID:    %s\n", result.RunID)
	fmt.Fprintf(out, "Window:    %s\n", result.Window())
	fmt.Fprintf(out, "Backend:   %s (%s)\n", result.Backend, result.Duration.Round(time.Microsecond))
	fmt.Fprintf(out, "Objective: %.2f\n", r.DisplayObjective())
	fmt.Fprintf(out, "Assigned:  %d\n", r.Total)
	if result.Reason != "" {
		fmt.Fprintf(out, "Reason:    %s\n", result.Reason)
	}
	if result.Persisted {
		fmt.Fprintln(out, "Recorded:  yes")
	}

	if len(r.Rows) > 0 {
		fmt.Fprintln(out)
		services.WriteMatrix(out, r)
	}

	if detail && len(r.Assignments) > 0 {
		fmt.Fprintf(out, "\nAssignments:\n")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  LEAD\tMANAGER\tCATEGORY")
		for _, a := range r.Assignments {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", a.ItemID, a.AgentID, a.CategoryKey)
		}
		w.Flush()
	}
	fmt.Fprintln(out)
}

func printEmailResult(out io.Writer, pr *services.PublishResult) {
	if len(pr.EmailsSent) > 0 {
		fmt.Fprintf(out, "Report emailed to %d recipients:\n", len(pr.EmailsSent))
		for _, to := range pr.EmailsSent {
			fmt.Fprintf(out, "  ✓ %s\n", to)
		}
	}

	if len(pr.EmailsFailed) > 0 {
		failed := make([]string, 0, len(pr.EmailsFailed))
		for to := range pr.EmailsFailed {
			failed = append(failed, to)
		}
		sort.Strings(failed)

		fmt.Fprintf(out, "⚠️  Failed to send %d emails:\n", len(failed))
		for _, to := range failed {
			fmt.Fprintf(out, "  ✗ %s: %v\n", to, pr.EmailsFailed[to])
		}
	}
}

// sortedCounts returns the keys of counts ordered by count descending, then name
func sortedCounts(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func printOverview(out io.Writer, o *services.SnapshotOverview, detail bool) {
	s := o.Snapshot
	fmt.Fprintf(out, "\nSnapshot %s %s..%s\n\n", s.AppID, formatDate(s.Start), formatDate(s.End))
	fmt.Fprintf(out, "Categories: %d\n", o.CategoryCount)
	fmt.Fprintf(out, "Managers:   %d\n", o.ManagerCount)
	fmt.Fprintf(out, "Leads:      %d\n", o.LeadCount)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if len(o.LeadsByCategory) > 0 {
		fmt.Fprintln(w, "\nLeads by category:")
		for _, name := range sortedCounts(o.LeadsByCategory) {
			fmt.Fprintf(w, "  %s\t%d\n", name, o.LeadsByCategory[name])
		}
	}
	if len(o.LeadsByLevel) > 0 {
		fmt.Fprintln(w, "\nLeads by level:")
		for _, level := range sortedCounts(o.LeadsByLevel) {
			fmt.Fprintf(w, "  %s\t%d\n", level, o.LeadsByLevel[level])
		}
	}

	if detail {
		fmt.Fprintln(w, "\nManagers:")
		for _, m := range s.Managers {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", m.ID, m.Name, m.Contact)
		}
		fmt.Fprintln(w, "\nLeads:")
		for _, l := range s.Leads {
			category := "-"
			if l.CategoryID != nil {
				category = *l.CategoryID
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", l.ID, category, l.Level)
		}
	}
	w.Flush()
	fmt.Fprintln(out)
}

func printRuns(out io.Writer, runs []db.AllocationRun) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No allocation runs recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCREATED\tWINDOW\tBACKEND\tSTATUS\tOBJECTIVE\tASSIGNED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s..%s\t%s\t%s\t%.2f\t%d\n",
			shortID(r.ID),
			r.CreatedAt.Format("2006-01-02 15:04"),
			formatDate(r.WindowStart), formatDate(r.WindowEnd),
			r.Backend, r.Status, r.Objective, r.Total)
	}
	w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
