package profile

import (
	"fmt"
	"strconv"
)

func fmtSeconds(d float64) string { return fmt.Sprintf("%.6f", d) }

// TotalLog renders the call history relative to the environment start,
// capped at count rows.
//
// Columns: Name, Start, Duration, End.
func TotalLog(env *Environment, count int, colorHeader bool) string {
	if env == nil {
		env = Global()
	}
	if count <= 0 {
		count = 10
	}

	history := env.History()
	rows := make([][]string, 0, len(history))
	for _, c := range history {
		rows = append(rows, []string{
			c.Method.Name(),
			fmtSeconds(c.Start.Seconds()),
			fmtSeconds(c.Duration().Seconds()),
			fmtSeconds(c.End.Seconds()),
		})
	}

	shown := rows
	if len(shown) > count {
		shown = shown[:count]
	}
	out := RenderTable([]string{"Name", "Start", "Duration", "End"}, shown, " | ", colorHeader)
	if len(rows) > count {
		out += fmt.Sprintf("\n+%d others...", len(rows)-count)
	}
	return out
}

// OverviewLog renders per-method aggregates.
//
// Columns: Name, Creation, Total, Avg., Min., Max. duration,
// Calls per second, Total calls.
func OverviewLog(env *Environment, colorHeader bool) string {
	if env == nil {
		env = Global()
	}

	methods := env.Methods()
	rows := make([][]string, 0, len(methods))
	for _, m := range methods {
		rows = append(rows, []string{
			m.Name(),
			fmtSeconds(m.CreatedAt().Sub(env.Start()).Seconds()),
			fmtSeconds(m.TotalDuration().Seconds()),
			fmtSeconds(m.AvgDuration().Seconds()),
			fmtSeconds(m.MinDuration().Seconds()),
			fmtSeconds(m.MaxDuration().Seconds()),
			fmtSeconds(m.CallsPerSecond()),
			strconv.Itoa(m.TotalCalls()),
		})
	}

	titles := []string{
		"Name", "Creation", "Total", "Avg.", "Min.", "Max. duration",
		"Calls per second", "Total calls",
	}
	return RenderTable(titles, rows, " | ", colorHeader)
}
