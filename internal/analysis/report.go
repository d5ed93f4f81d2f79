package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Markdown renders a compact console report.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[SUMMARY]\n")
	if s.Table != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Table))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	for _, st := range s.Stats {
		if st.Empty {
			b.WriteString(fmt.Sprintf("- %s: no values\n", safeName(st.Measure)))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: count %d, mean %.4g, std %.4g, min %.4g, 25%% %.4g, 50%% %.4g, 75%% %.4g, max %.4g\n",
			safeName(st.Measure), st.Count, st.Mean, st.Std, st.Min, st.Q25, st.Median, st.Q75, st.Max))
	}
	if s.RankBy != "" {
		writeRank(&b, fmt.Sprintf("TOP %d by %s", len(s.Top), s.RankBy), s.Top)
		writeRank(&b, fmt.Sprintf("BOTTOM %d by %s", len(s.Bottom), s.RankBy), s.Bottom)
	}
	if s.Corr != nil && len(s.Corr.Columns) >= 2 {
		b.WriteString(fmt.Sprintf("\n[CORRELATION] (n=%d)\n", s.Corr.Rows))
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(s.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: s.Corr.Columns[i], B: s.Corr.Columns[j], R: s.Corr.Values[i][j]})
			}
		}
		sort.SliceStable(pairs, func(i, j int) bool { return math.Abs(pairs[i].R) > math.Abs(pairs[j].R) })
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", safeName(p.A), safeName(p.B), p.R))
		}
		for _, w := range s.Corr.Warnings {
			b.WriteString(fmt.Sprintf("  ⚠ %s\n", w))
		}
	}
	if len(s.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range s.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

func writeRank(b *strings.Builder, title string, rows []RankEntry) {
	b.WriteString("\n[" + title + "]\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("- %s: %.4g\n", safeVal(r.Key), r.Value))
	}
}

func safeName(s string) string { return strings.ReplaceAll(s, "|", "/") }

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
