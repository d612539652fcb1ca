package main

import (
	"fmt"
	"io"
	"sort"
	"time"
)

func aggregate(results []BenchResult) map[string]Agg {
	m := map[string]Agg{}
	for _, r := range results {
		a := m[r.Format]
		if r.Err != nil {
			a.Failures++
			m[r.Format] = a
			continue
		}
		a.Count++
		a.TotalBytes += r.Size
		a.Total += r.Duration
		a.TotalTokens += r.Tokens
		m[r.Format] = a
	}
	return m
}

func printMarkdown(w io.Writer, results []BenchResult) {
	fmt.Fprint(w, "\n## Benchmark Results\n\n")
	fmt.Fprintln(w, "| Format | Requests | Failures | Avg Time | Total Time | Avg Tokens | Avg File Size |")
	fmt.Fprintln(w, "|--------|----------|----------|----------|------------|------------|---------------|")

	agg := aggregate(results)
	formats := make([]string, 0, len(agg))
	for f := range agg {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	var all Agg
	for _, format := range formats {
		a := agg[format]
		printRow(w, format, a)
		all.Count += a.Count
		all.Failures += a.Failures
		all.Total += a.Total
		all.TotalBytes += a.TotalBytes
		all.TotalTokens += a.TotalTokens
	}

	if all.Count+all.Failures > 0 {
		printRow(w, "**ALL**", all)
	}
}

func printRow(w io.Writer, label string, a Agg) {
	if a.Count == 0 {
		fmt.Fprintf(w, "| %s | 0 | %d | - | - | - | - |\n", label, a.Failures)
		return
	}
	avg := a.Total / time.Duration(a.Count)
	fmt.Fprintf(w, "| %s | %d | %d | %v | %v | %d | %s |\n",
		label,
		a.Count,
		a.Failures,
		avg.Round(time.Millisecond),
		a.Total.Round(time.Millisecond),
		a.TotalTokens/a.Count,
		humanBytes(a.TotalBytes/int64(a.Count)),
	)
}

func humanBytes(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
