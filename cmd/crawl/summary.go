package crawl

import (
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/north-cloud/procrawler/internal/crawler"
)

// RenderSummary writes a run summary as a two-column table.
func RenderSummary(w io.Writer, s *crawler.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	target := strconv.Itoa(s.Input.ResultsWanted)
	if s.Input.Unbounded() {
		target = "unbounded"
	}

	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Run ID", s.RunID},
		{"Status", string(s.Status)},
		{"Start URLs", strings.Join(s.Input.StartURLs, "\n")},
		{"Saved", s.Stats.Saved},
		{"Target", target},
		{"Pages", s.Stats.Pages},
		{"Empty pages", s.Stats.EmptyPages},
		{"Failed pages", s.Stats.FailedPages},
		{"Duplicates", s.Stats.Duplicates},
		{"Keyless", s.Stats.Keyless},
		{"Capped", s.Stats.Capped},
		{"Duration", s.Duration().Round(1e6).String()},
	})
	if s.Error != "" {
		t.AppendRow(table.Row{"Error", s.Error})
	}
	t.Render()
}
