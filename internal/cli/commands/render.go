package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/revagent/internal/agent"
	"github.com/leapstack-labs/revagent/internal/dataset"
	"github.com/leapstack-labs/revagent/internal/format"
	"github.com/leapstack-labs/revagent/pkg/core"
)

// Output formats for answers.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const rule = "=================================================="

// renderResult prints one answered question.
func renderResult(w io.Writer, res *agent.Result, outputFormat string, showSQL bool) error {
	switch outputFormat {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		return encodeYAML(w, res)
	case FormatText, "":
		if showSQL && res.SQL != "" {
			_, _ = fmt.Fprintf(w, "SQL: %s\n", res.SQL)
		}
		_, _ = fmt.Fprintf(w, "Answer: %s\n", res.Answer)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", outputFormat)
	}
}

// renderSongs prints the current songs as a table.
func renderSongs(w io.Writer, songs []dataset.Song) {
	if len(songs) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Song ID", "Title", "Writer ID"})
	for _, s := range songs {
		t.AppendRow(table.Row{s.ID, s.Title, s.WriterID})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(songs))
}

// renderResultSet prints query rows as a table.
func renderResultSet(w io.Writer, rs *core.ResultSet) {
	if rs.Empty() {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rs.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = format.Value(v)
		}
		t.AppendRow(r)
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", rs.Len())
}

// renderStats prints the dataset load summary.
func renderStats(w io.Writer, stats *dataset.Stats) {
	if stats == nil {
		return
	}
	parts := make([]string, len(stats.Tables))
	for i, ts := range stats.Tables {
		parts[i] = fmt.Sprintf("%s=%d", ts.Table, ts.Rows)
	}
	_, _ = fmt.Fprintf(w, "  Loaded %s in %s\n", strings.Join(parts, ", "), stats.Elapsed.Round(time.Millisecond))
}
