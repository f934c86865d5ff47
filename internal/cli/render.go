package cli

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/forPelevin/podask/internal/episodes"
	"github.com/forPelevin/podask/internal/types"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(s, color string, on bool) string {
	if !on || color == "" {
		return s
	}
	return color + s + ansiReset
}

func citationTable(results []types.RetrievalResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		ex := r.Excerpt
		rows = append(rows, []string{
			strconv.Itoa(r.Rank),
			episodeLabel(ex),
			ex.Section,
			ex.Timestamp,
			ex.DeepLink,
		})
	}
	return renderTable(
		[]string{"#", "Episode", "Section", "Time", "Link"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

// excerptTable is the debug view: citations plus kind, speakers and a text preview.
func excerptTable(results []types.RetrievalResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		ex := r.Excerpt
		rows = append(rows, []string{
			strconv.Itoa(r.Rank),
			string(ex.Kind),
			episodeLabel(ex),
			ex.Section,
			ex.Timestamp,
			ex.Speakers,
			preview(ex.Text, 80),
		})
	}
	return renderTable(
		[]string{"#", "Kind", "Episode", "Section", "Time", "Speakers", "Text"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func episodeTable(list []episodes.EpisodeInfo) string {
	rows := make([][]string, 0, len(list))
	for i, ep := range list {
		rows = append(rows, []string{strconv.Itoa(i + 1), ep.Label(), ep.Title, ep.SourceID})
	}
	return renderTable(
		[]string{"#", "Episode", "Title", "Source ID"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func episodeLabel(ex types.Excerpt) string {
	title := ex.ShortTitle
	if title == "" {
		title = ex.EpisodeTitle
	}
	label := episodes.EpisodeInfo{Season: ex.Season, EpisodeNum: ex.EpisodeNum}.Label()
	if label == "" {
		return title
	}
	return label + " " + title
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
