package doctor

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Render writes results as a table; fancy selects rounded borders and color.
func Render(w io.Writer, results []Result, fancy bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if fancy {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.AppendHeader(table.Row{"Check", "Status", "Detail"})
	for _, r := range results {
		tw.AppendRow(table.Row{r.Name, status(r, fancy), r.Detail})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignLeft},
	})
	tw.Render()
}

func status(r Result, fancy bool) string {
	s, color := "ok", text.FgGreen
	switch {
	case !r.Pass && r.Optional:
		s, color = "warn", text.FgYellow
	case !r.Pass:
		s, color = "fail", text.FgRed
	}
	if fancy {
		return color.Sprint(s)
	}
	return s
}
