package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/maastricht-university/stress-features/features"
	"github.com/maastricht-university/stress-features/orchestrator"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderSummary lists matrices, frames and statistics rows per coefficient
// type.
func renderSummary(sum *orchestrator.Summary, pretty bool) string {
	tw := table.NewWriter()
	if pretty {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.AppendHeader(table.Row{"Type", "Matrices", "Frames", "Records"})

	var matrices, frames int
	for _, t := range features.Types {
		tw.AppendRow(table.Row{
			t.String(),
			strconv.Itoa(sum.Matrices[t]),
			strconv.Itoa(sum.Frames[t]),
			strconv.Itoa(sum.Records[t]),
		})
		matrices += sum.Matrices[t]
		frames += sum.Frames[t]
	}
	tw.AppendFooter(table.Row{
		strconv.Itoa(sum.Files) + " files",
		strconv.Itoa(matrices),
		strconv.Itoa(frames),
		strconv.Itoa(sum.TotalRecords()),
	})
	tw.SetCaption("statistics: %s", sum.AggregatePath)

	configs := make([]table.ColumnConfig, 0, 3)
	for i := 2; i <= 4; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
