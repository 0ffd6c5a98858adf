package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Lixo88/Subtitleler/internal/worker"
)

// renderSummary builds the end-of-batch table: one row per input file.
func renderSummary(results []worker.FileResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Duration", "Cues", "Output"})

	for _, r := range results {
		row := table.Row{
			filepath.Base(r.Input),
			formatDuration(r.Duration),
		}
		if r.Err != nil {
			row = append(row, "-", "FAILED: "+r.Err.Error())
		} else {
			row = append(row, strconv.Itoa(r.Cues), filepath.Base(r.Output))
		}
		tw.AppendRow(row)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	return tw.Render()
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%02d:%02d", int(seconds)/60, int(seconds)%60)
}
