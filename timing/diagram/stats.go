package diagram

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

// RenderStats writes a summary table of a run.
func RenderStats(w io.Writer, stats pipeline.Statistics, cycles int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Pipeline Statistics")
	t.AppendHeader(table.Row{"Metric", "Value"})

	t.AppendRows([]table.Row{
		{"Instructions", stats.Instructions},
		{"Cycles", cycles},
		{"CPI", fmt.Sprintf("%.3f", stats.CPI(cycles))},
		{"Stall slots", stats.Stalls},
		{"Bubble slots", stats.Bubbles},
		{"Branches", stats.Branches},
		{"Branches taken", stats.BranchesTaken},
		{"Jumps", stats.Jumps},
	})

	if stats.BranchPredictions > 0 {
		bp := pipeline.BranchPredictorStats{
			Predictions:    stats.BranchPredictions,
			Correct:        stats.BranchCorrect,
			Mispredictions: stats.BranchMispredictions,
		}

		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Predictions", bp.Predictions},
			{"Mispredictions", bp.Mispredictions},
			{"Accuracy", fmt.Sprintf("%.2f%%", bp.Accuracy())},
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	t.Render()
}
