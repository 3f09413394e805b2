// Package report renders training and evaluation results for the
// terminal.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"

	"github.com/garb-ml/garb/internal/dataset"
	"github.com/garb-ml/garb/internal/trainer"
)

// Curves writes ASCII plots of the training loss and validation accuracy
// across checkpoints.
func Curves(w io.Writer, history []trainer.Checkpoint) {
	if len(history) == 0 {
		return
	}

	loss := make([]float64, len(history))
	acc := make([]float64, len(history))
	for i, cp := range history {
		loss[i] = cp.TrainLoss
		acc[i] = cp.ValAcc
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(loss,
		asciigraph.Height(8),
		asciigraph.Caption("train loss per checkpoint")))
	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(acc,
		asciigraph.Height(8),
		asciigraph.Caption("validation accuracy (%) per checkpoint")))
	fmt.Fprintln(w)
}

// ConfusionMatrix renders the class confusion counts as a table, truth on
// rows, predictions on columns.
func ConfusionMatrix(w io.Writer, matrix [][]int) {
	table := tablewriter.NewWriter(w)

	header := append([]string{"truth \\ pred"}, dataset.Classes...)
	table.SetHeader(header)

	for i, row := range matrix {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, dataset.Classes[i])
		for _, n := range row {
			cells = append(cells, strconv.Itoa(n))
		}
		table.Append(cells)
	}
	table.Render()
}

// ClassSummary writes per-class accuracy derived from the confusion
// matrix, plus mean and spread across classes. Classes with no samples
// are skipped.
func ClassSummary(w io.Writer, matrix [][]int) {
	var accs []float64

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"class", "samples", "accuracy"})

	for i, row := range matrix {
		total := 0
		for _, n := range row {
			total += n
		}
		if total == 0 {
			continue
		}
		acc := 100 * float64(row[i]) / float64(total)
		accs = append(accs, acc)
		table.Append([]string{
			dataset.Classes[i],
			strconv.Itoa(total),
			fmt.Sprintf("%.1f%%", acc),
		})
	}
	table.Render()

	if len(accs) > 1 {
		fmt.Fprintf(w, "per-class accuracy: mean %.1f%%, stddev %.1f\n",
			stat.Mean(accs, nil), stat.StdDev(accs, nil))
	}
}
