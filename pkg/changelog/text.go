package changelog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"sfview/internal/models"
)

// TextHeader is the first line of the text mirror.
const TextHeader = "List of changed voxels:"

// WriteText renders entries for humans. Each entry is followed by an empty
// line.
func WriteText(w io.Writer, entries []models.ChangeEntry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, TextHeader)
	for _, e := range entries {
		fmt.Fprintf(bw, "%s: Change of matrix position %s\n", e.Time.Format(time.RFC3339), e.Position)
		for _, it := range e.Items {
			fmt.Fprintf(bw, "%d:\t%s => %s\t%s => %s\n", it.GlobalIndex,
				formatComplex(it.Values[models.UncorrectedBefore]),
				formatComplex(it.Values[models.UncorrectedAfter]),
				formatComplex(it.Values[models.CorrectedBefore]),
				formatComplex(it.Values[models.CorrectedAfter]))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func formatComplex(v complex128) string {
	return "(" + strconv.FormatFloat(real(v), 'g', -1, 64) + "," + strconv.FormatFloat(imag(v), 'g', -1, 64) + ")"
}

// Resolver maps global indices to receiver numbers and frequencies.
type Resolver interface {
	Receiver(globalIndex int) int
	Frequency(globalIndex int) float64
}

// Describe summarizes an entry in one line, for example
// "[3/4/5] / Receiver 1 / 25.3 kHz" or "[3/4/5] / Receiver 2 / 817 Frequencies".
// Receivers are numbered from one. An entry without items yields "".
func Describe(e models.ChangeEntry, r Resolver) string {
	if len(e.Items) == 0 {
		return ""
	}
	first := e.Items[0].GlobalIndex
	s := fmt.Sprintf("[%s] / Receiver %d / ", e.Position, r.Receiver(first)+1)
	if len(e.Items) > 1 {
		return s + fmt.Sprintf("%d Frequencies", len(e.Items))
	}
	return s + strconv.FormatFloat(1e-3*r.Frequency(first), 'g', 6, 64) + " kHz"
}
