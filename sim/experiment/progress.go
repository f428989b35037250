package experiment

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Progress is advanced once per finished repetition. Implementations must be
// safe for concurrent use; errors are logged and never change results.
type Progress interface {
	Add(n int) error
}

// NopProgress discards progress updates.
type NopProgress struct{}

func (NopProgress) Add(int) error { return nil }

// NewBarProgress returns a terminal progress bar over total repetitions,
// rendered to w.
func NewBarProgress(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("repetitions"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
	)
}
