package harvest

import (
	"fmt"
	"io"
)

// Observer is notified before each channel is processed. Index is 1-based:
// the first channel is reported as (1, total), ready for display as "i/n".
// Callers that count from zero must subtract one. Notifications have no
// effect on the run.
type Observer interface {
	ChannelStarted(index, total int, channelID string)
}

// ChannelReporter is an optional Observer extension told when each channel
// has been fully processed.
type ChannelReporter interface {
	ChannelFinished(report ChannelReport)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(index, total int, channelID string)

// ChannelStarted calls f.
func (f ObserverFunc) ChannelStarted(index, total int, channelID string) {
	f(index, total, channelID)
}

// ProgressWriter prints one progress line per channel event.
type ProgressWriter struct {
	w io.Writer
}

// NewProgressWriter returns an observer writing to w.
func NewProgressWriter(w io.Writer) *ProgressWriter {
	return &ProgressWriter{w: w}
}

// ChannelStarted prints "[i/n] Processing channel <id>".
func (p *ProgressWriter) ChannelStarted(index, total int, channelID string) {
	fmt.Fprintf(p.w, "[%d/%d] Processing channel %s\n", index, total, channelID)
}

// ChannelFinished prints the channel's video count and any listing error.
func (p *ProgressWriter) ChannelFinished(report ChannelReport) {
	switch {
	case report.Canceled:
		fmt.Fprintf(p.w, "      %d videos (canceled)\n", report.Videos)
	case report.QuotaExceeded:
		fmt.Fprintf(p.w, "      %d videos (stopped: API quota exceeded)\n", report.Videos)
	case report.Err != nil:
		fmt.Fprintf(p.w, "      %d videos (stopped: %v)\n", report.Videos, report.Err)
	default:
		fmt.Fprintf(p.w, "      %d videos\n", report.Videos)
	}
}
