// Package harvest turns a list of channel IDs and a date range into a flat,
// ordered set of video records.
//
// Failures are contained at the smallest unit. A listing failure stops that
// channel only, keeping the videos already listed; an enrichment failure
// zeroes the statistics of one record. Only input validation rejects a run.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ytharvest/youtube"
)

// Source is the query service the harvester reads from.
type Source interface {
	youtube.VideoLister
	youtube.DetailFetcher
}

// quotaReporter is implemented by sources that estimate quota consumption.
type quotaReporter interface {
	QuotaUsed() int
}

// EnrichOutcome classifies the result of a single detail lookup.
type EnrichOutcome int

const (
	// EnrichOK means details were fetched.
	EnrichOK EnrichOutcome = iota
	// EnrichNotFound means the service had no record for the video.
	EnrichNotFound
	// EnrichQuotaExceeded means the lookup hit the quota/permission class.
	EnrichQuotaExceeded
	// EnrichFailed means any other failure.
	EnrichFailed
	// EnrichCanceled means the run was canceled before the lookup finished.
	EnrichCanceled
)

// String returns the outcome name used in logs.
func (o EnrichOutcome) String() string {
	switch o {
	case EnrichOK:
		return "ok"
	case EnrichNotFound:
		return "not_found"
	case EnrichQuotaExceeded:
		return "quota_exceeded"
	case EnrichFailed:
		return "failed"
	case EnrichCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("EnrichOutcome(%d)", int(o))
	}
}

// ChannelReport describes how one channel was processed.
type ChannelReport struct {
	ChannelID string
	// Videos is the number of records produced for the channel.
	Videos int
	// Enrichment counts detail lookups by outcome.
	Enrichment map[EnrichOutcome]int
	// Err is the listing error, if listing stopped early.
	Err error
	// QuotaExceeded is set when Err is in the quota class.
	QuotaExceeded bool
	// Canceled is set when the run was canceled while this channel was being
	// processed. Records enriched before the cancellation are kept.
	Canceled bool
}

// Degraded returns the number of records whose statistics defaulted to zero.
func (r ChannelReport) Degraded() int {
	return r.Videos - r.Enrichment[EnrichOK]
}

// Run is the result of one Extract call.
type Run struct {
	// ID uniquely identifies the run in logs and downloads.
	ID    string
	Dates DateRange
	// Records are in channel-major order, listing order within a channel.
	Records  []VideoRecord
	Channels []ChannelReport
	// QuotaUsed is the estimated quota consumed, when the source reports it.
	QuotaUsed  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Summary totals the run's records.
func (r *Run) Summary() Summary {
	return Summarize(r.Records)
}

// Harvester composes listing and enrichment over a Source.
type Harvester struct {
	source Source
	logger *slog.Logger
}

// New creates a Harvester reading from source.
func New(source Source, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{source: source, logger: logger}
}

// Extract processes every channel of req in order and returns the collected
// records. It returns an error without querying anything if req is invalid.
// Channel and video failures never fail the run; they are logged and
// recorded in Run.Channels. If ctx is canceled the records built so far are
// returned together with the context error.
func (h *Harvester) Extract(ctx context.Context, req Request) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.NewString(),
		Dates:     req.Dates,
		StartedAt: time.Now().UTC(),
	}
	logger := h.logger.With(slog.String("run_id", run.ID))
	window := youtube.DayWindow(req.Dates.Start, req.Dates.End)
	quotaBefore := h.quotaUsed()

	logger.Info("harvest started",
		slog.String("dates", req.Dates.String()),
		slog.Int("channels", len(req.ChannelIDs)))

	var runErr error
	total := len(req.ChannelIDs)
	for i, channelID := range req.ChannelIDs {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("harvest canceled after %d of %d channels: %w", i, total, err)
			break
		}

		if req.Observer != nil {
			req.Observer.ChannelStarted(i+1, total, channelID)
		}

		records, report := h.harvestChannel(ctx, logger, channelID, window)
		run.Records = append(run.Records, records...)
		run.Channels = append(run.Channels, report)

		if reporter, ok := req.Observer.(ChannelReporter); ok {
			reporter.ChannelFinished(report)
		}

		if report.Canceled {
			runErr = fmt.Errorf("harvest canceled during channel %d of %d: %w", i+1, total, ctx.Err())
			break
		}
	}

	run.QuotaUsed = h.quotaUsed() - quotaBefore
	run.FinishedAt = time.Now().UTC()

	logger.Info("harvest finished",
		slog.Int("videos", len(run.Records)),
		slog.Int("quota_used", run.QuotaUsed),
		slog.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))

	return run, runErr
}

// harvestChannel lists one channel and enriches every stub it yields.
func (h *Harvester) harvestChannel(ctx context.Context, logger *slog.Logger, channelID string, window youtube.Window) ([]VideoRecord, ChannelReport) {
	logger = logger.With(slog.String("channel_id", channelID))
	report := ChannelReport{
		ChannelID:  channelID,
		Enrichment: make(map[EnrichOutcome]int),
	}

	stubs, err := h.source.ListVideos(ctx, channelID, window)
	if ctx.Err() != nil {
		report.Canceled = true
		logger.Info("channel canceled during listing", slog.Int("listed", len(stubs)))
		return nil, report
	}
	if err != nil {
		report.Err = err
		if youtube.IsQuotaExceeded(err) {
			report.QuotaExceeded = true
			logger.Warn("API quota exceeded while listing channel",
				slog.Int("partial_videos", len(stubs)),
				slog.Any("error", err))
		} else {
			logger.Error("listing channel failed",
				slog.Int("partial_videos", len(stubs)),
				slog.Any("error", err))
		}
	}

	records := make([]VideoRecord, 0, len(stubs))
	for _, stub := range stubs {
		if ctx.Err() != nil {
			report.Canceled = true
			break
		}
		details, outcome := h.enrich(ctx, logger, stub.VideoID)
		if outcome == EnrichCanceled {
			report.Canceled = true
			break
		}
		report.Enrichment[outcome]++
		records = append(records, newRecord(stub, details))
	}
	report.Videos = len(records)

	if report.Canceled {
		logger.Info("channel canceled during enrichment",
			slog.Int("videos", report.Videos),
			slog.Int("listed", len(stubs)))
		return records, report
	}

	logger.Info("channel processed",
		slog.Int("videos", report.Videos),
		slog.Int("degraded", report.Degraded()))

	return records, report
}

// enrich looks up details for one video and never fails: any error yields
// zero details and the matching outcome.
func (h *Harvester) enrich(ctx context.Context, logger *slog.Logger, videoID string) (youtube.Details, EnrichOutcome) {
	details, err := h.source.VideoDetails(ctx, videoID)
	switch {
	case err == nil:
		return details, EnrichOK
	case ctx.Err() != nil:
		return youtube.Details{}, EnrichCanceled
	case errors.Is(err, youtube.ErrVideoNotFound):
		logger.Info("no details found for video", slog.String("video_id", videoID))
		return youtube.Details{}, EnrichNotFound
	case youtube.IsQuotaExceeded(err):
		logger.Warn("API quota exceeded for video",
			slog.String("video_id", videoID),
			slog.Any("error", err))
		return youtube.Details{}, EnrichQuotaExceeded
	default:
		logger.Error("fetching video details failed",
			slog.String("video_id", videoID),
			slog.Any("error", err))
		return youtube.Details{}, EnrichFailed
	}
}

func (h *Harvester) quotaUsed() int {
	if q, ok := h.source.(quotaReporter); ok {
		return q.QuotaUsed()
	}
	return 0
}
