package ytharvest

import (
	"context"
	"log/slog"

	"ytharvest/harvest"
	"ytharvest/youtube"
)

// Harvest lists and enriches the videos the given channels published between
// start and end (YYYY-MM-DD, inclusive) and returns them in channel order.
// It logs through slog.Default. Use the harvest package directly for
// progress notifications and per-channel reports.
func Harvest(ctx context.Context, apiKey string, channelIDs []string, start, end string) ([]harvest.VideoRecord, error) {
	dates, err := harvest.ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}
	req := harvest.Request{ChannelIDs: channelIDs, Dates: dates}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client, err := youtube.NewClient(ctx, youtube.ClientConfig{APIKey: apiKey}, slog.Default())
	if err != nil {
		return nil, err
	}

	run, err := harvest.New(client, slog.Default()).Extract(ctx, req)
	if run == nil {
		return nil, err
	}
	return run.Records, err
}
