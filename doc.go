// Package ytharvest exports YouTube channel video statistics to a spreadsheet.
//
// Overview
//
// A run takes a list of channel IDs and an inclusive date range. For each
// channel, in order, it lists the videos published inside the range using
// the YouTube Data API v3 search endpoint, then looks up view, like and
// comment counts plus the channel title for every video. The records are
// written to an .xlsx workbook with a fixed column order:
//
//	date, video_id, channel_id, original_title, translated_title,
//	published_at, view_count, like_count, comment_count, channel_name
//
// Quick Start
//
//	ctx := context.Background()
//	records, err := ytharvest.Harvest(ctx, os.Getenv("YOUTUBE_API_KEY"),
//		[]string{"UCy8qn0KvqhhaD86yBJzpeDQ"}, "2025-09-16", "2025-09-28")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := export.SaveFile("youtube_data.xlsx", records); err != nil {
//		log.Fatal(err)
//	}
//
// Failure Handling
//
// A run is never aborted by the API. When listing a channel fails, the
// videos listed before the failure are kept and the next channel is
// processed. When a detail lookup fails, the record keeps its listing fields
// and its counts default to zero. Only invalid input is rejected:
//
//	if errors.Is(err, ytharvest.ErrNoChannels) {
//		fmt.Println("at least one channel required")
//	}
//
// Configuration
//
// The command line tool reads ytharvest.json from the working directory or
// ~/.config/ytharvest/, then environment variables:
//
//   - YOUTUBE_API_KEY / YTHARVEST_API_KEY: Data API key
//   - YTHARVEST_CHANNELS: default comma-separated channel IDs
//   - YTHARVEST_START_DATE, YTHARVEST_END_DATE: default date range
//   - YTHARVEST_OUTPUT_DIR: where workbooks are written
//   - YTHARVEST_REQUESTS_PER_SECOND: request pacing (0 = none)
//   - YTHARVEST_QUOTA_BUDGET: estimated quota units before a warning
//   - YTHARVEST_LISTEN_ADDR: address of the form server
//   - YTHARVEST_RECENT_RUNS: finished runs kept for download by the server
//   - YTHARVEST_ENDPOINT: Data API base URL override
//   - YTHARVEST_LOG_LEVEL, YTHARVEST_LOG_FORMAT: logging
//
// Sub-packages
//
//   - youtube: Data API client (listing, details, quota classification)
//   - harvest: run orchestration, normalization, summaries
//   - export: workbook writer
//   - web: interactive form server
//   - config: configuration loading
package ytharvest
