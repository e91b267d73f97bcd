package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"ytharvest/config"
	"ytharvest/export"
	"ytharvest/harvest"
	"ytharvest/web"
	"ytharvest/youtube"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "harvest":
		err = cmdHarvest(args)
	case "serve":
		err = cmdServe(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		// Flags without a subcommand run a harvest
		err = cmdHarvest(os.Args[1:])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytharvest - export YouTube channel video statistics to a spreadsheet

Usage:
  ytharvest harvest [flags]    Fetch videos and write an .xlsx file
  ytharvest serve [flags]      Serve the interactive extraction form
  ytharvest help               Show this help message

Examples:
  ytharvest harvest -channels UCy8qn0KvqhhaD86yBJzpeDQ,UCuK4jszmhyLs-DvHyT3txgA -start 2025-09-16 -end 2025-09-28
  ytharvest harvest -channels-file channels.txt -start 2025-09-16 -end 2025-09-28 -out data.xlsx
  ytharvest serve -addr :8501

The API key is read from YOUTUBE_API_KEY (or YTHARVEST_API_KEY, or api_key in ytharvest.json).

For help on specific command: ytharvest <command> -h
`)
}

// setup loads configuration and builds the logger and Data API client.
func setup(ctx context.Context) (*config.Config, *slog.Logger, *youtube.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.NewLogger()

	if cfg.APIKey == "" {
		return nil, nil, nil, errors.New("YouTube Data API key not set (YOUTUBE_API_KEY)")
	}

	client, err := youtube.NewClient(ctx, youtube.ClientConfig{
		APIKey:            cfg.APIKey,
		Endpoint:          cfg.Endpoint,
		RequestsPerSecond: cfg.RequestsPerSecond,
		QuotaBudget:       cfg.QuotaBudget,
	}, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, client, nil
}

func cmdHarvest(args []string) error {
	fs := newFlagSet("harvest", "Usage: ytharvest harvest [flags]")
	channels := fs.String("channels", "", "Comma-separated channel IDs")
	channelsFile := fs.String("channels-file", "", "File with one channel ID per line")
	start := fs.String("start", "", "Start date, YYYY-MM-DD (inclusive)")
	end := fs.String("end", "", "End date, YYYY-MM-DD (inclusive)")
	out := fs.String("out", "", "Output .xlsx path (default: youtube_data_<start>_<end>.xlsx in output_dir)")
	quiet := fs.Bool("q", false, "Do not print per-channel progress")
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, logger, client, err := setup(ctx)
	if err != nil {
		return err
	}

	channelIDs, err := resolveChannels(*channels, *channelsFile, cfg.Channels)
	if err != nil {
		return err
	}
	dates, err := harvest.ParseDateRange(firstNonEmpty(*start, cfg.StartDate), firstNonEmpty(*end, cfg.EndDate))
	if err != nil {
		return err
	}

	req := harvest.Request{ChannelIDs: channelIDs, Dates: dates}
	if !*quiet {
		req.Observer = harvest.NewProgressWriter(os.Stderr)
	}

	fmt.Fprintf(os.Stderr, "Date range: %s\nChannels to process: %d\n", dates, len(channelIDs))

	run, err := harvest.New(client, logger).Extract(ctx, req)
	if err != nil {
		return err
	}

	if len(run.Records) == 0 {
		fmt.Println("No videos found in the specified date range.")
		return nil
	}

	path := *out
	if path == "" {
		path = filepath.Join(cfg.OutputDir, export.FileName(dates))
	}
	if err := export.SaveFile(path, run.Records); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	s := run.Summary()
	fmt.Fprintf(os.Stderr, "\nTotal videos: %d  views: %d  likes: %d  comments: %d  (quota used: ~%d units)\n",
		s.Videos, s.Views, s.Likes, s.Comments, run.QuotaUsed)
	fmt.Println(path)
	return nil
}

func cmdServe(args []string) error {
	fs := newFlagSet("serve", "Usage: ytharvest serve [flags]")
	addr := fs.String("addr", "", "Listen address (default: listen_addr from config, :8501)")
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, logger, client, err := setup(ctx)
	if err != nil {
		return err
	}

	server, err := web.NewServer(harvest.New(client, logger), web.Defaults{
		Channels:  cfg.Channels,
		StartDate: cfg.StartDate,
		EndDate:   cfg.EndDate,
	}, cfg.RecentRuns, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              firstNonEmpty(*addr, cfg.ListenAddr),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("form server started", slog.String("addr", httpServer.Addr))
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("form server stopping")
	return httpServer.Shutdown(shutdownCtx)
}

// resolveChannels picks channel IDs from the flag, then the file, then config.
func resolveChannels(flagValue, file string, fromConfig []string) ([]string, error) {
	if flagValue != "" {
		return harvest.ParseChannelIDs(flagValue), nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading channels file: %w", err)
		}
		return harvest.ParseChannelIDs(string(data)), nil
	}
	return harvest.ParseChannelIDs(strings.Join(fromConfig, "\n")), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
