package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Estimated quota cost of each Data API call.
const (
	searchCost = 100
	videosCost = 1
)

// DefaultQuotaBudget is the default daily Data API quota.
const DefaultQuotaBudget = 10000

// ClientConfig configures a Client.
type ClientConfig struct {
	// APIKey authenticates every request. Required.
	APIKey string
	// Endpoint overrides the API base URL. Empty uses the public endpoint.
	Endpoint string
	// RequestsPerSecond paces outbound calls. 0 disables pacing.
	RequestsPerSecond float64
	// QuotaBudget is the number of estimated units after which a warning is
	// logged. 0 uses DefaultQuotaBudget.
	QuotaBudget int
}

// Client implements VideoLister and DetailFetcher on top of the
// YouTube Data API v3. Requests are issued one at a time and never retried.
type Client struct {
	service *youtube.Service
	limiter *rate.Limiter
	logger  *slog.Logger

	mu          sync.Mutex
	quotaUsed   int
	quotaBudget int
	overBudget  bool
}

var (
	_ VideoLister   = (*Client)(nil)
	_ DetailFetcher = (*Client)(nil)
)

// NewClient creates a Data API client. Extra options are appended after the
// ones derived from cfg.
func NewClient(ctx context.Context, cfg ClientConfig, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	budget := cfg.QuotaBudget
	if budget <= 0 {
		budget = DefaultQuotaBudget
	}

	return &Client{
		service:     service,
		limiter:     limiter,
		logger:      logger,
		quotaBudget: budget,
	}, nil
}

// ListVideos returns the video stubs channelID published inside window, in
// the order the API returns them (newest first). It follows nextPageToken
// until the last page. If a page fails, the stubs gathered from earlier pages
// are returned along with a *ListerError. A page token seen twice ends the
// listing with ErrPageTokenRepeated.
func (c *Client) ListVideos(ctx context.Context, channelID string, window Window) ([]VideoStub, error) {
	var stubs []VideoStub

	after := window.After.UTC().Format(time.RFC3339)
	before := window.Before.UTC().Format(time.RFC3339)

	seen := make(map[string]bool)
	pageToken := ""
	for page := 1; ; page++ {
		if err := c.wait(ctx); err != nil {
			return stubs, &ListerError{Channel: channelID, Page: page, Err: err}
		}

		call := c.service.Search.List([]string{"id", "snippet"}).
			ChannelId(channelID).
			MaxResults(PageSize).
			Order("date").
			PublishedAfter(after).
			PublishedBefore(before).
			Type("video").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		c.chargeQuota(searchCost, err)
		if err != nil {
			return stubs, &ListerError{Channel: channelID, Page: page, Err: classify(err)}
		}

		for _, item := range resp.Items {
			if item.Id == nil || item.Id.VideoId == "" {
				continue
			}
			stub := VideoStub{
				VideoID:   item.Id.VideoId,
				ChannelID: channelID,
			}
			if item.Snippet != nil {
				stub.OriginalTitle = item.Snippet.Title
				stub.PublishedAt = item.Snippet.PublishedAt
			}
			stubs = append(stubs, stub)
		}

		c.logger.Debug("youtube: search page fetched",
			slog.String("channel_id", channelID),
			slog.Int("page", page),
			slog.Int("items", len(resp.Items)))

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
		if seen[pageToken] {
			return stubs, &ListerError{Channel: channelID, Page: page, Err: ErrPageTokenRepeated}
		}
		seen[pageToken] = true
	}

	return stubs, nil
}

// VideoDetails fetches statistics and the channel title for videoID.
// It returns ErrVideoNotFound when the API reports no matching record and an
// error wrapping ErrQuotaExceeded for the rate/permission class.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (Details, error) {
	if err := c.wait(ctx); err != nil {
		return Details{}, fmt.Errorf("video %s: %w", videoID, err)
	}

	resp, err := c.service.Videos.List([]string{"snippet", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	c.chargeQuota(videosCost, err)
	if err != nil {
		return Details{}, fmt.Errorf("video %s: %w", videoID, classify(err))
	}

	if len(resp.Items) == 0 {
		return Details{}, fmt.Errorf("video %s: %w", videoID, ErrVideoNotFound)
	}

	item := resp.Items[0]
	var details Details
	if item.Statistics != nil {
		details.ViewCount = toCount(item.Statistics.ViewCount)
		details.LikeCount = toCount(item.Statistics.LikeCount)
		details.CommentCount = toCount(item.Statistics.CommentCount)
	}
	if item.Snippet != nil {
		details.ChannelName = item.Snippet.ChannelTitle
	}
	return details, nil
}

// QuotaUsed returns the estimated quota units consumed by this client.
func (c *Client) QuotaUsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quotaUsed
}

// wait blocks until the pacing limiter admits the next request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// chargeQuota records the cost of a call that reached the API. A call that
// failed without an API response (canceled context, dial error) costs nothing.
func (c *Client) chargeQuota(units int, err error) {
	var apiErr *googleapi.Error
	if err != nil && !errors.As(err, &apiErr) {
		return
	}
	c.trackQuotaUsage(units)
}

// trackQuotaUsage adds units to the estimate and warns once when the budget
// is crossed.
func (c *Client) trackQuotaUsage(units int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quotaUsed += units
	if c.quotaUsed > c.quotaBudget && !c.overBudget {
		c.overBudget = true
		c.logger.Warn("youtube: estimated quota budget exceeded",
			slog.Int("used", c.quotaUsed),
			slog.Int("budget", c.quotaBudget))
	}
}

// IsQuotaExceeded reports whether err belongs to the quota/permission class.
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusTooManyRequests
	}
	return false
}

// classify tags quota-class API errors with ErrQuotaExceeded while keeping
// the original error in the chain.
func classify(err error) error {
	if IsQuotaExceeded(err) && !errors.Is(err, ErrQuotaExceeded) {
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	}
	return err
}

// toCount converts an API counter to a non-negative int64.
func toCount(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
