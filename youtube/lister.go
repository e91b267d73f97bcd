// Package youtube lists channel videos and fetches per-video statistics
// from the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Sentinel errors for listing and detail lookups.
var (
	// ErrQuotaExceeded is the rate/permission failure class (HTTP 403 or 429).
	ErrQuotaExceeded = errors.New("youtube: quota exceeded")
	// ErrVideoNotFound means the lookup succeeded but returned no record.
	ErrVideoNotFound = errors.New("youtube: video not found")
	// ErrPageTokenRepeated means the service handed back a page token it had
	// already returned for the same listing.
	ErrPageTokenRepeated = errors.New("youtube: page token repeated")
)

// PageSize is the maximum number of search results requested per page.
const PageSize = 50

// VideoLister produces the video stubs a channel published inside a window.
type VideoLister interface {
	// ListVideos walks every result page. On failure it returns the stubs
	// accumulated so far together with a *ListerError.
	ListVideos(ctx context.Context, channelID string, window Window) ([]VideoStub, error)
}

// DetailFetcher looks up statistics for a single video.
type DetailFetcher interface {
	VideoDetails(ctx context.Context, videoID string) (Details, error)
}

// Window is an inclusive publication-time range.
type Window struct {
	// After is the earliest publish time, sent as publishedAfter.
	After time.Time
	// Before is the latest publish time, sent as publishedBefore.
	Before time.Time
}

// DayWindow returns the window covering start 00:00:00 UTC through
// end 23:59:59 UTC. Only the calendar dates of start and end are used.
func DayWindow(start, end time.Time) Window {
	y, m, d := start.Date()
	after := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = end.Date()
	before := time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
	return Window{After: after, Before: before}
}

// VideoStub is the listing-stage record for a video.
type VideoStub struct {
	// VideoID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	VideoID string `json:"video_id"`

	// ChannelID is the channel the stub was listed from, as supplied by the caller.
	ChannelID string `json:"channel_id"`

	// OriginalTitle is the snippet title exactly as returned.
	OriginalTitle string `json:"original_title"`

	// PublishedAt is the publish timestamp in wire format, e.g. "2025-09-20T14:30:00Z".
	PublishedAt string `json:"published_at"`
}

// VideoURL returns the full YouTube URL for this video.
func (v VideoStub) VideoURL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}

// Details holds the enrichment fields of a video. Zero values mean the
// statistic was not reported.
type Details struct {
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	ChannelName  string `json:"channel_name"`
}

// ListerError wraps listing errors with the channel and page that failed.
// Use errors.As() to extract it:
//
//	var listerErr *youtube.ListerError
//	if errors.As(err, &listerErr) {
//		fmt.Printf("listing %s stopped at page %d: %v\n", listerErr.Channel, listerErr.Page, listerErr.Err)
//	}
type ListerError struct {
	// Channel is the channel ID that was being listed.
	Channel string
	// Page is the 1-based page number whose request failed.
	Page int
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the listing error.
func (e *ListerError) Error() string {
	return "youtube: listing " + e.Channel + " page " + strconv.Itoa(e.Page) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *ListerError) Unwrap() error { return e.Err }
