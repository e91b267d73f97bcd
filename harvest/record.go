package harvest

import (
	"time"

	"ytharvest/youtube"
)

// VideoRecord is the enriched, exported unit.
type VideoRecord struct {
	Date          string `json:"date"`
	VideoID       string `json:"video_id"`
	ChannelID     string `json:"channel_id"`
	OriginalTitle string `json:"original_title"`
	// TranslatedTitle is a reserved column. Nothing populates it.
	TranslatedTitle string `json:"translated_title"`
	PublishedAt     string `json:"published_at"`
	ViewCount       int64  `json:"view_count"`
	LikeCount       int64  `json:"like_count"`
	CommentCount    int64  `json:"comment_count"`
	ChannelName     string `json:"channel_name"`
}

// newRecord merges a stub with its (possibly zero) details.
func newRecord(stub youtube.VideoStub, details youtube.Details) VideoRecord {
	return VideoRecord{
		Date:          DeriveDate(stub.PublishedAt),
		VideoID:       stub.VideoID,
		ChannelID:     stub.ChannelID,
		OriginalTitle: stub.OriginalTitle,
		PublishedAt:   stub.PublishedAt,
		ViewCount:     nonNegative(details.ViewCount),
		LikeCount:     nonNegative(details.LikeCount),
		CommentCount:  nonNegative(details.CommentCount),
		ChannelName:   details.ChannelName,
	}
}

// DeriveDate returns the YYYY-MM-DD calendar date encoded in an RFC 3339
// publish timestamp, or "" if the timestamp is empty or malformed.
// The date is taken in the timestamp's own offset.
func DeriveDate(publishedAt string) string {
	if publishedAt == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return ""
	}
	return t.Format(DateLayout)
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
