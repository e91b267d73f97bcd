package harvest

// Summary holds totals over a record set.
type Summary struct {
	Videos   int   `json:"videos"`
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// Summarize totals views, likes and comments across records.
func Summarize(records []VideoRecord) Summary {
	s := Summary{Videos: len(records)}
	for _, r := range records {
		s.Views += r.ViewCount
		s.Likes += r.LikeCount
		s.Comments += r.CommentCount
	}
	return s
}
