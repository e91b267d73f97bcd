package web

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"ytharvest/export"
	"ytharvest/harvest"
	"ytharvest/youtube"
)

// fakeSource lists two videos for every channel.
type fakeSource struct {
	calls int
}

func (f *fakeSource) ListVideos(ctx context.Context, channelID string, window youtube.Window) ([]youtube.VideoStub, error) {
	f.calls++
	return []youtube.VideoStub{
		{VideoID: channelID + "-a", ChannelID: channelID, OriginalTitle: "A <b>", PublishedAt: "2025-09-20T14:30:00Z"},
		{VideoID: channelID + "-b", ChannelID: channelID, OriginalTitle: "B", PublishedAt: "2025-09-21T08:00:00Z"},
	}, nil
}

func (f *fakeSource) VideoDetails(ctx context.Context, videoID string) (youtube.Details, error) {
	f.calls++
	return youtube.Details{ViewCount: 1500, LikeCount: 20, CommentCount: 3, ChannelName: "Chan"}, nil
}

// emptyExtractor returns runs without records.
type emptyExtractor struct{}

func (emptyExtractor) Extract(ctx context.Context, req harvest.Request) (*harvest.Run, error) {
	return &harvest.Run{ID: "empty", Dates: req.Dates}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, extractor Extractor) *Server {
	t.Helper()
	s, err := NewServer(extractor, Defaults{StartDate: "2025-09-16", EndDate: "2025-09-28"}, 4, testLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func postForm(s http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, emptyExtractor{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`name="channels"`, `value="2025-09-16"`, `value="2025-09-28"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, emptyExtractor{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestExtractValidation(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		wantMsg string
	}{
		{
			"no channels",
			url.Values{"channels": {"  \n "}, "start": {"2025-09-16"}, "end": {"2025-09-28"}},
			"at least one channel required",
		},
		{
			"inverted dates",
			url.Values{"channels": {"UC1"}, "start": {"2025-09-28"}, "end": {"2025-09-16"}},
			"start date must not be after end date",
		},
		{
			"bad date",
			url.Values{"channels": {"UC1"}, "start": {"yesterday"}, "end": {"2025-09-16"}},
			"invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			s := newTestServer(t, harvest.New(src, testLogger()))

			rec := postForm(s, tt.values)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("body missing %q", tt.wantMsg)
			}
			if src.calls != 0 {
				t.Errorf("source called %d times for invalid input", src.calls)
			}
		})
	}
}

func TestExtractNoData(t *testing.T) {
	s := newTestServer(t, emptyExtractor{})
	rec := postForm(s, url.Values{"channels": {"UC1"}, "start": {"2025-09-16"}, "end": {"2025-09-28"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No videos found in the specified date range.") {
		t.Error("body missing no-data notice")
	}
	if strings.Contains(rec.Body.String(), "/download/") {
		t.Error("no download link expected for an empty run")
	}
}

func TestExtractAndDownload(t *testing.T) {
	s := newTestServer(t, harvest.New(&fakeSource{}, testLogger()))
	rec := postForm(s, url.Values{"channels": {"UC1\nUC2"}, "start": {"2025-09-16"}, "end": {"2025-09-28"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Extracted 4 videos",
		"6,000", // total views
		"A &lt;b&gt;",
		"youtube_data_2025-09-16_2025-09-28.xlsx",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("result body missing %q", want)
		}
	}

	start := strings.Index(body, "/download/")
	if start < 0 {
		t.Fatal("no download link in result page")
	}
	end := strings.Index(body[start:], `"`)
	link := body[start : start+end]

	dl := httptest.NewRecorder()
	s.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, link, nil))
	if dl.Code != http.StatusOK {
		t.Fatalf("download status = %d, want 200", dl.Code)
	}
	if got := dl.Header().Get("Content-Type"); got != xlsxContentType {
		t.Errorf("Content-Type = %q", got)
	}
	if got := dl.Header().Get("Content-Disposition"); !strings.Contains(got, "youtube_data_2025-09-16_2025-09-28.xlsx") {
		t.Errorf("Content-Disposition = %q", got)
	}

	header, err := export.ReadHeader(bytes.NewReader(dl.Body.Bytes()))
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if !reflect.DeepEqual(header, export.Columns) {
		t.Errorf("header = %v, want %v", header, export.Columns)
	}
}

func TestExtractStreamsProgress(t *testing.T) {
	s := newTestServer(t, harvest.New(&fakeSource{}, testLogger()))
	rec := postForm(s, url.Values{"channels": {"UC1\nUC2"}, "start": {"2025-09-16"}, "end": {"2025-09-28"}})

	if !rec.Flushed {
		t.Error("progress was not flushed to the client")
	}
	body := rec.Body.String()
	form := strings.Index(body, "</form>")
	first := strings.Index(body, "Processing channel 1/2: UC1")
	second := strings.Index(body, "Processing channel 2/2: UC2")
	result := strings.Index(body, "Extracted 4 videos")
	if form < 0 || first < 0 || second < 0 || result < 0 {
		t.Fatalf("body missing a section: form=%d first=%d second=%d result=%d", form, first, second, result)
	}
	if !(form < first && first < second && second < result) {
		t.Errorf("sections out of order: form=%d first=%d second=%d result=%d", form, first, second, result)
	}
	if n := strings.Count(body, "</html>"); n != 1 {
		t.Errorf("page closed %d times, want 1", n)
	}
}

// canceledExtractor reports one channel, then returns a canceled run.
type canceledExtractor struct{}

func (canceledExtractor) Extract(ctx context.Context, req harvest.Request) (*harvest.Run, error) {
	req.Observer.ChannelStarted(1, len(req.ChannelIDs), req.ChannelIDs[0])
	run := &harvest.Run{ID: "partial", Dates: req.Dates, Channels: []harvest.ChannelReport{
		{ChannelID: req.ChannelIDs[0], Canceled: true},
	}}
	return run, context.Canceled
}

func TestExtractCanceledRun(t *testing.T) {
	s := newTestServer(t, canceledExtractor{})
	rec := postForm(s, url.Values{"channels": {"UC1\nUC2"}, "start": {"2025-09-16"}, "end": {"2025-09-28"}})

	body := rec.Body.String()
	for _, want := range []string{"Processing channel 1/2: UC1", "context canceled", "<td>canceled</td>"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "/download/") {
		t.Error("no download link expected for a canceled run")
	}
}

func TestDownloadUnknownRun(t *testing.T) {
	s := newTestServer(t, emptyExtractor{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRunCacheEviction(t *testing.T) {
	s, err := NewServer(harvest.New(&fakeSource{}, testLogger()), Defaults{}, 1, testLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	values := url.Values{"channels": {"UC1"}, "start": {"2025-09-16"}, "end": {"2025-09-28"}}
	postForm(s, values)
	first := s.runs.Keys()
	postForm(s, values)

	if s.runs.Len() != 1 {
		t.Errorf("cache holds %d runs, want 1", s.runs.Len())
	}
	if len(first) != 1 || s.runs.Contains(first[0]) {
		t.Error("oldest run should have been evicted")
	}
}
