// Package web serves the interactive harvesting form.
//
// An operator enters channel IDs and a date range and the run executes inside
// the request. The response is streamed: the form first, then one progress
// line per channel, then totals, a preview and a link to download the
// workbook. Finished runs are kept in a small LRU cache so the
// download link works until the run is evicted.
package web

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ytharvest/export"
	"ytharvest/harvest"
)

// PreviewRows is the number of records shown on the result page.
const PreviewRows = 10

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

//go:embed page.html
var pageHTML string

// Extractor runs a harvest. *harvest.Harvester satisfies it.
type Extractor interface {
	Extract(ctx context.Context, req harvest.Request) (*harvest.Run, error)
}

// Defaults pre-fill the form.
type Defaults struct {
	Channels  []string
	StartDate string
	EndDate   string
}

// Server is the form's http.Handler.
type Server struct {
	extractor Extractor
	defaults  Defaults
	runs      *lru.Cache[string, *harvest.Run]
	page      *template.Template
	logger    *slog.Logger
	mux       *http.ServeMux
}

// NewServer creates a Server keeping up to recentRuns finished runs.
func NewServer(extractor Extractor, defaults Defaults, recentRuns int, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runs, err := lru.New[string, *harvest.Run](recentRuns)
	if err != nil {
		return nil, fmt.Errorf("create run cache: %w", err)
	}

	printer := message.NewPrinter(language.English)
	page, err := template.New("ytharvest").Funcs(template.FuncMap{
		"count": func(n int64) string { return printer.Sprintf("%d", n) },
	}).Parse(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	s := &Server{
		extractor: extractor,
		defaults:  defaults,
		runs:      runs,
		page:      page,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /extract", s.handleExtract)
	s.mux.HandleFunc("GET /download/{id}", s.handleDownload)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return s, nil
}

// ServeHTTP routes the request and logs it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Info("request served",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", rec.status))
}

// pageData feeds page.html.
type pageData struct {
	Channels string
	Start    string
	End      string

	Error  string
	Notice string

	Run      *harvest.Run
	Summary  harvest.Summary
	Preview  []harvest.VideoRecord
	Download string
	FileName string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{
		Channels: strings.Join(s.defaults.Channels, "\n"),
		Start:    s.defaults.StartDate,
		End:      s.defaults.EndDate,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Channels: r.FormValue("channels"),
		Start:    r.FormValue("start"),
		End:      r.FormValue("end"),
	}

	channelIDs := harvest.ParseChannelIDs(data.Channels)
	if len(channelIDs) == 0 {
		data.Error = harvest.ErrNoChannels.Error()
		s.render(w, http.StatusBadRequest, data)
		return
	}
	dates, err := harvest.ParseDateRange(data.Start, data.End)
	if err != nil {
		data.Error = err.Error()
		s.render(w, http.StatusBadRequest, data)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	s.stream(w, "head", data)

	run, err := s.extractor.Extract(r.Context(), harvest.Request{
		ChannelIDs: channelIDs,
		Dates:      dates,
		Observer:   &progressObserver{server: s, w: w},
	})
	data.Run = run
	if err != nil {
		data.Error = err.Error()
		s.stream(w, "result", data)
		return
	}
	if len(run.Records) == 0 {
		data.Notice = "No videos found in the specified date range."
		s.stream(w, "result", data)
		return
	}

	s.runs.Add(run.ID, run)

	data.Summary = run.Summary()
	data.Preview = run.Records
	if len(data.Preview) > PreviewRows {
		data.Preview = data.Preview[:PreviewRows]
	}
	data.Download = "/download/" + run.ID
	data.FileName = export.FileName(run.Dates)
	s.stream(w, "result", data)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, ok := s.runs.Get(id)
	if !ok {
		http.Error(w, "run not found or expired", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, run.Records); err != nil {
		s.logger.Error("export failed", slog.String("run_id", id), slog.Any("error", err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(run.Dates)))
	w.Write(buf.Bytes())
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "page", data); err != nil {
		s.logger.Error("render page failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// stream writes one named section of the page and flushes it to the client.
// The status line has already been sent, so failures are only logged.
func (s *Server) stream(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render section failed", slog.String("section", name), slog.Any("error", err))
		return
	}
	w.Write(buf.Bytes())
	if err := http.NewResponseController(w).Flush(); err != nil {
		s.logger.Debug("flush not supported", slog.Any("error", err))
	}
}

// progress feeds the "progress" section.
type progress struct {
	Index     int
	Total     int
	ChannelID string
}

// progressObserver streams a line per channel to the operator and logs it.
type progressObserver struct {
	server *Server
	w      http.ResponseWriter
}

func (o *progressObserver) ChannelStarted(index, total int, channelID string) {
	o.server.logger.Info("processing channel",
		slog.Int("index", index),
		slog.Int("total", total),
		slog.String("channel_id", channelID))
	o.server.stream(o.w, "progress", progress{Index: index, Total: total, ChannelID: channelID})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
