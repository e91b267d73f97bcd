// Package export writes video records as an .xlsx workbook.
//
// The workbook has one sheet, SheetName, whose first row is Columns in that
// exact order, followed by one row per record. Counts are stored as numbers.
package export

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"ytharvest/harvest"
	"ytharvest/internal/storage"
)

// SheetName is the name of the single worksheet.
const SheetName = "YouTube_Videos"

// MaxColumnWidth caps the computed column width.
const MaxColumnWidth = 50

// Columns is the fixed header row.
var Columns = []string{
	"date",
	"video_id",
	"channel_id",
	"original_title",
	"translated_title",
	"published_at",
	"view_count",
	"like_count",
	"comment_count",
	"channel_name",
}

// ErrNoRecords is returned when there is nothing to export.
var ErrNoRecords = errors.New("no data to export")

// FileName returns the download name for a date range, e.g.
// "youtube_data_2025-09-16_2025-09-28.xlsx".
func FileName(dates harvest.DateRange) string {
	return fmt.Sprintf("youtube_data_%s_%s.xlsx",
		dates.Start.Format(harvest.DateLayout),
		dates.End.Format(harvest.DateLayout))
}

// row returns the cell values of r in Columns order.
func row(r harvest.VideoRecord) []interface{} {
	return []interface{}{
		r.Date,
		r.VideoID,
		r.ChannelID,
		r.OriginalTitle,
		r.TranslatedTitle,
		r.PublishedAt,
		r.ViewCount,
		r.LikeCount,
		r.CommentCount,
		r.ChannelName,
	}
}

// Build creates the workbook in memory. The caller must Close it.
func Build(records []harvest.VideoRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(Columns))

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
		widths[i] = utf8.RuneCountInString(c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		values := row(r)
		for j, v := range values {
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[j] {
				widths[j] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, columnWidth(w)); err != nil {
			f.Close()
			return nil, fmt.Errorf("set width of %s: %w", col, err)
		}
	}

	return f, nil
}

// columnWidth pads the longest cell text by two and caps it.
func columnWidth(longest int) float64 {
	w := longest + 2
	if w > MaxColumnWidth {
		w = MaxColumnWidth
	}
	return float64(w)
}

// Write encodes records as an .xlsx workbook to w.
func Write(w io.Writer, records []harvest.VideoRecord) error {
	f, err := Build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveFile writes records to path atomically. It returns ErrNoRecords and
// leaves path untouched when records is empty.
func SaveFile(path string, records []harvest.VideoRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	return storage.WriteFileAtomic(path, func(w io.Writer) error {
		return Write(w, records)
	})
}

// ReadHeader returns the first row of the workbook's SheetName sheet.
func ReadHeader(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", SheetName)
	}
	return rows[0], nil
}
