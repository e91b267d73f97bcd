package ytharvest

import (
	"ytharvest/export"
	"ytharvest/harvest"
	"ytharvest/youtube"
)

// Type aliases for convenient error handling.
type (
	// ListerError wraps errors during video listing.
	ListerError = youtube.ListerError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrQuotaExceeded indicates the Data API quota/permission class (403/429).
	ErrQuotaExceeded = youtube.ErrQuotaExceeded
	// ErrVideoNotFound indicates a detail lookup returned no record.
	ErrVideoNotFound = youtube.ErrVideoNotFound

	// Input errors
	// ErrNoChannels indicates no channel IDs were supplied.
	ErrNoChannels = harvest.ErrNoChannels
	// ErrInvalidDateRange indicates the start date is after the end date.
	ErrInvalidDateRange = harvest.ErrInvalidDateRange
	// ErrInvalidDate indicates a date is missing or not YYYY-MM-DD.
	ErrInvalidDate = harvest.ErrInvalidDate

	// ErrNoRecords indicates an export was requested for an empty record set.
	ErrNoRecords = export.ErrNoRecords
)

// IsQuotaExceeded reports whether err is in the quota/permission class.
func IsQuotaExceeded(err error) bool {
	return youtube.IsQuotaExceeded(err)
}
