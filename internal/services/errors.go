package services

import (
	"errors"

	"stockledger/internal/spreadsheet"
)

// Upload validation failures. Handlers translate these (and unreadable file
// errors) to client errors; everything else is an internal failure.
var (
	ErrNoFiles           = errors.New("no files supplied, provide a base file or at least one update file")
	ErrBadFileType       = errors.New("unsupported file type, only .xls and .xlsx are accepted")
	ErrEmptyFile         = errors.New("uploaded file is empty")
	ErrBaseAlreadyLoaded = errors.New("base file already loaded for this inventory")
	ErrBaseRequired      = errors.New("a base file must be loaded before update files")
	ErrNoRecordsImported = errors.New("no records imported from the supplied files")
	ErrInventoryExists   = errors.New("inventory already exists")
	ErrInvalidName       = errors.New("invalid inventory name")
)

// IsValidationError reports whether err should surface as a client error.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrNoFiles),
		errors.Is(err, ErrBadFileType),
		errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrBaseAlreadyLoaded),
		errors.Is(err, ErrBaseRequired),
		errors.Is(err, ErrNoRecordsImported),
		errors.Is(err, ErrInventoryExists),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, spreadsheet.ErrUnreadable):
		return true
	}
	return false
}
