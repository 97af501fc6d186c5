package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/finpipe/statement-ledger/internal/adapter/http/dto"
	"github.com/finpipe/statement-ledger/internal/domain"
)

// User-facing flash texts.
const (
	msgNoFile          = "No file selected"
	msgDatabaseDown    = "Could not connect to the database. Check the configuration."
	msgTypeNotAllowed  = "File type not allowed. Use only .xls or .xlsx files"
	msgTooLarge        = "File exceeds the maximum allowed size"
	msgIngested        = "File processed successfully: %d records inserted"
	msgTransformed     = "Data transformed successfully: %d records classified"
	msgTransformFailed = "Error running the data transformation."
)

// Flash categories.
const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashError   = "error"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrModelFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrDatabaseUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSchemaUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ingestFlash maps an ingestion error to the flash text shown on the upload page.
func ingestFlash(err error) string {
	switch {
	case errors.Is(err, domain.ErrDatabaseUnavailable):
		return msgDatabaseDown
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return msgTypeNotAllowed
	default:
		return fmt.Sprintf("Error processing file: %v", err)
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// secureFilename reduces name to a flat ASCII file name safe to join to a
// directory. It returns "" when nothing usable remains.
func secureFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}

	name = strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")

	return strings.Trim(name, "._")
}
