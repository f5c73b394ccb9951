// Package correlation mints the identifiers that tie one low-stock event to
// every log line, queue message and order call it produces.
package correlation

import "github.com/gofrs/uuid/v5"

const (
	// Unknown marks log lines where the id could not be recovered.
	Unknown = "unknown"
	// NotAvailable is used when a payload arrives without an id.
	NotAvailable = "N/A"
)

// Generator returns a fresh, globally unique id on every call.
type Generator func() string

// NewID returns a random UUIDv4 string.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}
