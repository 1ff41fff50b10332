// Package sentinel defines the infrastructure facts stores report. Services
// match them with errors.Is and translate them into domain errors; input
// validation uses pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no row for the requested id.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a unique or foreign-key constraint rejected the write.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: connection, transaction or query failure.
	ErrUnavailable = errors.New("unavailable")
	// ErrSerialization: a concurrent transaction committed a conflicting
	// write the unit of work could not see. Running it again is safe.
	ErrSerialization = errors.New("serialization failure")
	// ErrMissingTable: the backing table does not exist, as with a
	// deployment that has no scraper-owned leads table.
	ErrMissingTable = errors.New("missing table")
)
