package entrystore

import "errors"

var (
	// ErrAlreadyOpen is returned when opening a backend twice.
	ErrAlreadyOpen = errors.New("entrystore: backend already open")

	// ErrNotOpen is returned when using a backend before opening it.
	ErrNotOpen = errors.New("entrystore: backend not open")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("entrystore: record not found")

	// ErrCorrupt is returned when a stored record cannot be decoded.
	ErrCorrupt = errors.New("entrystore: corrupt record")
)

func statusError(s Status) error {
	switch s {
	case StatusOK:
		return nil
	case StatusNotFound:
		return ErrNotFound
	case StatusCorrupt:
		return ErrCorrupt
	default:
		return errors.New("entrystore: " + s.String())
	}
}
