package persistence

import (
	"context"
	"errors"
)

// ErrCorruptImage is returned by LoadAll when the durable image cannot be
// decoded. Callers are expected to log it and start with an empty collection
// rather than fail startup.
var ErrCorruptImage = errors.New("persistence: corrupt snapshot image")

// Snapshot stores the reservation collection as a single durable image.
type Snapshot interface {
	// LoadAll reads the entire persisted collection in insertion order.
	LoadAll(ctx context.Context) ([]Reservation, error)
	// ReplaceAll overwrites the durable image with the supplied collection.
	ReplaceAll(ctx context.Context, reservations []Reservation) error
}
