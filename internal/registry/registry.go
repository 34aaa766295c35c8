package registry

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Document identifies one ingested document. Identity is Id; Name is the
// original filename and is not unique.
type Document struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type RegisterOutcome int

const (
	// The zero value deliberately names neither outcome; it is what error
	// returns carry.
	outcomeUnknown RegisterOutcome = iota
	Inserted
	AlreadyPresent
)

// Registry tracks ingested documents. Register is idempotent keyed by id:
// registering an id that is already present leaves the registry unchanged and
// reports AlreadyPresent, which is not an error. The outcome is meaningful
// only when the error is nil.
type Registry interface {
	Register(ctx context.Context, doc Document) (RegisterOutcome, error)
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context) ([]Document, error)
}
