// Package document is the server side of the cloud sync: one mutable JSON
// document per account, written with merge semantics so server-managed
// fields survive client writes.
package document

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrBadData  = errors.New("document data must be a JSON object")
)

type Document struct {
	UID       uuid.UUID
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}
