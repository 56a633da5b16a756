package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// MalformedRecordError reports a source record that lacks an identity field.
type MalformedRecordError struct {
	Kind  Kind
	Field string
	ID    string
}

func (e *MalformedRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed %s record %q: missing %s", e.Kind, e.ID, e.Field)
	}
	return fmt.Sprintf("malformed %s record: missing %s", e.Kind, e.Field)
}
