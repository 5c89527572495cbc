package data

import (
	"context"
	"encoding/json"
	"strings"
)

// FieldError is one validation failure. It is encoded as a [field, message] pair.
type FieldError struct {
	Field   string
	Message string
}

// MarshalJSON encodes the error as a two element array.
func (e FieldError) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Field, e.Message})
}

// ValidationErrors is the ordered list of failures collected by the last validation pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// Has reports whether any failure was recorded for field.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Model holds the state every stored record shares. Embed it in record types.
// An ID of zero means the record has never been stored.
type Model struct {
	ID     int64            `json:"id"`
	Errors ValidationErrors `json:"-"`
}

// PrimaryKey returns the record identity, zero when unsaved.
func (m *Model) PrimaryKey() int64 { return m.ID }

// SetPrimaryKey assigns the identity. It only takes effect once.
func (m *Model) SetPrimaryKey(id int64) {
	if m.ID == 0 {
		m.ID = id
	}
}

// IsNew reports whether the record has never been stored.
func (m *Model) IsNew() bool { return m.ID == 0 }

// ValidationErrors returns the failures from the last validation pass.
func (m *Model) ValidationErrors() ValidationErrors { return m.Errors }

// ResetErrors clears the failures before a new validation pass.
func (m *Model) ResetErrors() { m.Errors = nil }

// AddError records a failure for field.
func (m *Model) AddError(field, message string) {
	m.Errors = append(m.Errors, FieldError{Field: field, Message: message})
}

// Record is the contract every storage-backed type satisfies.
//
// Fields returns scan destinations for the key column followed by
// Schema().Columns, in that order. Values returns the values written for
// Schema().Columns. Both are explicit per type, no reflection is involved.
type Record interface {
	Schema() *Schema
	PrimaryKey() int64
	SetPrimaryKey(id int64)
	Fields() []any
	Values() []any
	ValidationErrors() ValidationErrors
	ResetErrors()
}

// RecordPtr constrains a type parameter to pointers to a record struct.
type RecordPtr[T any] interface {
	*T
	Record
}

// Validator is implemented by records that check themselves before being saved.
// A false result aborts the save; the failures are left on the record.
// The returned error is reserved for storage failures hit while validating.
type Validator interface {
	Validate(ctx context.Context, s *Store) (bool, error)
}

// BeforeSaver derives fields (timestamps, hashes) right before persisting.
type BeforeSaver interface {
	BeforeSave(ctx context.Context, s *Store) error
}

// AfterSaver runs side effects once the row has been written.
type AfterSaver interface {
	AfterSave(ctx context.Context, s *Store) error
}

// BeforeDeleter runs before the row is removed. Cascades live here.
type BeforeDeleter interface {
	BeforeDelete(ctx context.Context, s *Store) error
}

// AfterDeleter runs once the row has been removed.
type AfterDeleter interface {
	AfterDelete(ctx context.Context, s *Store) error
}
