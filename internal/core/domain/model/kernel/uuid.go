package kernel

import (
	"fmt"

	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("user id")

// UUID is an immutable user identifier. The zero value is invalid.
type UUID struct {
	id uuid.UUID
}

func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// ParseUUID accepts every textual form understood by github.com/google/uuid.
func ParseUUID(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("user id", fmt.Errorf("parse %q: %w", s, err))
	}
	parsed := UUID{id: id}
	if err = parsed.Validate(); err != nil {
		return UUID{}, err
	}
	return parsed, nil
}

// FromGoogle wraps a uuid.UUID read from storage.
func FromGoogle(id uuid.UUID) (UUID, error) {
	wrapped := UUID{id: id}
	if err := wrapped.Validate(); err != nil {
		return UUID{}, err
	}
	return wrapped, nil
}

// FromNullable converts an optional storage value into an optional UUID.
func FromNullable(id *uuid.UUID) (*UUID, error) {
	if id == nil {
		return nil, nil
	}
	wrapped, err := FromGoogle(*id)
	if err != nil {
		return nil, err
	}
	return &wrapped, nil
}

// ToNullable is the inverse of FromNullable.
func ToNullable(id *UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.id
	return &raw
}

func (u UUID) String() string {
	return u.id.String()
}

func (u UUID) Google() uuid.UUID {
	return u.id
}

func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}

// SameUser compares two optional ids; two nils are equal.
func SameUser(a, b *UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}
