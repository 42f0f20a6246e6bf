package schema

import (
	"errors"
	"fmt"
)

const (
	MinFieldNumber = 1
	MaxFieldNumber = 1<<29 - 1

	firstReservedNumber = 19000
	lastReservedNumber  = 19999
)

var (
	ErrDuplicateFieldNumber = errors.New("duplicate field number")
	ErrDuplicateFieldName   = errors.New("duplicate field name")
	ErrFieldNumberRange     = errors.New("field number out of range")
	ErrDuplicateTypeName    = errors.New("duplicate type name")
	ErrEmptyName            = errors.New("empty name")
)

// IntegrityError reports a schema that violates a structural invariant.
type IntegrityError struct {
	Message string
	Field   string
	Err     error
}

func (e *IntegrityError) Error() string {
	switch {
	case e.Message == "":
		return fmt.Sprintf("schema: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("schema: message %s: %v", e.Message, e.Err)
	default:
		return fmt.Sprintf("schema: message %s field %s: %v", e.Message, e.Field, e.Err)
	}
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// Validate checks the invariants the model relies on. Descriptor compilers
// normally enforce them already, but ingested bytes are not trusted.
func Validate(f *File) error {
	types := make(map[string]bool, len(f.Messages)+len(f.Enums))
	for _, m := range f.Messages {
		if m.Name == "" {
			return &IntegrityError{Err: ErrEmptyName}
		}
		if types[m.Name] {
			return &IntegrityError{Message: m.Name, Err: ErrDuplicateTypeName}
		}
		types[m.Name] = true
		if err := validateMessage(m); err != nil {
			return err
		}
	}
	for _, e := range f.Enums {
		if e.Name == "" {
			return &IntegrityError{Err: ErrEmptyName}
		}
		if types[e.Name] {
			return &IntegrityError{Message: e.Name, Err: ErrDuplicateTypeName}
		}
		types[e.Name] = true
	}
	return nil
}

func validateMessage(m Message) error {
	numbers := make(map[int32]string, len(m.Fields))
	names := make(map[string]bool, len(m.Fields))
	for _, fd := range m.Fields {
		if fd.Name == "" {
			return &IntegrityError{Message: m.Name, Err: ErrEmptyName}
		}
		if names[fd.Name] {
			return &IntegrityError{Message: m.Name, Field: fd.Name, Err: ErrDuplicateFieldName}
		}
		names[fd.Name] = true

		if fd.Number < MinFieldNumber || fd.Number > MaxFieldNumber ||
			(fd.Number >= firstReservedNumber && fd.Number <= lastReservedNumber) {
			return &IntegrityError{
				Message: m.Name,
				Field:   fd.Name,
				Err:     fmt.Errorf("%w: %d", ErrFieldNumberRange, fd.Number),
			}
		}
		if other, ok := numbers[fd.Number]; ok {
			return &IntegrityError{
				Message: m.Name,
				Field:   fd.Name,
				Err:     fmt.Errorf("%w: %d already used by %s", ErrDuplicateFieldNumber, fd.Number, other),
			}
		}
		numbers[fd.Number] = fd.Name
	}
	return nil
}
