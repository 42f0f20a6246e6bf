package mapper

import (
	"fmt"

	"github.com/wham/wiregen/internal/schema"
)

// UnsupportedFieldTypeError reports a field whose declared type has no wire
// encoding, or whose type reference points outside the current unit.
type UnsupportedFieldTypeError struct {
	Message  string
	Field    string
	Type     schema.Type
	TypeName string
	Reason   string
}

func (e *UnsupportedFieldTypeError) Error() string {
	kind := e.Type.String()
	if e.TypeName != "" {
		kind += " " + e.TypeName
	}
	return fmt.Sprintf("unsupported field type: message %s field %s (%s): %s", e.Message, e.Field, kind, e.Reason)
}
