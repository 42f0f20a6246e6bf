package wire

import "fmt"

// ValueError reports a field value whose Go type does not fit its kind.
type ValueError struct {
	Kind   Kind
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("wire: %s: cannot encode %T as %s", e.Reason, e.Value, e.Kind)
}
