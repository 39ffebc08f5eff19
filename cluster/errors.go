package cluster

import "fmt"

// DuplicateKeyError indicates that the same configuration key was derived
// twice for one node. This is a defect in the key derivation logic (or a
// caller override colliding with a derived key), never something to merge
// over silently.
type DuplicateKeyError struct {
	Key      string
	Existing string
	Proposed string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("cannot override config %q=%q with new value %q", e.Key, e.Existing, e.Proposed)
}

// UnsupportedMechanismError indicates that credential material was requested
// for a SASL mechanism this generator cannot wire end-to-end.
type UnsupportedMechanismError struct {
	Mechanism string
}

func (e *UnsupportedMechanismError) Error() string {
	return fmt.Sprintf("unsupported SASL mechanism %s", e.Mechanism)
}
