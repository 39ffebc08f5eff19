package cluster

import "strconv"

// propertySet accumulates the configuration for a single node. Every key
// may be assigned exactly once; a second assignment fails immediately with
// a DuplicateKeyError.
type propertySet struct {
	values map[string]string
}

func newPropertySet(seed map[string]string) *propertySet {
	values := make(map[string]string, len(seed)+24)
	for k, v := range seed {
		values[k] = v
	}

	return &propertySet{
		values: values,
	}
}

func (p *propertySet) put(key, value string) error {
	if existing, ok := p.values[key]; ok {
		return &DuplicateKeyError{
			Key:      key,
			Existing: existing,
			Proposed: value,
		}
	}

	p.values[key] = value
	return nil
}

func (p *propertySet) putInt(key string, value int) error {
	return p.put(key, strconv.Itoa(value))
}

// freeze hands the accumulated values over to the caller. The set must not
// be written to afterwards.
func (p *propertySet) freeze() map[string]string {
	values := p.values
	p.values = nil
	return values
}
