// Package query provides insertion-ordered query parameter handling and
// URL construction for the item service.
package query

import "strconv"

// Params is a string multimap that preserves insertion order of keys.
//
// Standard url.Values is map-backed and loses key order; the item service
// URL format requires parameters to appear in the order they were supplied,
// so Params keeps an explicit key slice alongside the value map.
type Params struct {
	keys   []string
	values map[string][]string
}

// NewParams returns an empty parameter set.
func NewParams() Params {
	return Params{values: make(map[string][]string)}
}

// Set replaces the values for key. A key keeps its original position when
// set again; new keys are appended.
func (p *Params) Set(key string, values ...string) {
	if p.values == nil {
		p.values = make(map[string][]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = values
}

// SetInt sets key to a single integer value.
func (p *Params) SetInt(key string, value int) {
	p.Set(key, strconv.Itoa(value))
}

// Get returns the values for key, or nil if the key is absent.
func (p Params) Get(key string) []string {
	return p.values[key]
}

// GetInt returns the first value for key parsed as an integer.
// Returns 0 and false if the key is absent or not numeric.
func (p Params) GetInt(key string) (int, bool) {
	vals := p.values[key]
	if len(vals) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of distinct keys.
func (p Params) Len() int {
	return len(p.keys)
}

// Clone returns a deep copy. Mutating the copy never affects the original,
// which matters because pagination state is advanced by copy-and-modify.
func (p Params) Clone() Params {
	c := Params{
		keys:   make([]string, len(p.keys)),
		values: make(map[string][]string, len(p.values)),
	}
	copy(c.keys, p.keys)
	for k, v := range p.values {
		vals := make([]string, len(v))
		copy(vals, v)
		c.values[k] = vals
	}
	return c
}
