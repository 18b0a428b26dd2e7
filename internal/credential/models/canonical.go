package models

import (
	"bytes"
	"encoding/json"
)

// Canonical returns a key-sorted, whitespace-free JSON encoding of v.
// Values are round-tripped through a generic form so struct and map
// representations of the same document encode identically.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// CanonicalEqual reports whether a and b encode to the same canonical JSON.
// Encoding failures compare unequal.
func CanonicalEqual(a, b any) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}
