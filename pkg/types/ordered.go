// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// Ordered is a JSON object decoded with the order of its keys preserved.
// A repeated key keeps its first position and its last value. A JSON null
// decodes to an empty Ordered.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = Ordered[V]{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	out := Ordered[V]{values: make(map[string]V)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}

		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if _, seen := out.values[key]; !seen {
			out.keys = append(out.keys, key)
		}
		out.values[key] = v
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}

	*o = out
	return nil
}

// Len returns the number of keys.
func (o Ordered[V]) Len() int {
	return len(o.keys)
}

// Keys returns the keys in document order.
func (o Ordered[V]) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Get returns the value stored under key and whether it was present.
func (o Ordered[V]) Get(key string) (V, bool) {
	v, ok := o.values[key]
	return v, ok
}

// All iterates over key/value pairs in document order.
func (o Ordered[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// Set stores v under key, appending key if it is new.
func (o *Ordered[V]) Set(key string, v V) {
	if o.values == nil {
		o.values = make(map[string]V)
	}
	if _, seen := o.values[key]; !seen {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Record is a loosely structured JSON object whose fields are kept raw.
// It is the explicit optional-field accessor over a backup record: every
// lookup reports presence instead of failing.
type Record struct {
	Ordered[json.RawMessage]
}

// Lookup returns the raw JSON value of field and whether the field exists.
func (r Record) Lookup(field string) (json.RawMessage, bool) {
	return r.Get(field)
}

// Text is a loosely typed scalar. Strings decode to their value, null to the
// empty string, and any other JSON value to its literal text.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	*t = Text(bytes.TrimSpace(data))
	return nil
}

// String returns the text value.
func (t Text) String() string {
	return string(t)
}
