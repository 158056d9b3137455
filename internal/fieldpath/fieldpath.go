// Package fieldpath compares values found at a path inside decoded JSON objects.
package fieldpath

import (
	"reflect"
	"strings"
)

// Path is an ordered sequence of object keys. A single-key path addresses a
// top-level field; longer paths descend into nested objects.
type Path []string

// Key returns a path to a top-level field
func Key(key string) Path {
	return Path{key}
}

// Nested returns a path that descends through the given keys in order
func Nested(keys ...string) Path {
	return Path(keys)
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Lookup walks the path through doc and returns the value at its end.
// ok is false when any step is missing or lands on a non-object.
func (p Path) Lookup(doc map[string]any) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}

	current := doc
	for i, key := range p {
		v, ok := current[key]
		if !ok {
			return nil, false
		}
		if i == len(p)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// Transform maps a looked-up value before comparison
type Transform func(any) any

// Identity leaves values unchanged
func Identity(v any) any {
	return v
}

// Lower lowercases string values and leaves anything else unchanged
func Lower(v any) any {
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return v
}

// AllEqual reports whether every document yields the same transformed value
// at path. Sequences of zero or one documents are trivially equal. If any
// document lacks the path the sequence is not equal.
func AllEqual(docs []map[string]any, path Path, transform Transform) bool {
	if len(docs) < 2 {
		return true
	}
	if transform == nil {
		transform = Identity
	}

	first, ok := path.Lookup(docs[0])
	if !ok {
		return false
	}
	first = transform(first)

	for _, doc := range docs[1:] {
		v, ok := path.Lookup(doc)
		if !ok {
			return false
		}
		if !reflect.DeepEqual(transform(v), first) {
			return false
		}
	}
	return true
}
