package extract

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/jonesrussell/north-cloud/procrawler/internal/normalize"
)

var errTrailingData = errors.New("unexpected data after JSON value")

// decodeJSON parses one JSON document. Numbers stay json.Number so large ids
// keep every digit.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

// node is one position in a decoded JSON document: either Found with a value or Absent.
// Every accessor on an absent node returns another absent node or nil, so deep
// lookups never need presence checks at each level.
type node struct {
	value any
	found bool
}

func found(v any) node {
	if v == nil {
		return node{}
	}
	return node{value: v, found: true}
}

var absent = node{}

// Get returns the member key of an object node.
func (n node) Get(key string) node {
	obj, ok := n.Object()
	if !ok {
		return absent
	}
	return found(obj[key])
}

// Path walks nested object members.
func (n node) Path(keys ...string) node {
	cur := n
	for _, k := range keys {
		cur = cur.Get(k)
		if !cur.found {
			return absent
		}
	}
	return cur
}

// Object returns the node as a JSON object.
func (n node) Object() (map[string]any, bool) {
	if !n.found {
		return nil, false
	}
	obj, ok := n.value.(map[string]any)
	return obj, ok
}

// Array returns the node as a JSON array.
func (n node) Array() ([]any, bool) {
	if !n.found {
		return nil, false
	}
	arr, ok := n.value.([]any)
	return arr, ok
}

// String returns a non-empty scalar rendering of the node.
func (n node) String() *string {
	if !n.found {
		return nil
	}
	return normalize.StringFrom(n.value)
}

// Float returns the node as a number.
func (n node) Float() *float64 {
	if !n.found {
		return nil
	}
	return normalize.FloatFrom(n.value)
}

// Int returns the node as an integer.
func (n node) Int() *int {
	if !n.found {
		return nil
	}
	return normalize.IntFrom(n.value)
}

// firstString returns the first member among keys that has a non-empty string value.
func (n node) firstString(keys ...string) *string {
	for _, k := range keys {
		if s := n.Get(k).String(); s != nil {
			return s
		}
	}
	return nil
}

func (n node) firstFloat(keys ...string) *float64 {
	for _, k := range keys {
		if f := n.Get(k).Float(); f != nil {
			return f
		}
	}
	return nil
}

func (n node) firstInt(keys ...string) *int {
	for _, k := range keys {
		if i := n.Get(k).Int(); i != nil {
			return i
		}
	}
	return nil
}

// coalesce returns the first non-nil pointer.
func coalesce[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
