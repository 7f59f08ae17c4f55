package header

import (
	"strings"

	"github.com/emersion/go-message"
)

// Custom holds the header fields that are not part of the envelope. Names are
// lower case. Names remember the order they were first added in and each name
// keeps all of its values in order, duplicates included.
//
// The zero value is ready to use.
type Custom struct {
	names  []string
	values map[string][]string
}

// NewCustom builds a Custom from name/value pairs.
//
//	h := header.NewCustom("X-Mailer", "eletter", "Keywords", "a", "Keywords", "b")
func NewCustom(pairs ...string) Custom {
	var c Custom
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Add(pairs[i], pairs[i+1])
	}
	return c
}

// CustomFrom collects every field in the header that IsStandard rejects, in
// the order they appear. Encoded words are decoded.
func CustomFrom(h *message.Header) Custom {
	var c Custom
	fields := h.Fields()
	for fields.Next() {
		if IsStandard(fields.Key()) {
			continue
		}

		v, err := fields.Text()
		if err != nil {
			v = fields.Value()
		}
		c.Add(fields.Key(), v)
	}
	return c
}

func (c *Custom) init() {
	if c.values == nil {
		c.values = make(map[string][]string)
	}
}

// Add appends a value to the named field.
func (c *Custom) Add(name, value string) {
	c.init()
	n := strings.ToLower(name)
	if _, exists := c.values[n]; !exists {
		c.names = append(c.names, n)
	}
	c.values[n] = append(c.values[n], value)
}

// Set replaces all the values of the named field. A new name goes at the end.
func (c *Custom) Set(name string, values ...string) {
	if len(values) == 0 {
		c.Del(name)
		return
	}

	c.init()
	n := strings.ToLower(name)
	if _, exists := c.values[n]; !exists {
		c.names = append(c.names, n)
	}
	c.values[n] = append([]string(nil), values...)
}

// Del removes the named field.
func (c *Custom) Del(name string) {
	n := strings.ToLower(name)
	if _, exists := c.values[n]; !exists {
		return
	}
	delete(c.values, n)
	for i, k := range c.names {
		if k == n {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
}

// Get returns the first value of the named field or an empty string.
func (c Custom) Get(name string) string {
	vs := c.values[strings.ToLower(name)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns all the values of the named field.
func (c Custom) Values(name string) []string {
	return append([]string(nil), c.values[strings.ToLower(name)]...)
}

// Names returns the field names in order.
func (c Custom) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of distinct names.
func (c Custom) Len() int {
	return len(c.names)
}

// Each calls fn for each value of each name, in order.
func (c Custom) Each(fn func(name, value string)) {
	for _, n := range c.names {
		for _, v := range c.values[n] {
			fn(n, v)
		}
	}
}

// Equal compares names, their order, and values.
func (c Custom) Equal(other Custom) bool {
	if len(c.names) != len(other.names) {
		return false
	}
	for i, n := range c.names {
		if other.names[i] != n {
			return false
		}
		a, b := c.values[n], other.values[n]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}
