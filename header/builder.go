package header

import (
	"mime"

	"github.com/emersion/go-message"
)

type field struct {
	name  string
	value string
}

// Builder collects header fields in the order they should be written and
// produces a message.Header with the fields in that order. Adding a field to
// a message.Header puts it at the top, so building one directly in order is
// awkward.
type Builder struct {
	fields []field
}

// Add appends a field with the value as given.
func (b *Builder) Add(name, value string) {
	b.fields = append(b.fields, field{name, value})
}

// AddText appends a field, RFC 2047 encoding the value if it contains
// characters that cannot appear in a header as-is.
func (b *Builder) AddText(name, value string) {
	b.Add(name, mime.QEncoding.Encode("utf-8", value))
}

// Len returns the number of fields added.
func (b *Builder) Len() int {
	return len(b.fields)
}

// Header returns the fields as a message.Header. Fields appear in the order
// they were added.
func (b *Builder) Header() message.Header {
	var h message.Header
	for i := len(b.fields) - 1; i >= 0; i-- {
		h.Add(b.fields[i].name, b.fields[i].value)
	}
	return h
}

// Prepend returns a copy of h with the builder's fields written above the
// fields already in h, in the order they were added.
func (b *Builder) Prepend(h message.Header) message.Header {
	nh := h.Copy()
	for i := len(b.fields) - 1; i >= 0; i-- {
		nh.Add(b.fields[i].name, b.fields[i].value)
	}
	return nh
}
