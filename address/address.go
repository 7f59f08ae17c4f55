// Package address provides the mailbox and group values found in address
// header fields like From, To, and Cc, along with tools to parse them out of
// header bodies and format them back into header bodies.
package address

import (
	"mime"
	"strings"
)

// specials are the RFC 5322 characters that force a display name to be
// written as a quoted string.
const specials = `()<>@,:;."[]`

// Address is either a *Mailbox or a *Group.
type Address interface {
	// String returns the address formatted for display, without any RFC 2047
	// encoding.
	String() string

	// Name returns the display name, which may be empty.
	Name() string

	isAddress()
}

// Mailbox is a single address with an optional display name.
type Mailbox struct {
	DisplayName string
	Address     string
}

// Group is a named list of mailboxes, as in "friends: a@example.com;". The
// list may be empty.
type Group struct {
	DisplayName string
	Mailboxes   []*Mailbox
}

// List is an ordered list of mailboxes and groups.
type List []Address

var (
	_ Address = (*Mailbox)(nil)
	_ Address = (*Group)(nil)
)

// NewMailbox returns a mailbox for the given display name and addr-spec.
func NewMailbox(displayName, address string) *Mailbox {
	return &Mailbox{DisplayName: displayName, Address: address}
}

// NewGroup returns a group containing the given mailboxes.
func NewGroup(displayName string, mbs ...*Mailbox) *Group {
	if mbs == nil {
		mbs = []*Mailbox{}
	}
	return &Group{DisplayName: displayName, Mailboxes: mbs}
}

func (*Mailbox) isAddress() {}
func (*Group) isAddress()   {}

// Name returns the display name.
func (m *Mailbox) Name() string { return m.DisplayName }

// Name returns the display name.
func (g *Group) Name() string { return g.DisplayName }

// LocalPart returns the portion of the address before the final @.
func (m *Mailbox) LocalPart() string {
	if i := strings.LastIndexByte(m.Address, '@'); i >= 0 {
		return m.Address[:i]
	}
	return m.Address
}

// Domain returns the portion of the address after the final @.
func (m *Mailbox) Domain() string {
	if i := strings.LastIndexByte(m.Address, '@'); i >= 0 {
		return m.Address[i+1:]
	}
	return ""
}

// String formats the mailbox as "Name <local@domain>", or as just the
// address when there is no display name.
func (m *Mailbox) String() string {
	return m.format(false)
}

// String formats the group as "Name: a@example.com, B <b@example.com>;".
func (g *Group) String() string {
	return g.format(false)
}

func (m *Mailbox) format(wire bool) string {
	if m.DisplayName == "" {
		return m.Address
	}
	return formatPhrase(m.DisplayName, wire) + " <" + m.Address + ">"
}

func (g *Group) format(wire bool) string {
	var b strings.Builder
	b.WriteString(formatPhrase(g.DisplayName, wire))
	b.WriteByte(':')
	for i, mb := range g.Mailboxes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(mb.format(wire))
	}
	b.WriteByte(';')
	return b.String()
}

// Addresses returns every mailbox in the list with the group members
// flattened into place.
func (l List) Addresses() []*Mailbox {
	mbs := make([]*Mailbox, 0, len(l))
	for _, a := range l {
		switch a := a.(type) {
		case *Mailbox:
			mbs = append(mbs, a)
		case *Group:
			mbs = append(mbs, a.Mailboxes...)
		}
	}
	return mbs
}

// String is the same as Format(l).
func (l List) String() string {
	return Format(l)
}

// Format joins the addresses for display, leaving non-ASCII text as-is.
//
//	undisclosed recipients:;, luser@example.nil, friends: you@there.net;
func Format(l List) string {
	return join(l, false)
}

// FormatHeader joins the addresses into a header field body suitable for the
// wire: display names with non-ASCII characters are RFC 2047 encoded.
func FormatHeader(l List) string {
	return join(l, true)
}

func join(l List, wire bool) string {
	parts := make([]string, 0, len(l))
	for _, a := range l {
		switch a := a.(type) {
		case *Mailbox:
			parts = append(parts, a.format(wire))
		case *Group:
			parts = append(parts, a.format(wire))
		}
	}
	return strings.Join(parts, ", ")
}

func formatPhrase(s string, wire bool) string {
	if wire && !isASCII(s) {
		return mime.QEncoding.Encode("utf-8", s)
	}
	if strings.ContainsAny(s, specials) {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
