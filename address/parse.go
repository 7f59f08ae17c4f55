package address

import (
	"fmt"
	"mime"
	"strings"
	"unicode"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/eletter/encoding"
)

var wordDecoder = &mime.WordDecoder{CharsetReader: encoding.CharsetReader}

// ParseList parses an address header body into a List. Display names have any
// RFC 2047 encoded words decoded.
//
// The body is parsed strictly according to RFC 5322 first. If that fails, it
// falls back to a lenient parser that splits the body on commas and does its
// best with each piece. As such, a badly formatted address field might return
// a weird address value, but it does not return an error.
func ParseList(body string) List {
	if strings.TrimSpace(body) == "" {
		return List{}
	}

	al, err := parseStrict(body)
	if err != nil {
		return parseLenient(body)
	}

	l := make(List, 0, len(al))
	for _, a := range al {
		switch a := a.(type) {
		case *addr.Mailbox:
			l = append(l, fromMailbox(a))
		case *addr.AddrSpec:
			l = append(l, NewMailbox("", a.Address()))
		case *addr.Group:
			g := NewGroup(groupName(a))
			for _, mb := range a.MailboxList() {
				g.Mailboxes = append(g.Mailboxes, fromMailbox(mb))
			}
			l = append(l, g)
		}
	}

	return l
}

// parseStrict runs the RFC 5322 parser. That parser panics on some valid
// inputs, such as a group of bare addr-specs, so a panic is reported as an
// error like any other parse failure.
func parseStrict(body string) (al addr.AddressList, err error) {
	defer func() {
		if r := recover(); r != nil {
			al, err = nil, fmt.Errorf("unable to parse address list: %v", r)
		}
	}()

	return addr.ParseEmailAddressList(body)
}

// ParseMailbox returns the first mailbox found in the header body or nil if
// there are none.
func ParseMailbox(body string) *Mailbox {
	mbs := ParseList(body).Addresses()
	if len(mbs) == 0 {
		return nil
	}
	return mbs[0]
}

// fromMailbox takes the display name from the original text of the mailbox.
// The parsed display name runs the words of an unquoted phrase together.
func fromMailbox(mb *addr.Mailbox) *Mailbox {
	name := ""
	orig := stripComments(mb.OriginalString())
	if i := strings.LastIndexByte(orig, '<'); i >= 0 {
		name = decodePhrase(orig[:i])
	}
	return NewMailbox(name, mb.Address())
}

func groupName(g *addr.Group) string {
	segs := splitOutside(stripComments(g.OriginalString()), ":")
	if len(segs) < 2 {
		return decodePhrase(g.DisplayName())
	}
	return decodePhrase(segs[0].text)
}

// decodePhrase turns a phrase into a display name. Quoted strings are
// unquoted, runs of whitespace become a single space, and RFC 2047 encoded
// words are decoded.
func decodePhrase(s string) string {
	var (
		b       strings.Builder
		quoted  bool
		escaped bool
		space   bool
	)

	write := func(r rune) {
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	for _, r := range strings.TrimSpace(s) {
		switch {
		case escaped:
			escaped = false
			write(r)
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
			write(r)
		case unicode.IsSpace(r):
			space = true
		default:
			write(r)
		}
	}

	dn := b.String()
	dec, err := wordDecoder.DecodeHeader(dn)
	if err != nil {
		return dn
	}
	return dec
}

// We stuff whatever we get into a Mailbox and call it good. Comments are
// dropped. Group syntax is honored as long as the group name is followed by a
// colon and the group ends with a semicolon.
func parseLenient(v string) List {
	l := List{}
	var group *Group

	for _, seg := range splitOutside(v, ",;:") {
		text := strings.TrimSpace(stripComments(seg.text))

		if seg.sep == ':' && group == nil {
			group = NewGroup(decodePhrase(text))
			continue
		}

		if mb := lenientMailbox(text); mb != nil {
			if group != nil {
				group.Mailboxes = append(group.Mailboxes, mb)
			} else {
				l = append(l, mb)
			}
		}

		if seg.sep == ';' && group != nil {
			l = append(l, group)
			group = nil
		}
	}

	if group != nil {
		l = append(l, group)
	}

	return l
}

func lenientMailbox(s string) *Mailbox {
	if s == "" {
		return nil
	}

	if i := strings.LastIndexByte(s, '<'); i >= 0 {
		spec := strings.TrimSuffix(strings.TrimSpace(s[i+1:]), ">")
		return NewMailbox(decodePhrase(s[:i]), strings.TrimSpace(spec))
	}

	parts := strings.Fields(s)
	return NewMailbox(
		decodePhrase(strings.Join(parts[:len(parts)-1], " ")),
		parts[len(parts)-1],
	)
}

type segment struct {
	text string
	sep  byte
}

// splitOutside splits s at any of the given separators that do not appear
// inside a quoted string, an angle-addr, or a comment.
func splitOutside(s, seps string) []segment {
	var (
		segs    []segment
		start   int
		quoted  bool
		escaped bool
		angle   int
		nest    int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && (quoted || nest > 0):
			escaped = true
		case quoted:
			if c == '"' {
				quoted = false
			}
		case c == '"' && nest == 0:
			quoted = true
		case c == '(':
			nest++
		case c == ')' && nest > 0:
			nest--
		case nest > 0:
		case c == '<':
			angle++
		case c == '>' && angle > 0:
			angle--
		case angle == 0 && strings.IndexByte(seps, c) >= 0:
			segs = append(segs, segment{s[start:i], c})
			start = i + 1
		}
	}

	return append(segs, segment{s[start:], 0})
}

func stripComments(s string) string {
	var clean strings.Builder
	nestLevel := 0
	quoted := false
	for _, c := range s {
		switch {
		case c == '"' && nestLevel == 0:
			quoted = !quoted
			clean.WriteRune(c)
		case quoted:
			clean.WriteRune(c)
		case c == '(':
			nestLevel++
		case c == ')':
			nestLevel--
			if nestLevel < 0 {
				nestLevel = 0
				clean.WriteRune(c)
			}
		case nestLevel > 0:
		default:
			clean.WriteRune(c)
		}
	}
	return clean.String()
}
