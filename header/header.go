// Package header provides the header field names, parsing helpers, and
// ordered containers used when reading envelope fields out of a message
// header and writing them back in a fixed order.
package header

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/emersion/go-message"

	"github.com/zostay/eletter/address"
)

// These are standard headers defined in RFC 5322 and RFC 2045.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	ContentDisposition      = "Content-Disposition"
	ContentID               = "Content-Id"
	ContentTransferEncoding = "Content-Transfer-Encoding"
	ContentType             = "Content-Type"
	Date                    = "Date"
	From                    = "From"
	MIMEVersion             = "Mime-Version"
	ReplyTo                 = "Reply-To"
	Sender                  = "Sender"
	Subject                 = "Subject"
	To                      = "To"
)

// Even more custom date formats, built from those seen in the wild that the
// usual parsers have trouble with.
const (
	// UnixDateWithEarlyYear is a weird one, eh?
	UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"
)

// standard is the set of header fields that have a place in the envelope or
// that describe the body itself. Names are lower case.
var standard = map[string]struct{}{
	"subject":                   {},
	"from":                      {},
	"to":                        {},
	"cc":                        {},
	"bcc":                       {},
	"reply-to":                  {},
	"sender":                    {},
	"date":                      {},
	"content-type":              {},
	"content-id":                {},
	"content-disposition":       {},
	"content-transfer-encoding": {},
	"mime-version":              {},
}

// IsStandard returns true if the named field is one the envelope handles
// itself rather than passing it through as a custom header.
func IsStandard(name string) bool {
	_, ok := standard[strings.ToLower(name)]
	return ok
}

// ParseTime will parse the given string as a time. It tries RFC 5322 first,
// then a very lenient parser, and then a few odd formats seen in the wild.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return t, fmt.Errorf("time string %q cannot be parsed", body)
}

// FormatTime formats the time for a Date header field.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC1123Z)
}

// Text returns the first value of the named field with RFC 2047 encoded words
// decoded. If decoding fails, the raw value is returned.
func Text(h *message.Header, name string) string {
	s, err := h.Text(name)
	if err != nil {
		return h.Get(name)
	}
	return s
}

// AddressList returns the addresses from every occurrence of the named field,
// in the order they appear.
func AddressList(h *message.Header, name string) address.List {
	l := address.List{}
	for _, v := range h.Values(name) {
		l = append(l, address.ParseList(v)...)
	}
	return l
}

// Mailbox returns the first mailbox in the named field or nil.
func Mailbox(h *message.Header, name string) *address.Mailbox {
	if !h.Has(name) {
		return nil
	}
	return address.ParseMailbox(h.Get(name))
}

// Time returns the time in the named field. It returns the zero time if the
// field is missing or cannot be parsed.
func Time(h *message.Header, name string) time.Time {
	if !h.Has(name) {
		return time.Time{}
	}

	t, err := ParseTime(strings.TrimSpace(h.Get(name)))
	if err != nil {
		return time.Time{}
	}
	return t
}

// ContentIDOf returns the Content-ID with surrounding whitespace removed.
func ContentIDOf(h *message.Header) string {
	return strings.TrimSpace(h.Get(ContentID))
}
