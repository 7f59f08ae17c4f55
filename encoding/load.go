// Package encoding provides the character set conversions used to read and
// write message text in charsets other than UTF-8. Importing it installs a
// charset reader into github.com/emersion/go-message, so text parts in any
// charset known to golang.org/x/text are decoded to UTF-8 when parsed.
package encoding

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	"golang.org/x/text/encoding"
	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownCharset is returned when the named charset cannot be found.
var ErrUnknownCharset = errors.New("unknown charset")

func init() {
	message.CharsetReader = CharsetReader
}

// Lookup finds the encoding for the named charset. It tries the MIME names
// registered with IANA first, then all IANA names, and finally the labels
// browsers use, which cover the common misspellings seen in the wild.
func Lookup(charset string) (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return unicode.UTF8, nil
	}

	if e, err := ianaindex.MIME.Encoding(name); err == nil && e != nil {
		return e, nil
	}

	if e, err := ianaindex.IANA.Encoding(name); err == nil && e != nil {
		return e, nil
	}

	if e, err := htmlindex.Get(name); err == nil && e != nil {
		return e, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, charset)
}

// CharsetReader returns a reader that converts input from the named charset
// to UTF-8.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	e, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	return e.NewDecoder().Reader(input), nil
}

// Encode converts the UTF-8 string s into the named charset.
func Encode(charset, s string) ([]byte, error) {
	e, err := Lookup(charset)
	if err != nil {
		return nil, err
	}

	es, err := e.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}

	return []byte(es), nil
}

// Decode converts b from the named charset into a UTF-8 string.
func Decode(charset string, b []byte) (string, error) {
	e, err := Lookup(charset)
	if err != nil {
		return "", err
	}

	eb, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(eb), nil
}
