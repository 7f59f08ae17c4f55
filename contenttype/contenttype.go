// Package contenttype parses and formats MIME Content-type header values. A
// ContentType is immutable: use Modify() to derive a new value with changed
// parameters.
package contenttype

import (
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
	"unicode/utf8"
)

// Names of parameters that get special treatment.
const (
	// Charset is the name of the charset parameter on text/* types.
	Charset = "charset"

	// Boundary is the name of the boundary parameter on multipart/* types.
	Boundary = "boundary"

	// Type is the name of the type parameter on multipart/related.
	Type = "type"

	// Start is the name of the start parameter on multipart/related.
	Start = "start"
)

// Common media types.
const (
	TextPlain              = "text/plain"
	TextHTML               = "text/html"
	ApplicationOctetStream = "application/octet-stream"
	MessageRFC822          = "message/rfc822"
)

var (
	// ErrInvalid is matched by every ParseError via errors.Is.
	ErrInvalid = errors.New("invalid content type")

	errNoSubtype = errors.New("media type must be of the form maintype/subtype")
)

// ParseError is returned when a Content-type value cannot be parsed. It
// carries the offending string.
type ParseError struct {
	Value string
	Cause error
}

// Error returns the offending value and the reason it was rejected.
func (e *ParseError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("invalid content type %q", e.Value)
	}
	return fmt.Sprintf("invalid content type %q: %v", e.Value, e.Cause)
}

// Unwrap returns the underlying parse failure.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports true for ErrInvalid.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalid
}

// ContentType is a parsed media type with its parameters. Parameter names are
// lower case and remember the order they were given in. Two ContentTypes are
// Equal regardless of that order.
type ContentType struct {
	maintype string
	subtype  string
	names    []string
	params   map[string]string
}

// Parse parses a Content-type header field body. RFC 2231 extended and
// continued parameters are decoded into plain string values.
func Parse(s string) (*ContentType, error) {
	mt, ps, err := mime.ParseMediaType(s)
	if err != nil {
		return nil, &ParseError{Value: s, Cause: err}
	}

	maintype, subtype, ok := strings.Cut(mt, "/")
	if !ok || maintype == "" || subtype == "" {
		return nil, &ParseError{Value: s, Cause: errNoSubtype}
	}

	return &ContentType{
		maintype: maintype,
		subtype:  subtype,
		names:    paramOrder(s, ps),
		params:   ps,
	}, nil
}

// MustParse is like Parse, but panics on error. It is intended for constants.
func MustParse(s string) *ContentType {
	ct, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ct
}

// New builds a ContentType from its pieces. Parameters are added in the order
// given by names; any parameter in params not named is appended in sorted
// order. The maintype and subtype are validated the same way Parse does it.
func New(maintype, subtype string, params map[string]string, names ...string) (*ContentType, error) {
	mt := maintype + "/" + subtype
	if _, _, err := mime.ParseMediaType(mt); err != nil {
		return nil, &ParseError{Value: mt, Cause: err}
	}
	if maintype == "" || subtype == "" || strings.Contains(subtype, "/") {
		return nil, &ParseError{Value: mt, Cause: errNoSubtype}
	}

	ct := &ContentType{
		maintype: strings.ToLower(maintype),
		subtype:  strings.ToLower(subtype),
		params:   make(map[string]string, len(params)),
	}

	for _, n := range names {
		if v, ok := params[n]; ok {
			ct.set(n, v)
		}
	}

	rest := make([]string, 0, len(params))
	for n := range params {
		if _, done := ct.params[strings.ToLower(n)]; !done {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	for _, n := range rest {
		ct.set(n, params[n])
	}

	return ct, nil
}

// Assemble builds a Content-type header field body from a maintype, subtype,
// and parameters. It fails with a ParseError carrying "maintype/subtype" if
// those do not form a valid media type.
func Assemble(maintype, subtype string, params map[string]string) (string, error) {
	ct, err := New(maintype, subtype, params)
	if err != nil {
		return "", err
	}
	return ct.String(), nil
}

// paramOrder recovers the order the parameters appeared in the raw header
// value, since mime.ParseMediaType hands back a map.
func paramOrder(s string, ps map[string]string) []string {
	names := make([]string, 0, len(ps))
	seen := make(map[string]bool, len(ps))

	add := func(n string) {
		if _, ok := ps[n]; ok && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	for _, seg := range splitParams(s) {
		k, _, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if i := strings.IndexByte(k, '*'); i >= 0 {
			k = k[:i]
		}
		add(k)
	}

	rest := make([]string, 0, len(ps)-len(names))
	for k := range ps {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// splitParams splits a header value on the semicolons outside of quoted
// strings and drops the leading media type.
func splitParams(s string) []string {
	var (
		segs    []string
		start   int
		quoted  bool
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ';' && !quoted:
			segs = append(segs, s[start:i])
			start = i + 1
		}
	}
	segs = append(segs, s[start:])
	return segs[1:]
}

func (ct *ContentType) set(name, value string) {
	n := strings.ToLower(name)
	if _, exists := ct.params[n]; !exists {
		ct.names = append(ct.names, n)
	}
	ct.params[n] = value
}

func (ct *ContentType) del(name string) {
	n := strings.ToLower(name)
	if _, exists := ct.params[n]; !exists {
		return
	}
	delete(ct.params, n)
	for i, k := range ct.names {
		if k == n {
			ct.names = append(ct.names[:i], ct.names[i+1:]...)
			break
		}
	}
}

// Modifier is a change to apply to a ContentType with Modify().
type Modifier func(*ContentType)

// Set is a Modifier that sets a parameter. A new parameter goes at the end.
func Set(name, value string) Modifier {
	return func(ct *ContentType) { ct.set(name, value) }
}

// Delete is a Modifier that removes a parameter.
func Delete(name string) Modifier {
	return func(ct *ContentType) { ct.del(name) }
}

// Modify clones ct, applies the changes, and returns the clone.
//
//	ct := contenttype.MustParse("text/plain; charset=latin1; format=flowed")
//	nct := contenttype.Modify(ct, contenttype.Delete(contenttype.Charset))
func Modify(ct *ContentType, changes ...Modifier) *ContentType {
	c := ct.Clone()
	for _, change := range changes {
		change(c)
	}
	return c
}

// Maintype returns the part before the slash, e.g., "text".
func (ct *ContentType) Maintype() string {
	return ct.maintype
}

// Subtype returns the part after the slash, e.g., "plain".
func (ct *ContentType) Subtype() string {
	return ct.subtype
}

// MediaType returns "maintype/subtype" without parameters.
func (ct *ContentType) MediaType() string {
	return ct.maintype + "/" + ct.subtype
}

// Is returns true if the media type matches the given "maintype/subtype"
// without regard to case.
func (ct *ContentType) Is(mediaType string) bool {
	return strings.EqualFold(ct.MediaType(), mediaType)
}

// Parameter returns the value of the named parameter or an empty string.
func (ct *ContentType) Parameter(name string) string {
	return ct.params[strings.ToLower(name)]
}

// HasParameter returns true if the named parameter is set, even to an empty
// string.
func (ct *ContentType) HasParameter(name string) bool {
	_, ok := ct.params[strings.ToLower(name)]
	return ok
}

// Charset returns the charset parameter.
func (ct *ContentType) Charset() string {
	return ct.Parameter(Charset)
}

// ParameterNames returns the parameter names in order.
func (ct *ContentType) ParameterNames() []string {
	names := make([]string, len(ct.names))
	copy(names, ct.names)
	return names
}

// Parameters returns a copy of the parameters as a map.
func (ct *ContentType) Parameters() map[string]string {
	ps := make(map[string]string, len(ct.params))
	for k, v := range ct.params {
		ps[k] = v
	}
	return ps
}

// Equal compares media type and parameters. Parameter order does not matter.
func (ct *ContentType) Equal(other *ContentType) bool {
	if ct == nil || other == nil {
		return ct == other
	}
	if ct.maintype != other.maintype || ct.subtype != other.subtype {
		return false
	}
	if len(ct.params) != len(other.params) {
		return false
	}
	for k, v := range ct.params {
		if ov, ok := other.params[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (ct *ContentType) Clone() *ContentType {
	c := &ContentType{
		maintype: ct.maintype,
		subtype:  ct.subtype,
		names:    make([]string, len(ct.names)),
		params:   make(map[string]string, len(ct.params)),
	}
	copy(c.names, ct.names)
	for k, v := range ct.params {
		c.params[k] = v
	}
	return c
}

// String formats the ContentType for use as a header field body. Token values
// are written bare, other ASCII values are quoted, and values containing
// non-ASCII characters use the RFC 2231 extended form with UTF-8.
func (ct *ContentType) String() string {
	var b strings.Builder
	b.WriteString(ct.MediaType())
	for _, n := range ct.names {
		b.WriteString("; ")
		writeParam(&b, n, ct.params[n])
	}
	return b.String()
}

// Bytes returns String() as a slice of bytes.
func (ct *ContentType) Bytes() []byte {
	return []byte(ct.String())
}

func writeParam(b *strings.Builder, name, value string) {
	switch {
	case value != "" && isToken(value):
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(value)
	case isASCII(value):
		b.WriteString(name)
		b.WriteString(`="`)
		for i := 0; i < len(value); i++ {
			if value[i] == '"' || value[i] == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(value[i])
		}
		b.WriteByte('"')
	default:
		b.WriteString(name)
		b.WriteString("*=utf-8''")
		for i := 0; i < len(value); i++ {
			c := value[i]
			if c < utf8.RuneSelf && isTokenChar(rune(c)) && c != '%' && c != '\'' && c != '*' {
				b.WriteByte(c)
				continue
			}
			fmt.Fprintf(b, "%%%02X", c)
		}
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf || s[i] < 0x20 && s[i] != '\t' || s[i] == 0x7f {
			return false
		}
	}
	return true
}

func isToken(s string) bool {
	for _, r := range s {
		if !isTokenChar(r) {
			return false
		}
	}
	return true
}

func isTokenChar(r rune) bool {
	return r > 0x20 && r < 0x7f && !strings.ContainsRune(`()<>@,;:\"/[]?=`, r)
}
