// Package transfer contains the Content-transfer-encoding names and the
// encoders used when writing message parts. Only quoted-printable and base64
// actually change the bytes; 7bit, 8bit, and binary leave them as-is.
//
// Decoding on the way in is handled by the message parser, so the Decoder
// half of each Transcoding is mostly useful for checking output.
package transfer

import (
	"bytes"
	"io"
	"mime/quotedprintable"
	"strings"

	"github.com/emersion/go-message"
)

const (
	None            = ""                 // bytes will be left as-is
	Bit7            = "7bit"             // bytes will be left as-is
	Bit8            = "8bit"             // bytes will be left as-is
	Binary          = "binary"           // bytes will be left as-is
	QuotedPrintable = "quoted-printable" // bytes will be transformed between quoted-printable and binary data
	Base64          = "base64"           // bytes will be transformed between base64 and binary data
)

// HeaderName is the name of the header field that names the encoding.
const HeaderName = "Content-Transfer-Encoding"

// maxLineLength is the longest line RFC 5322 permits, excluding the CRLF.
const maxLineLength = 998

// Transcoding is a pair of functions that can be used to transform to and from
// a transfer encoding.
type Transcoding struct {
	// Encoder returns an io.WriteCloser, which will encode binary data and
	// write the encoded form to the given io.Writer. You must call Close() on
	// the returned io.WriteCloser when you are finished.
	Encoder func(io.Writer) io.WriteCloser

	// Decoder returns an io.Reader, which will read from the given io.Reader
	// when read and decode the encoded data back into binary form.
	Decoder func(io.Reader) io.Reader
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// AsIsTranscoder passes bytes through untouched in both directions.
var AsIsTranscoder = Transcoding{
	Encoder: func(w io.Writer) io.WriteCloser { return nopCloser{w} },
	Decoder: func(r io.Reader) io.Reader { return r },
}

// Transcodings defines the supported Content-transfer-encodings and how to
// handle them. The quoted-printable encoder writes line breaks as CRLF.
var Transcodings = map[string]Transcoding{
	None:   AsIsTranscoder,
	Bit7:   AsIsTranscoder,
	Bit8:   AsIsTranscoder,
	Binary: AsIsTranscoder,
	QuotedPrintable: {
		Encoder: func(w io.Writer) io.WriteCloser { return quotedprintable.NewWriter(w) },
		Decoder: func(r io.Reader) io.Reader { return quotedprintable.NewReader(r) },
	},
	Base64: {NewBase64Encoder, NewBase64Decoder},
}

// ApplyTransferEncoding checks the given header to see if transfer encoding
// ought to be performed. It returns an io.WriteCloser that will write the
// encoding (or just pass data through if no encoding is necessary).
//
// You must call Close() on the returned io.WriteCloser when you are finished
// writing.
func ApplyTransferEncoding(h *message.Header, w io.Writer) io.WriteCloser {
	if tc, hasCode := Transcodings[encodingOf(h)]; hasCode {
		return tc.Encoder(w)
	}
	return AsIsTranscoder.Encoder(w)
}

// ApplyTransferDecoding returns an io.Reader that will decode incoming bytes
// according to the transfer encoding named in the given header. Multipart
// bodies are never transfer encoded, so they are returned as-is.
func ApplyTransferDecoding(h *message.Header, r io.Reader) io.Reader {
	if mt, _, err := h.ContentType(); err == nil && isMultipart(mt) {
		return r
	}

	if tc, hasCode := Transcodings[encodingOf(h)]; hasCode {
		return tc.Decoder(r)
	}
	return r
}

func encodingOf(h *message.Header) string {
	return strings.ToLower(strings.TrimSpace(h.Get(HeaderName)))
}

func isMultipart(mt string) bool {
	return strings.HasPrefix(mt, "multipart/")
}

// ForText picks the encoding for a text body that has already been converted
// to its charset. Clean ASCII with short lines needs no encoding. Mostly
// ASCII text is made quoted-printable so it stays readable. Anything else
// becomes base64.
func ForText(b []byte) string {
	high, long := scan(b)
	switch {
	case high == 0 && !long:
		return Bit7
	case high*4 <= len(b):
		return QuotedPrintable
	default:
		return Base64
	}
}

// ForBinary picks the encoding for an opaque body, which is always base64.
func ForBinary([]byte) string {
	return Base64
}

// ForMessage picks the encoding for an embedded message/rfc822 part. RFC 2046
// forbids anything other than 7bit, 8bit, or binary there.
func ForMessage(b []byte) string {
	high, long := scan(b)
	switch {
	case long:
		return Binary
	case high > 0:
		return Bit8
	default:
		return Bit7
	}
}

// scan counts the bytes that are not safe for 7bit and notes whether any line
// exceeds the length limit.
func scan(b []byte) (high int, long bool) {
	for _, line := range bytes.Split(b, []byte{'\n'}) {
		if len(bytes.TrimSuffix(line, []byte{'\r'})) > maxLineLength {
			long = true
		}
		for _, c := range line {
			if c >= 0x80 || c == 0 {
				high++
			}
		}
	}
	return high, long
}
