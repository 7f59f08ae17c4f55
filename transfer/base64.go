package transfer

import (
	"encoding/base64"
	"io"
)

const defaultBase64LineLength = 76

var defaultBase64LineBreak = []byte{'\r', '\n'}

// lineWriter breaks the encoded output into lines of a fixed length.
type lineWriter struct {
	every int
	acc   int
	lbr   []byte
	w     io.Writer
}

func (lw *lineWriter) Write(b []byte) (int, error) {
	n := 0
	for len(b)+lw.acc > lw.every {
		take := lw.every - lw.acc
		ln, err := lw.w.Write(b[:take])
		n += ln
		if err != nil {
			return n, err
		}

		if _, err := lw.w.Write(lw.lbr); err != nil {
			return n, err
		}

		b = b[take:]
		lw.acc = 0
	}

	ln, err := lw.w.Write(b)
	n += ln
	lw.acc += ln
	return n, err
}

// encoder closes the base64 encoder first so the final quantum is flushed
// before the trailing line break.
type encoder struct {
	enc io.WriteCloser
	lw  *lineWriter
}

func (e *encoder) Write(b []byte) (int, error) {
	return e.enc.Write(b)
}

func (e *encoder) Close() error {
	if err := e.enc.Close(); err != nil {
		return err
	}
	if e.lw.acc == 0 {
		return nil
	}
	_, err := e.lw.w.Write(e.lw.lbr)
	return err
}

// NewBase64Encoder will translate all bytes written to the returned
// io.WriteCloser into base64 encoding and write those to the given io.Writer
// in CRLF-terminated lines of 76 characters.
func NewBase64Encoder(w io.Writer) io.WriteCloser {
	lw := &lineWriter{
		every: defaultBase64LineLength,
		lbr:   defaultBase64LineBreak,
		w:     w,
	}
	return &encoder{base64.NewEncoder(base64.StdEncoding, lw), lw}
}

// NewBase64Decoder will translate all bytes read from the given io.Reader as
// base64 and return the binary data to the returned io.Reader. Line breaks
// and other whitespace in the input are skipped.
func NewBase64Decoder(r io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, &spaceSkipper{r})
}

type spaceSkipper struct {
	r io.Reader
}

func (s *spaceSkipper) Read(p []byte) (int, error) {
	for {
		n, err := s.r.Read(p)
		j := 0
		for _, c := range p[:n] {
			if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
				p[j] = c
				j++
			}
		}
		if j > 0 || err != nil {
			return j, err
		}
	}
}
