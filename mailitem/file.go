package mailitem

import (
	"os"
	"path/filepath"

	"github.com/zostay/eletter/contenttype"
	"github.com/zostay/eletter/encoding"
)

type fileOpts struct {
	contentType string
	charset     string
	inline      bool
}

// FileOption modifies how an attachment is loaded from a file.
type FileOption func(*fileOpts)

// WithContentType sets the content type of the attachment rather than
// guessing it from the filename.
func WithContentType(ct string) FileOption {
	return func(o *fileOpts) {
		o.contentType = ct
	}
}

// WithFileCharset names the character set the file is stored in. It is only
// used by TextAttachmentFromFile. The default is UTF-8.
func WithFileCharset(charset string) FileOption {
	return func(o *fileOpts) {
		o.charset = charset
	}
}

// AsInline marks the attachment as inline.
func AsInline() FileOption {
	return func(o *fileOpts) {
		o.inline = true
	}
}

func makeFileOpts(opts []FileOption) *fileOpts {
	o := &fileOpts{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// guessContentType fills in the content type from the filename unless
// WithContentType was given.
func (o *fileOpts) guessContentType(path string) string {
	if o.contentType == "" {
		o.contentType = contenttype.GuessType(path)
	}
	return o.contentType
}

// TextAttachmentFromFile reads a text attachment from the named file. The
// attachment filename is the base name of the path. The content type is
// guessed from the filename unless WithContentType is given, and it must be
// text/*.
func TextAttachmentFromFile(path string, opts ...FileOption) (*TextAttachment, error) {
	o := makeFileOpts(opts)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content, err := encoding.Decode(o.charset, b)
	if err != nil {
		return nil, err
	}

	a, err := NewTextAttachment(content, filepath.Base(path), o.guessContentType(path))
	if err != nil {
		return nil, err
	}
	a.Inline = o.inline
	return a, nil
}

// BytesAttachmentFromFile reads a binary attachment from the named file. The
// attachment filename is the base name of the path. The content type is
// guessed from the filename unless WithContentType is given.
func BytesAttachmentFromFile(path string, opts ...FileOption) (*BytesAttachment, error) {
	o := makeFileOpts(opts)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	a, err := NewBytesAttachment(b, filepath.Base(path), o.guessContentType(path))
	if err != nil {
		return nil, err
	}
	a.Inline = o.inline
	return a, nil
}

// EmailAttachmentFromFile reads a message attachment from the named file. The
// file must hold a message in RFC 5322 format. The attachment filename is the
// base name of the path. The content type is always message/rfc822, so
// WithContentType fails with ErrNotMessage when given anything else.
// WithFileCharset is ignored.
func EmailAttachmentFromFile(path string, opts ...FileOption) (*EmailAttachment, error) {
	o := makeFileOpts(opts)
	if o.contentType != "" {
		ct, err := contenttype.Parse(o.contentType)
		if err != nil {
			return nil, err
		}
		if !ct.Is(contenttype.MessageRFC822) {
			return nil, ErrNotMessage
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	a := NewEmailAttachment(b, filepath.Base(path))
	a.Inline = o.inline
	return a, nil
}
