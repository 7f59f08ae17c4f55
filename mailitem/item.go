// Package mailitem defines the typed tree that a message body is built from.
// Leaves are the bodies and attachments. The three containers hold an ordered
// list of children and render as multipart/mixed, multipart/alternative, and
// multipart/related.
//
// The set of node types is closed: every Item is one of *TextBody, *HTMLBody,
// *TextAttachment, *BytesAttachment, *EmailAttachment, *Mixed, *Alternative,
// or *Related.
package mailitem

import (
	"bytes"
	"errors"
	"io"

	"github.com/emersion/go-message"

	"github.com/zostay/eletter/contenttype"
)

// Errors returned by item constructors and container methods.
var (
	// ErrNotText is returned when a TextAttachment is given a content type
	// that is not text/*.
	ErrNotText = errors.New("content type must be text/*")

	// ErrNotMessage is returned by EmailAttachmentFromFile when given a
	// content type other than message/rfc822.
	ErrNotMessage = errors.New("content type must be message/rfc822")

	// ErrIndexOutOfRange is returned by container methods given an index
	// past either end of the container.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotFound is returned by Remove when no child equals the given item.
	ErrNotFound = errors.New("item not found")
)

// Default content types of the attachments that have one.
const (
	DefaultTextContentType  = contenttype.TextPlain
	DefaultBytesContentType = contenttype.ApplicationOctetStream
)

// Item is a node in a message body tree.
type Item interface {
	// GetContentID returns the Content-ID of the node or an empty string.
	GetContentID() string

	isItem()
}

// Attachment is implemented by *TextAttachment, *BytesAttachment, and
// *EmailAttachment.
type Attachment interface {
	Item

	// GetFilename returns the filename or an empty string if there is none.
	GetFilename() string

	// IsInline returns true if the attachment is meant to be displayed as part
	// of the message rather than offered as a download.
	IsInline() bool

	isAttachment()
}

// TextBody is a text/plain body.
type TextBody struct {
	Content   string
	ContentID string
}

// HTMLBody is a text/html body.
type HTMLBody struct {
	Content   string
	ContentID string
}

// TextAttachment is a textual attachment. Its content type always has a
// maintype of "text".
type TextAttachment struct {
	Content   string
	Filename  string
	Inline    bool
	ContentID string

	contentType string
	ct          *contenttype.ContentType
}

// BytesAttachment is a binary attachment of any content type.
type BytesAttachment struct {
	Content   []byte
	Filename  string
	Inline    bool
	ContentID string

	contentType string
	ct          *contenttype.ContentType
}

// EmailAttachment is an attached message/rfc822 message. Content holds the
// message as it would appear on the wire.
type EmailAttachment struct {
	Content   []byte
	Filename  string
	Inline    bool
	ContentID string
}

var (
	_ Item       = (*TextBody)(nil)
	_ Item       = (*HTMLBody)(nil)
	_ Attachment = (*TextAttachment)(nil)
	_ Attachment = (*BytesAttachment)(nil)
	_ Attachment = (*EmailAttachment)(nil)
)

// NewTextBody returns a text/plain body.
func NewTextBody(content string) *TextBody {
	return &TextBody{Content: content}
}

// NewHTMLBody returns a text/html body.
func NewHTMLBody(content string) *HTMLBody {
	return &HTMLBody{Content: content}
}

// NewTextAttachment returns a text attachment. If contentType is empty,
// "text/plain" is used. It fails if the content type cannot be parsed or is
// not text/*.
func NewTextAttachment(content, filename, contentType string) (*TextAttachment, error) {
	a := &TextAttachment{Content: content, Filename: filename}
	if contentType == "" {
		contentType = DefaultTextContentType
	}
	if err := a.SetContentType(contentType); err != nil {
		return nil, err
	}
	return a, nil
}

// NewBytesAttachment returns a binary attachment. If contentType is empty,
// "application/octet-stream" is used. It fails if the content type cannot be
// parsed.
func NewBytesAttachment(content []byte, filename, contentType string) (*BytesAttachment, error) {
	a := &BytesAttachment{Content: content, Filename: filename}
	if contentType == "" {
		contentType = DefaultBytesContentType
	}
	if err := a.SetContentType(contentType); err != nil {
		return nil, err
	}
	return a, nil
}

// NewEmailAttachment returns an attachment holding the given message bytes.
func NewEmailAttachment(content []byte, filename string) *EmailAttachment {
	return &EmailAttachment{Content: content, Filename: filename}
}

// NewEmailAttachmentFromEntity serializes a parsed message and attaches it.
// This consumes the body of the entity.
func NewEmailAttachmentFromEntity(e *message.Entity, filename string) (*EmailAttachment, error) {
	buf := &bytes.Buffer{}
	if err := e.WriteTo(buf); err != nil {
		return nil, err
	}
	return NewEmailAttachment(buf.Bytes(), filename), nil
}

func (*TextBody) isItem()        {}
func (*HTMLBody) isItem()        {}
func (*TextAttachment) isItem()  {}
func (*BytesAttachment) isItem() {}
func (*EmailAttachment) isItem() {}

func (*TextAttachment) isAttachment()  {}
func (*BytesAttachment) isAttachment() {}
func (*EmailAttachment) isAttachment() {}

// GetContentID returns the Content-ID.
func (b *TextBody) GetContentID() string { return b.ContentID }

// GetContentID returns the Content-ID.
func (b *HTMLBody) GetContentID() string { return b.ContentID }

// GetContentID returns the Content-ID.
func (a *TextAttachment) GetContentID() string { return a.ContentID }

// GetContentID returns the Content-ID.
func (a *BytesAttachment) GetContentID() string { return a.ContentID }

// GetContentID returns the Content-ID.
func (a *EmailAttachment) GetContentID() string { return a.ContentID }

// GetFilename returns the filename.
func (a *TextAttachment) GetFilename() string { return a.Filename }

// GetFilename returns the filename.
func (a *BytesAttachment) GetFilename() string { return a.Filename }

// GetFilename returns the filename.
func (a *EmailAttachment) GetFilename() string { return a.Filename }

// IsInline returns the Inline flag.
func (a *TextAttachment) IsInline() bool { return a.Inline }

// IsInline returns the Inline flag.
func (a *BytesAttachment) IsInline() bool { return a.Inline }

// IsInline returns the Inline flag.
func (a *EmailAttachment) IsInline() bool { return a.Inline }

// ContentType returns the content type as it was given.
func (a *TextAttachment) ContentType() string {
	if a.ct == nil {
		return DefaultTextContentType
	}
	return a.contentType
}

// ParsedContentType returns the content type parsed.
func (a *TextAttachment) ParsedContentType() *contenttype.ContentType {
	if a.ct == nil {
		return contenttype.MustParse(DefaultTextContentType)
	}
	return a.ct
}

// SetContentType parses and checks the content type before setting it. On
// error, the attachment is left unchanged.
func (a *TextAttachment) SetContentType(s string) error {
	ct, err := contenttype.Parse(s)
	if err != nil {
		return err
	}
	if ct.Maintype() != "text" {
		return ErrNotText
	}
	a.contentType, a.ct = s, ct
	return nil
}

// ContentType returns the content type as it was given.
func (a *BytesAttachment) ContentType() string {
	if a.ct == nil {
		return DefaultBytesContentType
	}
	return a.contentType
}

// ParsedContentType returns the content type parsed.
func (a *BytesAttachment) ParsedContentType() *contenttype.ContentType {
	if a.ct == nil {
		return contenttype.MustParse(DefaultBytesContentType)
	}
	return a.ct
}

// SetContentType parses the content type before setting it. On error, the
// attachment is left unchanged.
func (a *BytesAttachment) SetContentType(s string) error {
	ct, err := contenttype.Parse(s)
	if err != nil {
		return err
	}
	a.contentType, a.ct = s, ct
	return nil
}

// Entity parses the attached message.
func (a *EmailAttachment) Entity() (*message.Entity, error) {
	return message.Read(bytes.NewReader(a.Content))
}

// Reader returns a reader over the raw attached message.
func (a *EmailAttachment) Reader() io.Reader {
	return bytes.NewReader(a.Content)
}
