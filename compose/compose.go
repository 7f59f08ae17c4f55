// Package compose turns mail item trees into MIME messages.
package compose

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/emersion/go-message"

	"github.com/zostay/eletter/address"
	"github.com/zostay/eletter/header"
	"github.com/zostay/eletter/mailitem"
)

// ErrNoBody is returned by Simple and BuildSimple when neither a text nor an
// HTML body is given.
var ErrNoBody = errors.New("at least one of text and html must be set")

// Envelope holds the top-level header fields of a message. Empty fields are
// left out of the message.
type Envelope struct {
	Subject string

	// EmptySubject writes a Subject header even when Subject is empty.
	EmptySubject bool

	From    address.List
	To      address.List
	Cc      address.List
	Bcc     address.List
	ReplyTo address.List
	Sender  *address.Mailbox
	Date    time.Time

	// Headers are written after all the other envelope fields, in order.
	Headers header.Custom
}

// builder returns the envelope fields in the order they are written: Subject,
// From, To, Cc, Bcc, Reply-To, Sender, Date, then the custom headers.
func (env *Envelope) builder() *header.Builder {
	b := &header.Builder{}
	if env == nil {
		return b
	}

	if env.Subject != "" || env.EmptySubject {
		b.AddText(header.Subject, env.Subject)
	}

	for _, f := range []struct {
		name string
		list address.List
	}{
		{header.From, env.From},
		{header.To, env.To},
		{header.Cc, env.Cc},
		{header.Bcc, env.Bcc},
		{header.ReplyTo, env.ReplyTo},
	} {
		if len(f.list) > 0 {
			b.Add(f.name, address.FormatHeader(f.list))
		}
	}

	if env.Sender != nil {
		b.Add(header.Sender, address.FormatHeader(address.List{env.Sender}))
	}

	if !env.Date.IsZero() {
		b.Add(header.Date, header.FormatTime(env.Date))
	}

	env.Headers.Each(func(name, value string) {
		b.AddText(name, value)
	})

	return b
}

// Write renders the content and writes it as a complete message with the
// envelope fields on top.
func Write(w io.Writer, content mailitem.Item, env *Envelope) error {
	p, err := Render(content)
	if err != nil {
		return err
	}

	b := env.builder()
	b.Add(header.MIMEVersion, "1.0")
	p.Header = b.Prepend(p.Header)

	return p.Encode(w)
}

// Compose renders the content into a message with the envelope fields on top.
// The returned entity is read back from the rendered bytes, so it looks just
// like a message that came off the wire.
func Compose(content mailitem.Item, env *Envelope) (*message.Entity, error) {
	buf := &bytes.Buffer{}
	if err := Write(buf, content, env); err != nil {
		return nil, err
	}
	return message.Read(buf)
}

// BuildSimple builds the usual message body tree: the text and HTML bodies as
// alternatives, followed by the attachments. A nil text or html means no body
// of that kind, but an empty string is an empty body. It returns ErrNoBody if
// both are nil.
func BuildSimple(text, html *string, attachments ...mailitem.Attachment) (mailitem.Item, error) {
	var content mailitem.Item
	if text != nil {
		content = mailitem.NewTextBody(*text)
	}

	if html != nil {
		hb := mailitem.NewHTMLBody(*html)
		if content == nil {
			content = hb
		} else {
			content = mailitem.AlternateInPlace(content, hb)
		}
	}

	if content == nil {
		return nil, ErrNoBody
	}

	for _, a := range attachments {
		content = mailitem.MixInPlace(content, a)
	}

	return content, nil
}

// Simple composes a message from a text body, an HTML body, and attachments.
// See BuildSimple.
func Simple(
	text, html *string,
	attachments []mailitem.Attachment,
	env *Envelope,
) (*message.Entity, error) {
	content, err := BuildSimple(text, html, attachments...)
	if err != nil {
		return nil, err
	}
	return Compose(content, env)
}
