// Package decompose turns MIME messages back into mail item trees. Decompose
// gives a tree that mirrors the message structure exactly. Smooth removes the
// redundant nesting from such a tree. Simplify reduces the common shapes of
// message to a text body, an HTML body, and a list of attachments.
package decompose

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"

	"github.com/zostay/eletter/compose"
	"github.com/zostay/eletter/contenttype"
	"github.com/zostay/eletter/encoding"
	"github.com/zostay/eletter/header"
	"github.com/zostay/eletter/mailitem"
)

// Eletter is a decomposed message: the envelope fields and the body as a mail
// item tree.
type Eletter struct {
	compose.Envelope

	Content mailitem.Item
}

// Compose turns the Eletter back into a message.
func (e *Eletter) Compose() (*message.Entity, error) {
	return compose.Compose(e.Content, &e.Envelope)
}

// Parse reads a message and decomposes it. Parts with an unknown charset or
// transfer encoding are kept as they are rather than failing.
func Parse(r io.Reader, opts ...Option) (*Eletter, error) {
	d := newDecomposer(opts)

	e, err := message.ReadWithOptions(r, &message.ReadOptions{
		MaxHeaderBytes: d.maxHeaderBytes,
	})
	if err != nil && !isUnknown(err) {
		return nil, err
	}

	return d.decompose(e)
}

// Decompose turns a parsed message into an Eletter. Only structures that can
// be represented with mail items are supported.
//
// Every part that is not text/plain, text/html, multipart/*, or message/* is
// an attachment. Attachments without a filename or an explicit "attachment"
// disposition are inline.
//
// Details of how the message was encoded are dropped: charset parameters on
// text/* parts, Content-Transfer-Encoding, and MIME-Version. Part headers
// other than Content-Type, Content-Disposition, and Content-ID are dropped.
// Text has its CRLF line endings turned into LF.
//
// The body of the entity is consumed.
func Decompose(e *message.Entity, opts ...Option) (*Eletter, error) {
	return newDecomposer(opts).decompose(e)
}

func (d *decomposer) decompose(e *message.Entity) (*Eletter, error) {
	h := &e.Header

	env := compose.Envelope{
		From:    header.AddressList(h, header.From),
		To:      header.AddressList(h, header.To),
		Cc:      header.AddressList(h, header.Cc),
		Bcc:     header.AddressList(h, header.Bcc),
		ReplyTo: header.AddressList(h, header.ReplyTo),
		Sender:  header.Mailbox(h, header.Sender),
		Date:    header.Time(h, header.Date),
		Headers: header.CustomFrom(h),
	}

	if h.Has(header.Subject) {
		env.Subject = header.Text(h, header.Subject)
		env.EmptySubject = env.Subject == ""
	}

	content, err := d.content(e, 0)
	if err != nil {
		return nil, err
	}

	return &Eletter{Envelope: env, Content: content}, nil
}

// content classifies a part and builds the matching mail item.
func (d *decomposer) content(e *message.Entity, depth int) (mailitem.Item, error) {
	h := &e.Header

	ct, err := contenttype.Parse(h.Get(header.ContentType))
	if err != nil {
		ct = contenttype.MustParse(contenttype.TextPlain)
	}

	disposition, filename := dispositionOf(h, ct)
	contentID := header.ContentIDOf(h)
	if filename != "" && disposition == "" {
		disposition = compose.DispositionAttachment
	}
	inline := disposition != compose.DispositionAttachment

	switch ct.Maintype() {
	case "multipart":
		var mp mailitem.Multipart
		switch ct.Subtype() {
		case "mixed":
			mp = &mailitem.Mixed{ContentID: contentID}
		case "alternative":
			mp = &mailitem.Alternative{ContentID: contentID}
		case "related":
			mp = &mailitem.Related{ContentID: contentID, Start: ct.Parameter(contenttype.Start)}
		default:
			return nil, &DecompositionError{ContentType: ct.MediaType()}
		}

		if d.maxDepth >= 0 && depth >= d.maxDepth {
			return nil, ErrTooDeep
		}

		if err := d.parts(e, mp, depth); err != nil {
			return nil, err
		}

		return mp, nil

	case "message":
		if ct.Subtype() != "rfc822" {
			return nil, &DecompositionError{ContentType: ct.MediaType()}
		}

		body, err := io.ReadAll(e.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPart, err)
		}

		return &mailitem.EmailAttachment{
			Content:   body,
			Filename:  filename,
			Inline:    inline,
			ContentID: contentID,
		}, nil

	case "text":
		body, err := io.ReadAll(e.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPart, err)
		}
		text := strings.ReplaceAll(string(body), "\r\n", "\n")

		if filename != "" ||
			disposition == compose.DispositionAttachment ||
			(ct.Subtype() != "plain" && ct.Subtype() != "html") {
			a, err := mailitem.NewTextAttachment(
				text, filename,
				contenttype.Modify(ct, contenttype.Delete(contenttype.Charset)).String(),
			)
			if err != nil {
				return nil, err
			}
			a.Inline = inline
			a.ContentID = contentID
			return a, nil
		}

		if ct.Subtype() == "plain" {
			return &mailitem.TextBody{Content: text, ContentID: contentID}, nil
		}
		return &mailitem.HTMLBody{Content: text, ContentID: contentID}, nil
	}

	body, err := io.ReadAll(e.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPart, err)
	}

	a, err := mailitem.NewBytesAttachment(body, filename, ct.String())
	if err != nil {
		return nil, err
	}
	a.Inline = inline
	a.ContentID = contentID
	return a, nil
}

// parts decomposes each part of a multipart entity in order and appends it to
// the container.
func (d *decomposer) parts(e *message.Entity, mp mailitem.Multipart, depth int) error {
	mr := e.MultipartReader()
	if mr == nil {
		return fmt.Errorf("%w: multipart body cannot be read", ErrMalformedPart)
	}

	seq := sequenceOf(mp)
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil && !(p != nil && isUnknown(err)) {
			return fmt.Errorf("%w: %w", ErrMalformedPart, err)
		}

		item, err := d.content(p, depth+1)
		if err != nil {
			return err
		}
		seq.Append(item)
	}
}

func sequenceOf(mp mailitem.Multipart) *mailitem.Sequence {
	switch v := mp.(type) {
	case *mailitem.Mixed:
		return &v.Sequence
	case *mailitem.Alternative:
		return &v.Sequence
	case *mailitem.Related:
		return &v.Sequence
	}
	return nil
}

// dispositionOf returns the lower-case disposition, or "" if there is no
// Content-Disposition, and the filename from either the disposition or the
// name parameter of the content type.
func dispositionOf(h *message.Header, ct *contenttype.ContentType) (string, string) {
	var (
		disposition string
		params      map[string]string
	)

	if h.Has(header.ContentDisposition) {
		var err error
		disposition, params, err = h.ContentDisposition()
		if err != nil {
			d, _, _ := strings.Cut(h.Get(header.ContentDisposition), ";")
			disposition = strings.ToLower(strings.TrimSpace(d))
		}
	}

	filename, hasFilename := params["filename"]
	if !hasFilename {
		filename = ct.Parameter("name")
	}

	return disposition, decodeWords(filename)
}

var wordDecoder = &mime.WordDecoder{CharsetReader: encoding.CharsetReader}

// decodeWords decodes RFC 2047 encoded words, which show up in filenames even
// though they are not supposed to.
func decodeWords(s string) string {
	if !strings.Contains(s, "=?") {
		return s
	}

	ds, err := wordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return ds
}

func isUnknown(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}
