package compose

import (
	"crypto/rand"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/textproto"

	"github.com/zostay/eletter/contenttype"
	"github.com/zostay/eletter/encoding"
	"github.com/zostay/eletter/header"
	"github.com/zostay/eletter/mailitem"
	"github.com/zostay/eletter/transfer"
)

// Dispositions written to the Content-Disposition of attachments.
const (
	DispositionInline     = "inline"
	DispositionAttachment = "attachment"
)

// DefaultCharset is used for text bodies and for text attachments with no
// charset parameter.
const DefaultCharset = "utf-8"

// EmptyMultipartError is returned when rendering a container with no children.
type EmptyMultipartError struct {
	// Kind is mailitem.KindMixed, mailitem.KindAlternative, or
	// mailitem.KindRelated.
	Kind string
}

// Error returns "cannot compose empty " followed by the kind.
func (e *EmptyMultipartError) Error() string {
	return "cannot compose empty " + e.Kind
}

// Part is a rendered item: a header and either the content of a leaf or the
// rendered parts of a container.
type Part struct {
	Header message.Header

	data     []byte
	parts    []*Part
	boundary string
}

// Encode writes the header followed by the body. The body of a leaf is
// written in the transfer encoding named by its header.
func (p *Part) Encode(w io.Writer) error {
	if err := textproto.WriteHeader(w, p.Header.Header); err != nil {
		return err
	}
	return p.encodeBody(w)
}

func (p *Part) encodeBody(w io.Writer) error {
	if p.parts == nil {
		tw := transfer.ApplyTransferEncoding(&p.Header, w)
		if _, err := tw.Write(p.data); err != nil {
			return err
		}
		return tw.Close()
	}

	mw := textproto.NewMultipartWriter(w)
	if err := mw.SetBoundary(p.boundary); err != nil {
		return err
	}

	for _, c := range p.parts {
		pw, err := mw.CreatePart(c.Header.Header)
		if err != nil {
			return err
		}

		if err := c.encodeBody(pw); err != nil {
			return err
		}
	}

	return mw.Close()
}

// Render turns an item tree into a MIME part.
//
// Text is written with CRLF line endings in the charset named by the content
// type, UTF-8 by default. Each part picks the transfer encoding its content
// needs. Every part with a Content-ID gets a Content-ID header.
func Render(item mailitem.Item) (*Part, error) {
	var (
		b   header.Builder
		p   = &Part{}
		err error
	)

	switch v := item.(type) {
	case *mailitem.TextBody:
		p.data, err = renderText(&b, contenttype.MustParse(contenttype.TextPlain), v.Content)
	case *mailitem.HTMLBody:
		p.data, err = renderText(&b, contenttype.MustParse(contenttype.TextHTML), v.Content)
	case *mailitem.TextAttachment:
		p.data, err = renderText(&b, v.ParsedContentType(), v.Content)
		addDisposition(&b, v)
	case *mailitem.BytesAttachment:
		p.data = v.Content
		b.Add(header.ContentType, v.ParsedContentType().String())
		b.Add(header.ContentTransferEncoding, transfer.ForBinary(v.Content))
		addDisposition(&b, v)
	case *mailitem.EmailAttachment:
		p.data = v.Content
		b.Add(header.ContentType, contenttype.MessageRFC822)
		b.Add(header.ContentTransferEncoding, transfer.ForMessage(v.Content))
		addDisposition(&b, v)
	case *mailitem.Mixed:
		err = renderMultipart(&b, p, v, nil)
	case *mailitem.Alternative:
		err = renderMultipart(&b, p, v, nil)
	case *mailitem.Related:
		err = renderMultipart(&b, p, v, relatedParams(v))
	default:
		err = fmt.Errorf("cannot compose item of type %T", item)
	}

	if err != nil {
		return nil, err
	}

	if cid := item.GetContentID(); cid != "" {
		b.Add(header.ContentID, cid)
	}

	p.Header = b.Header()
	return p, nil
}

// renderText adds the header fields for a text part of the given content
// type and returns the encoded text. The charset parameter decides how the
// text is encoded and is written first.
func renderText(
	b *header.Builder,
	ct *contenttype.ContentType,
	content string,
) ([]byte, error) {
	charset := ct.Charset()
	if charset == "" {
		charset = DefaultCharset
	}

	data, err := encoding.Encode(charset, toCRLF(content))
	if err != nil {
		return nil, err
	}

	params := ct.Parameters()
	params[contenttype.Charset] = charset
	names := append([]string{contenttype.Charset}, ct.ParameterNames()...)
	ct, err = contenttype.New(ct.Maintype(), ct.Subtype(), params, names...)
	if err != nil {
		return nil, err
	}

	b.Add(header.ContentType, ct.String())
	b.Add(header.ContentTransferEncoding, transfer.ForText(data))
	return data, nil
}

func addDisposition(b *header.Builder, a mailitem.Attachment) {
	disp := DispositionAttachment
	if a.IsInline() {
		disp = DispositionInline
	}

	var params map[string]string
	if fn := a.GetFilename(); fn != "" {
		params = map[string]string{"filename": fn}
	}

	b.Add(header.ContentDisposition, mime.FormatMediaType(disp, params))
}

func relatedParams(r *mailitem.Related) map[string]string {
	if len(r.Content) == 0 {
		return nil
	}

	root := r.Content[0]
	if r.Start != "" {
		for _, c := range r.Content {
			if c.GetContentID() == r.Start {
				root = c
				break
			}
		}
	}

	params := map[string]string{contenttype.Type: mediaTypeOf(root)}
	if r.Start != "" {
		params[contenttype.Start] = r.Start
	}
	return params
}

// mediaTypeOf returns the maintype/subtype an item renders as.
func mediaTypeOf(item mailitem.Item) string {
	switch v := item.(type) {
	case *mailitem.TextBody:
		return contenttype.TextPlain
	case *mailitem.HTMLBody:
		return contenttype.TextHTML
	case *mailitem.TextAttachment:
		return v.ParsedContentType().MediaType()
	case *mailitem.BytesAttachment:
		return v.ParsedContentType().MediaType()
	case *mailitem.EmailAttachment:
		return contenttype.MessageRFC822
	case mailitem.Multipart:
		return "multipart/" + v.Subtype()
	}
	return contenttype.ApplicationOctetStream
}

func renderMultipart(
	b *header.Builder,
	p *Part,
	mp mailitem.Multipart,
	extra map[string]string,
) error {
	if mp.Len() == 0 {
		return &EmptyMultipartError{Kind: mp.Kind()}
	}

	p.parts = make([]*Part, mp.Len())
	for i, c := range mp.Parts() {
		cp, err := Render(c)
		if err != nil {
			return err
		}
		p.parts[i] = cp
	}

	boundary, err := randomBoundary()
	if err != nil {
		return err
	}
	p.boundary = boundary

	params := map[string]string{contenttype.Boundary: boundary}
	names := []string{contenttype.Boundary}
	for _, n := range []string{contenttype.Type, contenttype.Start} {
		if v, ok := extra[n]; ok {
			params[n] = v
			names = append(names, n)
		}
	}

	ct, err := contenttype.New("multipart", mp.Subtype(), params, names...)
	if err != nil {
		return err
	}
	b.Add(header.ContentType, ct.String())

	return nil
}

// toCRLF turns every line ending into CRLF. A lone CR is left alone.
func toCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func randomBoundary() (string, error) {
	var buf [24]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("eletter-%x", buf[:]), nil
}
