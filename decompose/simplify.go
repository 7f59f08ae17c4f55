package decompose

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"

	"github.com/zostay/eletter/compose"
	"github.com/zostay/eletter/mailitem"
	"github.com/zostay/eletter/walk"
)

// Reasons given by the errors Simplify returns.
const (
	ReasonRelated            = "cannot simplify multipart/related"
	ReasonAttachmentBody     = "body is an attachment"
	ReasonNoBodies           = "no text or HTML bodies in message"
	ReasonInterspersed       = "message intersperses attachments with text"
	ReasonNoHTMLForText      = "no matching HTML alternative for text part"
	ReasonNoTextForHTML      = "no matching text alternative for HTML part"
	ReasonAltAfterText       = "text + HTML alternative follows text-only body"
	ReasonAltAfterHTML       = "text + HTML alternative follows HTML-only body"
	ReasonAltNotTextHTML     = "multipart/alternative inside multipart/mixed is not a text/plain part plus a text/html part"
	ReasonAltMultipleText    = "multiple text/plain parts in multipart/alternative"
	ReasonAltMultipleHTML    = "multiple text/html parts in multipart/alternative"
	ReasonAltNeitherTextHTML = "alternative part contains neither text/plain nor text/html"
	ReasonAltBothTextAndHTML = "alternative part contains both text/plain and text/html"
)

// SimpleEletter is a decomposed message with a body that has been reduced to
// a text body, an HTML body, and attachments. A nil Text or HTML means the
// message had no body of that kind. At least one of them is set.
type SimpleEletter struct {
	compose.Envelope

	Text        *string
	HTML        *string
	Attachments []mailitem.Attachment
}

// TextString returns the text body or "" if there is none.
func (s *SimpleEletter) TextString() string {
	if s.Text == nil {
		return ""
	}
	return *s.Text
}

// HTMLString returns the HTML body or "" if there is none.
func (s *SimpleEletter) HTMLString() string {
	if s.HTML == nil {
		return ""
	}
	return *s.HTML
}

// Compose turns the SimpleEletter back into a message.
func (s *SimpleEletter) Compose() (*message.Entity, error) {
	return compose.Simple(s.Text, s.HTML, s.Attachments, &s.Envelope)
}

// DecomposeSimple decomposes the message and then simplifies it.
func DecomposeSimple(e *message.Entity, unmix bool, opts ...Option) (*SimpleEletter, error) {
	el, err := Decompose(e, opts...)
	if err != nil {
		return nil, err
	}
	return el.Simplify(unmix)
}

// ParseSimple reads a message, decomposes it, and then simplifies it.
func ParseSimple(r io.Reader, unmix bool, opts ...Option) (*SimpleEletter, error) {
	el, err := Parse(r, opts...)
	if err != nil {
		return nil, err
	}
	return el.Simplify(unmix)
}

// body accumulates the text and HTML bodies. The flags track presence
// separately, since an empty body is still a body.
type body struct {
	text, html       string
	hasText, hasHTML bool
	attachments      []mailitem.Attachment
}

func appendBody(s *string, has *bool, content string) {
	if *has && !strings.HasSuffix(*s, "\n") {
		*s += "\n"
	}
	*s += content
	*has = true
}

func (b *body) addText(s string) { appendBody(&b.text, &b.hasText, s) }
func (b *body) addHTML(s string) { appendBody(&b.html, &b.hasHTML, s) }

// Simplify smooths the content and reduces it to a text body, an HTML body,
// and a list of attachments.
//
// The content must be one of these:
//
//   - A text or HTML body.
//   - A multipart/mixed of bodies, text plus HTML alternatives, and
//     attachments, where all the bodies come before all the attachments.
//     Bodies of the same kind are joined with a line break between them.
//   - A multipart/alternative of exactly one text-only part and one HTML-only
//     part, where each may be a multipart/mixed as above. Attachments found
//     in either part are combined, with duplicates removed.
//
// If unmix is true, bodies in a multipart/mixed may come after attachments.
// Without unmix, that shape fails with a *MixedContentError.
//
// Anything else fails with a *SimplificationError. A multipart/related
// anywhere in the content always fails.
func (e *Eletter) Simplify(unmix bool) (*SimpleEletter, error) {
	content := Smooth(e.Content)

	err := walk.AndProcess(
		func(item mailitem.Item, _ []mailitem.Multipart) error {
			if _, isRelated := item.(*mailitem.Related); isRelated {
				return simplificationError(ReasonRelated)
			}
			return nil
		}, content)
	if err != nil {
		return nil, err
	}

	var b *body
	if alt, isAlt := content.(*mailitem.Alternative); isAlt {
		b, err = simplifyAlternative(alt, unmix)
	} else {
		b, err = simplifyPart(content, unmix)
	}
	if err != nil {
		return nil, err
	}

	if !b.hasText && !b.hasHTML {
		return nil, simplificationError(ReasonNoBodies)
	}

	s := &SimpleEletter{
		Envelope:    e.Envelope,
		Attachments: b.attachments,
	}
	if b.hasText {
		s.Text = &b.text
	}
	if b.hasHTML {
		s.HTML = &b.html
	}

	return s, nil
}

// simplifyAlternative handles an Alternative at the top. Each part must supply
// exactly one of the bodies.
func simplifyAlternative(alt *mailitem.Alternative, unmix bool) (*body, error) {
	b := &body{attachments: []mailitem.Attachment{}}
	for _, part := range alt.Content {
		pb, err := simplifyPart(part, unmix)
		if err != nil {
			return nil, err
		}

		switch {
		case pb.hasText && !pb.hasHTML:
			if b.hasText {
				return nil, simplificationError(ReasonAltMultipleText)
			}
			b.text, b.hasText = pb.text, true
		case pb.hasHTML && !pb.hasText:
			if b.hasHTML {
				return nil, simplificationError(ReasonAltMultipleHTML)
			}
			b.html, b.hasHTML = pb.html, true
		case !pb.hasText && !pb.hasHTML:
			return nil, simplificationError(ReasonAltNeitherTextHTML)
		default:
			return nil, simplificationError(ReasonAltBothTextAndHTML)
		}

	Attachments:
		for _, a := range pb.attachments {
			for _, seen := range b.attachments {
				if mailitem.Equal(a, seen) {
					continue Attachments
				}
			}
			b.attachments = append(b.attachments, a)
		}
	}

	return b, nil
}

// simplifyPart handles anything other than an Alternative at the top.
func simplifyPart(content mailitem.Item, unmix bool) (*body, error) {
	b := &body{attachments: []mailitem.Attachment{}}

	interspersed := func() error {
		if len(b.attachments) > 0 && !unmix {
			return &MixedContentError{SimplificationError{Reason: ReasonInterspersed}}
		}
		return nil
	}

	switch v := content.(type) {
	case *mailitem.TextBody:
		b.addText(v.Content)
	case *mailitem.HTMLBody:
		b.addHTML(v.Content)
	case *mailitem.Mixed:
		for _, item := range v.Content {
			switch mi := item.(type) {
			case *mailitem.TextBody:
				if err := interspersed(); err != nil {
					return nil, err
				}
				if b.hasHTML {
					return nil, simplificationError(ReasonNoHTMLForText)
				}
				b.addText(mi.Content)

			case *mailitem.HTMLBody:
				if err := interspersed(); err != nil {
					return nil, err
				}
				if b.hasText {
					return nil, simplificationError(ReasonNoTextForHTML)
				}
				b.addHTML(mi.Content)

			case *mailitem.Alternative:
				text, html, err := textAndHTML(mi)
				if err != nil {
					return nil, err
				}
				if err := interspersed(); err != nil {
					return nil, err
				}

				switch {
				case b.hasText == b.hasHTML:
					b.addText(text)
					b.addHTML(html)
				case b.hasText:
					return nil, simplificationError(ReasonAltAfterText)
				default:
					return nil, simplificationError(ReasonAltAfterHTML)
				}

			case *mailitem.Related:
				return nil, simplificationError(ReasonRelated)

			case mailitem.Attachment:
				b.attachments = append(b.attachments, mi)

			default:
				return nil, fmt.Errorf("cannot simplify %T inside multipart/mixed", item)
			}
		}
	case *mailitem.Related:
		return nil, simplificationError(ReasonRelated)
	case mailitem.Attachment:
		return nil, simplificationError(ReasonAttachmentBody)
	default:
		return nil, fmt.Errorf("cannot simplify %T", content)
	}

	return b, nil
}

// textAndHTML requires an Alternative inside a Mixed to be a text body and an
// HTML body, in either order.
func textAndHTML(alt *mailitem.Alternative) (string, string, error) {
	if alt.Len() == 2 {
		switch first := alt.Content[0].(type) {
		case *mailitem.TextBody:
			if second, ok := alt.Content[1].(*mailitem.HTMLBody); ok {
				return first.Content, second.Content, nil
			}
		case *mailitem.HTMLBody:
			if second, ok := alt.Content[1].(*mailitem.TextBody); ok {
				return second.Content, first.Content, nil
			}
		}
	}

	return "", "", simplificationError(ReasonAltNotTextHTML)
}
