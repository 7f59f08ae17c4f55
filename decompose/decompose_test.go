package decompose_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/eletter/address"
	"github.com/zostay/eletter/compose"
	"github.com/zostay/eletter/decompose"
	"github.com/zostay/eletter/header"
	"github.com/zostay/eletter/mailitem"
)

func parseFile(t *testing.T, name string, opts ...decompose.Option) (*decompose.Eletter, error) {
	t.Helper()

	src, err := os.Open("../test/data/" + name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	return decompose.Parse(src, opts...)
}

func parseString(t *testing.T, raw string, opts ...decompose.Option) (*decompose.Eletter, error) {
	t.Helper()
	return decompose.Parse(strings.NewReader(raw), opts...)
}

func attachment(t *testing.T, content []byte, filename, contentType string) *mailitem.BytesAttachment {
	t.Helper()
	a, err := mailitem.NewBytesAttachment(content, filename, contentType)
	require.NoError(t, err)
	return a
}

func textAttachment(t *testing.T, content, filename, contentType string) *mailitem.TextAttachment {
	t.Helper()
	a, err := mailitem.NewTextAttachment(content, filename, contentType)
	require.NoError(t, err)
	return a
}

func TestParse_Envelope(t *testing.T) {
	t.Parallel()

	el, err := parseFile(t, "simple.eml")
	require.NoError(t, err)

	assert.Equal(t, "Meet me at the fountain", el.Subject)
	assert.Equal(t, "Alice <alice@example.com>", address.Format(el.From))
	assert.Equal(t,
		`Bob <bob@example.com>, "Doe, Jane" <jane@example.com>, undisclosed-recipients:;`,
		address.Format(el.To))
	assert.Equal(t,
		"friends: carol@example.com, Dave <dave@example.com>;",
		address.Format(el.Cc))
	assert.Empty(t, el.Bcc)
	assert.Equal(t, "alice+replies@example.com", address.Format(el.ReplyTo))
	require.NotNil(t, el.Sender)
	assert.Equal(t, "Mailer <mailer@example.com>", el.Sender.String())

	date := time.Date(2021, 5, 22, 14, 3, 16, 0, time.FixedZone("", -4*60*60))
	assert.True(t, date.Equal(el.Date), "date %v", el.Date)

	assert.Equal(t, []string{"message-id", "x-tag"}, el.Headers.Names())
	assert.Equal(t, "<fountain@example.com>", el.Headers.Get("Message-ID"))
	assert.Equal(t, []string{"one", "two"}, el.Headers.Values("X-Tag"))

	assert.True(t, mailitem.Equal(
		mailitem.NewTextBody("Noon works for me.\n☺\nDon't be late.\n"),
		el.Content,
	), "content %#v", el.Content)
}

func TestParse_MissingEnvelope(t *testing.T) {
	t.Parallel()

	el, err := parseString(t, "Date: not a date at all\r\n\r\nHello\r\n")
	require.NoError(t, err)

	assert.Equal(t, "", el.Subject)
	assert.False(t, el.EmptySubject)
	assert.Empty(t, el.From)
	assert.Nil(t, el.Sender)
	assert.True(t, el.Date.IsZero())
	assert.Equal(t, 0, el.Headers.Len())
	assert.True(t, mailitem.Equal(mailitem.NewTextBody("Hello\n"), el.Content))
}

func TestParse_AddressFields(t *testing.T) {
	t.Parallel()

	el, err := parseString(t, "From: John Q Public <jqp@example.com>\r\n"+
		"To: Team: b@example.com, c@example.com;\r\n"+
		"Cc: undisclosed recipients:;, Mary  Ann <mary@example.com>\r\n"+
		"Subject: \r\n"+
		"\r\n"+
		"Hello\r\n")
	require.NoError(t, err)

	assert.Equal(t, address.List{address.NewMailbox("John Q Public", "jqp@example.com")}, el.From)
	assert.Equal(t, address.List{
		address.NewGroup("Team",
			address.NewMailbox("", "b@example.com"),
			address.NewMailbox("", "c@example.com"),
		),
	}, el.To)
	assert.Equal(t, address.List{
		address.NewGroup("undisclosed recipients"),
		address.NewMailbox("Mary Ann", "mary@example.com"),
	}, el.Cc)
	assert.Equal(t, "", el.Subject)
	assert.True(t, el.EmptySubject)
}

func TestParse_Attachments(t *testing.T) {
	t.Parallel()

	el, err := parseFile(t, "text-html-attachments.eml")
	require.NoError(t, err)

	expect := mailitem.NewMixed(
		mailitem.NewAlternative(
			mailitem.NewTextBody("The report is attached."),
			mailitem.NewHTMLBody("<p>The report is <b>attached</b>.</p>"),
		),
		attachment(t,
			[]byte("%PDF-1.\ntrailer<</Root<</Pages<</Kids[<</MediaBox[0 0 3 3]>>]>>>>>>\n"),
			"report.pdf", "application/pdf; name=report.pdf"),
		textAttachment(t, "café,1\nthé,2", "figures.csv", "text/csv"),
	)
	assert.True(t, mailitem.Equal(expect, el.Content), "content %#v", el.Content)
}

func TestParse_Related(t *testing.T) {
	t.Parallel()

	el, err := parseFile(t, "related.eml")
	require.NoError(t, err)

	gif := attachment(t, []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00,"), "", "image/gif")
	gif.Inline = true
	gif.ContentID = "<dot@example.com>"

	html := mailitem.NewHTMLBody(`<img src="cid:dot@example.com">`)
	html.ContentID = "<html@example.com>"

	rel := mailitem.NewRelated(html, gif)
	rel.ContentID = "<rel@example.com>"
	rel.Start = "<html@example.com>"

	expect := mailitem.NewAlternative(
		mailitem.NewTextBody("There is a picture here."),
		rel,
	)
	assert.True(t, mailitem.Equal(expect, el.Content), "content %#v", el.Content)
}

func TestParse_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		part   string
		expect func(t *testing.T) mailitem.Item
	}{
		{
			name: "filename implies attachment",
			part: "Content-Type: text/plain; name=notes.txt\r\n\r\nnotes\r\n",
			expect: func(t *testing.T) mailitem.Item {
				return textAttachment(t, "notes\n", "notes.txt", "text/plain; name=notes.txt")
			},
		},
		{
			name: "inline text attachment",
			part: "Content-Type: text/markdown; charset=utf-8\r\n\r\n# Notes\r\n",
			expect: func(t *testing.T) mailitem.Item {
				a := textAttachment(t, "# Notes\n", "", "text/markdown")
				a.Inline = true
				return a
			},
		},
		{
			name: "attachment disposition",
			part: "Content-Type: text/html\r\nContent-Disposition: attachment\r\n\r\n<p>x</p>",
			expect: func(t *testing.T) mailitem.Item {
				return textAttachment(t, "<p>x</p>", "", "text/html")
			},
		},
		{
			name: "inline with filename",
			part: "Content-Type: text/plain\r\nContent-Disposition: inline; filename=a.txt\r\n\r\na",
			expect: func(t *testing.T) mailitem.Item {
				a := textAttachment(t, "a", "a.txt", "text/plain")
				a.Inline = true
				return a
			},
		},
		{
			name: "encoded filename",
			part: "Content-Type: application/pdf\r\n" +
				"Content-Disposition: attachment; filename=\"=?utf-8?q?r=C3=A9sum=C3=A9.pdf?=\"\r\n" +
				"Content-Transfer-Encoding: base64\r\n\r\nJVBERg==\r\n",
			expect: func(t *testing.T) mailitem.Item {
				return attachment(t, []byte("%PDF"), "résumé.pdf", "application/pdf")
			},
		},
		{
			name: "bytes keep line endings",
			part: "Content-Type: application/x-thing\r\n\r\na\r\nb\r\n",
			expect: func(t *testing.T) mailitem.Item {
				a := attachment(t, []byte("a\r\nb\r\n"), "", "application/x-thing")
				a.Inline = true
				return a
			},
		},
		{
			name: "unparsable content type",
			part: "Content-Type: this is not right\r\n\r\nhello\r\n",
			expect: func(t *testing.T) mailitem.Item {
				return mailitem.NewTextBody("hello\n")
			},
		},
		{
			name: "missing content type",
			part: "Content-ID: <x@example.com>\r\n\r\nhello\r\n",
			expect: func(t *testing.T) mailitem.Item {
				tb := mailitem.NewTextBody("hello\n")
				tb.ContentID = "<x@example.com>"
				return tb
			},
		},
		{
			name: "latin-1 html",
			part: "Content-Type: text/html; charset=iso-8859-1\r\n" +
				"Content-Transfer-Encoding: quoted-printable\r\n\r\n<p>=C7a va?</p>",
			expect: func(t *testing.T) mailitem.Item {
				return mailitem.NewHTMLBody("<p>Ça va?</p>")
			},
		},
		{
			name: "embedded message",
			part: "Content-Type: message/rfc822\r\n" +
				"Content-Disposition: attachment; filename=fwd.eml\r\n\r\n" +
				"Subject: inner\r\n\r\nbody\r\n",
			expect: func(t *testing.T) mailitem.Item {
				return mailitem.NewEmailAttachment([]byte("Subject: inner\r\n\r\nbody\r\n"), "fwd.eml")
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			el, err := parseString(t, tt.part)
			require.NoError(t, err)
			assert.True(t, mailitem.Equal(tt.expect(t), el.Content), "content %#v", el.Content)
		})
	}
}

func TestParse_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := parseFile(t, "signed.eml")
	var derr *decompose.DecompositionError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "multipart/signed", derr.ContentType)
	assert.EqualError(t, err, "unsupported content type: multipart/signed")

	_, err = parseString(t,
		"Content-Type: multipart/mixed; boundary=b\r\n\r\n"+
			"--b\r\nContent-Type: text/plain\r\n\r\nsee below\r\n"+
			"--b\r\nContent-Type: message/delivery-status\r\n\r\nStatus: 5.0.0\r\n"+
			"--b--\r\n")
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "message/delivery-status", derr.ContentType)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := parseString(t,
		"Content-Type: multipart/mixed; boundary=b\r\n\r\n"+
			"--b\r\nContent-Type: text/plain\r\n\r\nnever ends")
	assert.ErrorIs(t, err, decompose.ErrMalformedPart)
}

func TestParse_Depth(t *testing.T) {
	t.Parallel()

	_, err := parseFile(t, "text-html-attachments.eml")
	assert.NoError(t, err)

	_, err = parseFile(t, "text-html-attachments.eml", decompose.WithMaxDepth(2))
	assert.NoError(t, err)

	_, err = parseFile(t, "text-html-attachments.eml", decompose.WithMaxDepth(1))
	assert.ErrorIs(t, err, decompose.ErrTooDeep)

	_, err = parseFile(t, "text-html-attachments.eml", decompose.WithMaxDepth(0))
	assert.ErrorIs(t, err, decompose.ErrTooDeep)

	_, err = parseFile(t, "simple.eml", decompose.WithMaxDepth(0))
	assert.NoError(t, err)

	deep := mailitem.Item(mailitem.NewTextBody("deep\n"))
	for i := 0; i < 2*decompose.DefaultMaxDepth; i++ {
		deep = mailitem.NewMixed(deep, attachment(t, []byte{byte(i)}, "", ""))
	}

	e, err := compose.Compose(deep, nil)
	require.NoError(t, err)
	_, err = decompose.Decompose(e)
	assert.ErrorIs(t, err, decompose.ErrTooDeep)

	e, err = compose.Compose(deep, nil)
	require.NoError(t, err)
	el, err := decompose.Decompose(e, decompose.WithUnlimitedDepth())
	require.NoError(t, err)
	assert.True(t, mailitem.Equal(deep, el.Content))
}

func TestParse_MaxHeaderBytes(t *testing.T) {
	t.Parallel()

	raw := "X-Long: " + strings.Repeat("x", 200) + "\r\n\r\nbody\r\n"

	_, err := parseString(t, raw, decompose.WithMaxHeaderBytes(64))
	assert.Error(t, err)

	_, err = parseString(t, raw, decompose.WithMaxHeaderBytes(-1))
	assert.NoError(t, err)
}

func TestDecompose_RoundTrip(t *testing.T) {
	t.Parallel()

	logo := attachment(t, []byte("\x89PNG\r\n\x1a\n"), "", "image/png")
	logo.Inline = true
	logo.ContentID = "<logo@example.com>"

	page := mailitem.NewHTMLBody("<p>Hi <img src=\"cid:logo@example.com\"></p>\n")
	page.ContentID = "<page@example.com>"

	rel := mailitem.NewRelated(logo, page)
	rel.Start = "<page@example.com>"
	rel.ContentID = "<rel@example.com>"

	notes := textAttachment(t, "line one\nline two\n", "notes.md", "text/markdown")
	inlineNotes := textAttachment(t, "inline\n", "inline.txt", "text/plain")
	inlineNotes.Inline = true

	fwd := mailitem.NewEmailAttachment([]byte("Subject: fwd\r\n\r\nForwarded.\r\n"), "")

	trees := map[string]mailitem.Item{
		"text":        mailitem.NewTextBody("Hello\nWorld\n"),
		"html":        mailitem.NewHTMLBody("<p>Hello</p>"),
		"empty text":  mailitem.NewTextBody(""),
		"attachment":  notes,
		"alternative": mailitem.NewAlternative(mailitem.NewTextBody("a\n"), mailitem.NewHTMLBody("<b>a</b>\n")),
		"related":     rel,
		"kitchen sink": mailitem.NewMixed(
			mailitem.NewAlternative(mailitem.NewTextBody("Hi\n"), rel),
			notes,
			inlineNotes,
			fwd,
			attachment(t, []byte{0, 1, 2, 0xff}, "raw.bin", ""),
		),
	}

	for name, tree := range trees {
		tree := tree
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e, err := compose.Compose(tree, nil)
			require.NoError(t, err)

			el, err := decompose.Decompose(e)
			require.NoError(t, err)
			assert.True(t, mailitem.Equal(tree, el.Content), "content %#v", el.Content)
		})
	}
}

func TestEletter_Compose(t *testing.T) {
	t.Parallel()

	orig := &decompose.Eletter{
		Envelope: compose.Envelope{
			Subject: "Café tomorrow?",
			From:    address.List{address.NewMailbox("Jürgen von Stein", "j@example.com")},
			To: address.List{
				address.NewMailbox("", "you@example.com"),
				address.NewMailbox("John Q Public", "jqp@example.com"),
				address.NewGroup("team", address.NewMailbox("Ann Lee", "ann@example.com")),
				address.NewGroup("undisclosed recipients"),
			},
			Cc: address.List{
				address.NewGroup("Book Club",
					address.NewMailbox("", "b@example.com"),
					address.NewMailbox("", "c@example.com"),
				),
			},
			Bcc:     address.List{address.NewMailbox("", "bcc@example.com")},
			ReplyTo: address.List{address.NewMailbox("Smith, John", "reply@example.com")},
			Sender:  address.NewMailbox("Mail Robot", "sender@example.com"),
			Date:    time.Date(2022, 1, 2, 3, 4, 5, 0, time.FixedZone("", 2*60*60)),
			Headers: header.NewCustom("X-Mailer", "eletter", "Keywords", "a", "Keywords", "b"),
		},
		Content: mailitem.NewMixed(
			mailitem.NewTextBody("See attached.\n"),
			attachment(t, []byte("data"), "data.bin", ""),
		),
	}

	e, err := orig.Compose()
	require.NoError(t, err)

	el, err := decompose.Decompose(e)
	require.NoError(t, err)

	assert.Equal(t, orig.Subject, el.Subject)
	assert.Equal(t, orig.From, el.From)
	assert.Equal(t, orig.To, el.To)
	assert.Equal(t, orig.Cc, el.Cc)
	assert.Equal(t, orig.Bcc, el.Bcc)
	assert.Equal(t, orig.ReplyTo, el.ReplyTo)
	assert.Equal(t, orig.Sender, el.Sender)
	assert.True(t, orig.Date.Equal(el.Date))
	assert.True(t, orig.Headers.Equal(el.Headers))
	assert.True(t, mailitem.Equal(orig.Content, el.Content))
}

func TestDecompose_UnknownCharset(t *testing.T) {
	t.Parallel()

	e, err := message.Read(strings.NewReader(
		"Content-Type: text/plain; charset=x-no-such-thing\r\n\r\nplain enough\r\n"))
	require.True(t, err == nil || message.IsUnknownCharset(err), "error %v", err)

	el, err := decompose.Decompose(e)
	require.NoError(t, err)
	assert.True(t, mailitem.Equal(mailitem.NewTextBody("plain enough\n"), el.Content))

	el, err = parseString(t,
		"Content-Type: multipart/mixed; boundary=b\r\n\r\n"+
			"--b\r\nContent-Type: text/plain; charset=x-no-such-thing\r\n\r\nstill here\r\n"+
			"--b--\r\n")
	require.NoError(t, err)
	assert.True(t, mailitem.Equal(
		mailitem.NewMixed(mailitem.NewTextBody("still here")),
		el.Content,
	))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	var err error = &decompose.MixedContentError{
		SimplificationError: decompose.SimplificationError{Reason: decompose.ReasonInterspersed},
	}

	var serr *decompose.SimplificationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, decompose.ReasonInterspersed, serr.Reason)
	assert.EqualError(t, err, decompose.ReasonInterspersed)

	var merr *decompose.MixedContentError
	assert.False(t, errors.As(serr, &merr))
}
