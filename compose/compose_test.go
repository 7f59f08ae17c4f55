package compose_test

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message"
	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/eletter/address"
	"github.com/zostay/eletter/compose"
	"github.com/zostay/eletter/header"
	"github.com/zostay/eletter/mailitem"
)

func envelope() *compose.Envelope {
	return &compose.Envelope{
		Subject: "Greetings",
		From:    address.List{address.NewMailbox("Me", "me@here.com")},
		To: address.List{
			address.NewMailbox("", "you@there.net"),
			address.NewMailbox("Thaddeus Hem", "them@hither.yon"),
		},
		Cc:      address.List{address.NewGroup("friends", address.NewMailbox("", "a@example.com"))},
		Bcc:     address.List{address.NewMailbox("", "secret@example.com")},
		ReplyTo: address.List{address.NewMailbox("", "replies@here.com")},
		Sender:  address.NewMailbox("", "steven.ender@big.senders"),
		Date:    time.Date(2021, 3, 10, 17, 56, 36, 0, time.FixedZone("", -5*60*60)),
		Headers: header.NewCustom(
			"User-Agent", "eletter",
			"Priority", "urgent",
			"Priority", "non-urgent",
		),
	}
}

func headerNames(t *testing.T, raw []byte) []string {
	t.Helper()

	var names []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		name, _, ok := strings.Cut(line, ":")
		require.True(t, ok, line)
		names = append(names, name)
	}
	return names
}

func str(s string) *string { return &s }

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestWrite_HeaderOrder(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	err := compose.Write(buf, mailitem.NewTextBody("This is the text of an e-mail.\n"), envelope())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Subject", "From", "To", "Cc", "Bcc", "Reply-To", "Sender", "Date",
		"User-Agent", "Priority", "Priority",
		"Mime-Version", "Content-Type", "Content-Transfer-Encoding",
	}, headerNames(t, buf.Bytes()))

	raw := buf.String()
	assert.Contains(t, raw, "To: you@there.net, Thaddeus Hem <them@hither.yon>\r\n")
	assert.Contains(t, raw, "Cc: friends: a@example.com;\r\n")
	assert.Contains(t, raw, "Date: Wed, 10 Mar 2021 17:56:36 -0500\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=utf-8\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nThis is the text of an e-mail.\r\n"))
}

func TestWrite_EmptyEnvelope(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	require.NoError(t, compose.Write(buf, mailitem.NewHTMLBody("<p>Hi</p>"), nil))
	assert.Equal(t, []string{"Mime-Version", "Content-Type", "Content-Transfer-Encoding"},
		headerNames(t, buf.Bytes()))
}

func TestWrite_EmptySubject(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	require.NoError(t, compose.Write(buf, mailitem.NewTextBody("Hi"), &compose.Envelope{}))
	assert.NotContains(t, headerNames(t, buf.Bytes()), "Subject")

	buf.Reset()
	require.NoError(t, compose.Write(buf, mailitem.NewTextBody("Hi"), &compose.Envelope{EmptySubject: true}))
	assert.Equal(t, "Subject", headerNames(t, buf.Bytes())[0])
}

func TestCompose_Entity(t *testing.T) {
	t.Parallel()

	env := envelope()
	env.Subject = "Café ☕"
	e, err := compose.Compose(mailitem.NewTextBody("Hi\n"), env)
	require.NoError(t, err)

	assert.Equal(t, "Café ☕", header.Text(&e.Header, header.Subject))
	assert.Equal(t, env.To, header.AddressList(&e.Header, header.To))
	assert.Equal(t, env.Sender, header.Mailbox(&e.Header, header.Sender))
	assert.True(t, env.Date.Equal(header.Time(&e.Header, header.Date)))
	assert.Equal(t, []string{"urgent", "non-urgent"}, e.Header.Values("Priority"))
	assert.Equal(t, "Hi\r\n", readAll(t, e.Body))
}

func TestCompose_EmptyMultipart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		item mailitem.Item
		msg  string
	}{
		{mailitem.NewAlternative(), "cannot compose empty Alternative"},
		{mailitem.NewMixed(), "cannot compose empty Mixed"},
		{mailitem.NewRelated(), "cannot compose empty Related"},
		{mailitem.NewMixed(mailitem.NewTextBody("x"), mailitem.NewRelated()), "cannot compose empty Related"},
	}

	for _, tt := range tests {
		_, err := compose.Compose(tt.item, envelope())
		var eme *compose.EmptyMultipartError
		require.ErrorAs(t, err, &eme)
		assert.EqualError(t, err, tt.msg)
	}
}

func TestCompose_Mixed(t *testing.T) {
	t.Parallel()

	csv, err := mailitem.NewTextAttachment("a,b\r\nc,d\n", "data.csv", "text/csv; header=present")
	require.NoError(t, err)
	png, err := mailitem.NewBytesAttachment([]byte{0x89, 'P', 'N', 'G', 0, 1, 2}, "dot.png", "image/png")
	require.NoError(t, err)
	png.Inline = true
	png.ContentID = "<dot@example.com>"
	fwd := mailitem.NewEmailAttachment([]byte("Subject: Fwd\r\n\r\nInner body\r\n"), "fwd.eml")

	content := mailitem.Mix(
		mailitem.Alternate(mailitem.NewTextBody("plain\n"), mailitem.NewHTMLBody("<b>html</b>\n")),
		mailitem.Mix(csv, mailitem.Mix(png, fwd)),
	)

	e, err := compose.Compose(content, envelope())
	require.NoError(t, err)

	mt, _, err := e.Header.ContentType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mt)

	mr := e.MultipartReader()
	require.NotNil(t, mr)

	p, err := mr.NextPart()
	require.NoError(t, err)
	mt, _, _ = p.Header.ContentType()
	assert.Equal(t, "multipart/alternative", mt)
	amr := p.MultipartReader()
	require.NotNil(t, amr)
	tp, err := amr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "plain\r\n", readAll(t, tp.Body))
	hp, err := amr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "<b>html</b>\r\n", readAll(t, hp.Body))
	_, err = amr.NextPart()
	assert.ErrorIs(t, err, io.EOF)

	p, err = mr.NextPart()
	require.NoError(t, err)
	mt, params, _ := p.Header.ContentType()
	assert.Equal(t, "text/csv", mt)
	assert.Equal(t, map[string]string{"charset": "utf-8", "header": "present"}, params)
	disp, dparams, err := p.Header.ContentDisposition()
	require.NoError(t, err)
	assert.Equal(t, "attachment", disp)
	assert.Equal(t, "data.csv", dparams["filename"])
	assert.Equal(t, "a,b\r\nc,d\r\n", readAll(t, p.Body))

	p, err = mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "base64", p.Header.Get(header.ContentTransferEncoding))
	assert.Equal(t, "<dot@example.com>", p.Header.Get(header.ContentID))
	disp, _, _ = p.Header.ContentDisposition()
	assert.Equal(t, "inline", disp)
	assert.Equal(t, string([]byte{0x89, 'P', 'N', 'G', 0, 1, 2}), readAll(t, p.Body))

	p, err = mr.NextPart()
	require.NoError(t, err)
	mt, _, _ = p.Header.ContentType()
	assert.Equal(t, "message/rfc822", mt)
	assert.Equal(t, "7bit", p.Header.Get(header.ContentTransferEncoding))
	assert.Equal(t, "Subject: Fwd\r\n\r\nInner body\r\n", readAll(t, p.Body))

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCompose_Related(t *testing.T) {
	t.Parallel()

	img, err := mailitem.NewBytesAttachment([]byte("GIF89a"), "", "image/gif")
	require.NoError(t, err)
	img.Inline = true
	img.ContentID = "<img@example.com>"

	html := mailitem.NewHTMLBody(`<img src="cid:img@example.com">`)
	html.ContentID = "<html@example.com>"

	rel := mailitem.Relate(img, html)
	e, err := compose.Compose(rel, nil)
	require.NoError(t, err)
	mt, params, err := e.Header.ContentType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/related", mt)
	assert.Equal(t, "image/gif", params["type"])
	assert.NotContains(t, params, "start")

	rel.Start = "<html@example.com>"
	rel.ContentID = "<rel@example.com>"
	e, err = compose.Compose(rel, nil)
	require.NoError(t, err)
	_, params, err = e.Header.ContentType()
	require.NoError(t, err)
	assert.Equal(t, "text/html", params["type"])
	assert.Equal(t, "<html@example.com>", params["start"])
	assert.Equal(t, "<rel@example.com>", e.Header.Get(header.ContentID))
}

func TestCompose_Charset(t *testing.T) {
	t.Parallel()

	a, err := mailitem.NewTextAttachment("Ça va?\n", "note.txt", "text/plain; charset=iso-8859-1")
	require.NoError(t, err)

	p, err := compose.Render(a)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=iso-8859-1", p.Header.Get(header.ContentType))
	assert.Equal(t, "quoted-printable", p.Header.Get(header.ContentTransferEncoding))

	buf := &bytes.Buffer{}
	require.NoError(t, p.Encode(buf))
	assert.True(t, strings.HasSuffix(buf.String(), "\r\n\r\n=C7a va?\r\n"))

	// reading it back decodes the charset
	e, err := message.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "Ça va?\r\n", readAll(t, e.Body))

	a, err = mailitem.NewTextAttachment("x", "", "text/plain; charset=x-no-such-charset")
	require.NoError(t, err)
	_, err = compose.Render(a)
	assert.Error(t, err)
}

func TestSimple(t *testing.T) {
	t.Parallel()

	_, err := compose.Simple(nil, nil, nil, envelope())
	assert.ErrorIs(t, err, compose.ErrNoBody)
	assert.EqualError(t, err, "at least one of text and html must be set")

	item, err := compose.BuildSimple(str("text"), nil)
	require.NoError(t, err)
	assert.True(t, mailitem.Equal(mailitem.NewTextBody("text"), item))

	item, err = compose.BuildSimple(nil, str("<p>html</p>"))
	require.NoError(t, err)
	assert.True(t, mailitem.Equal(mailitem.NewHTMLBody("<p>html</p>"), item))

	a1 := mailitem.NewEmailAttachment([]byte("Subject: one\r\n\r\n1\r\n"), "one.eml")
	a2 := mailitem.NewEmailAttachment([]byte("Subject: two\r\n\r\n2\r\n"), "two.eml")
	item, err = compose.BuildSimple(str("text"), str("<p>html</p>"), a1, a2)
	require.NoError(t, err)
	assert.True(t, mailitem.Equal(
		mailitem.NewMixed(
			mailitem.NewAlternative(mailitem.NewTextBody("text"), mailitem.NewHTMLBody("<p>html</p>")),
			a1, a2,
		), item))
}

func TestSimple_EmptyBody(t *testing.T) {
	t.Parallel()

	a1 := mailitem.NewEmailAttachment([]byte("Subject: one\r\n\r\n1\r\n"), "one.eml")
	item, err := compose.BuildSimple(str(""), nil, a1)
	require.NoError(t, err)
	assert.True(t, mailitem.Equal(mailitem.NewMixed(mailitem.NewTextBody(""), a1), item))

	e, err := compose.Simple(nil, str(""), nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(e.Header.Get("Content-Type"), "text/html"))
}

func TestSimple_Enmime(t *testing.T) {
	t.Parallel()

	zip, err := mailitem.NewBytesAttachment([]byte("PK\x03\x04 not really a zip"), "archive.zip", "application/zip")
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	content, err := compose.BuildSimple(
		str("Hello, world! ☺\n"),
		str("<p>Hello, <em>world</em>! ☺</p>\n"),
		zip,
	)
	require.NoError(t, err)
	require.NoError(t, compose.Write(buf, content, envelope()))

	env, err := enmime.ReadEnvelope(buf)
	require.NoError(t, err)
	assert.Empty(t, env.Errors)

	assert.Equal(t, "Greetings", env.GetHeader("Subject"))
	assert.Contains(t, env.Text, "Hello, world! ☺")
	assert.Contains(t, env.HTML, "<p>Hello, <em>world</em>! ☺</p>")

	require.Len(t, env.Attachments, 1)
	assert.Equal(t, "archive.zip", env.Attachments[0].FileName)
	assert.Equal(t, "application/zip", env.Attachments[0].ContentType)
	assert.Equal(t, []byte("PK\x03\x04 not really a zip"), env.Attachments[0].Content)

	to, err := env.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 2)
	assert.Equal(t, "Thaddeus Hem", to[1].Name)
}
