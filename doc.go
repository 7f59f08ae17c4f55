// Package eletter builds email messages out of mail items and takes messages
// apart into mail items again.
//
// A message body is a tree. The leaves are the mail items in package mailitem:
// text and HTML bodies, plus text, binary, and email attachments. The
// branches are the multipart containers mailitem.Mixed, mailitem.Alternative,
// and mailitem.Related. The mailitem package also provides the combinators
// for growing such a tree a piece at a time, so you rarely need to build the
// containers by hand.
//
// To write a message, hand the tree and a compose.Envelope to
// compose.Compose. The envelope carries the Subject, the address fields, the
// Date, and whatever other headers you like. The compose package picks the
// charset and transfer encoding of each part so you don't have to. If all you
// want is the usual text, HTML, and attachments, compose.Simple will build the
// tree for you.
//
// To read a message, use decompose.Parse or decompose.Decompose. You get the
// envelope back along with a tree that mirrors the structure of the message
// exactly. Messages in the wild are frequently nested more deeply than they
// need to be, so decompose.Smooth will tidy the tree up. If you just want the
// text, the HTML, and the attachments, decompose.ParseSimple will do that for
// any message with an ordinary shape and tell you why when the message
// doesn't have one.
//
// The other packages are the pieces these are built from: address for
// mailboxes and groups, contenttype for Content-Type values, header for the
// envelope fields, encoding for charsets, transfer for transfer encodings, and
// walk for visiting and rewriting item trees.
//
// I've tried to make composing then decomposing a message give back the tree
// you started with. The details of how the message was encoded on the wire do
// not survive that trip, but the content does.
package eletter
