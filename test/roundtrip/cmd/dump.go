package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/zostay/eletter/mailitem"
	"github.com/zostay/eletter/walk"
)

// maxPreview is the most content shown for each item in a dump.
const maxPreview = 60

// Dump writes an outline of the item tree with one line per item.
func Dump(w io.Writer, item mailitem.Item) error {
	return walk.AndProcess(
		func(item mailitem.Item, parents []mailitem.Multipart) error {
			_, err := fmt.Fprintf(w, "%s%s\n",
				strings.Repeat("  ", len(parents)), describe(item))
			return err
		}, item)
}

func describe(item mailitem.Item) string {
	var b strings.Builder
	switch v := item.(type) {
	case *mailitem.TextBody:
		fmt.Fprintf(&b, "text %s", preview(v.Content))
	case *mailitem.HTMLBody:
		fmt.Fprintf(&b, "html %s", preview(v.Content))
	case *mailitem.TextAttachment:
		fmt.Fprintf(&b, "text attachment %s%s %s",
			v.ContentType(), attachmentFlags(v), preview(v.Content))
	case *mailitem.BytesAttachment:
		fmt.Fprintf(&b, "bytes attachment %s%s (%d bytes)",
			v.ContentType(), attachmentFlags(v), len(v.Content))
	case *mailitem.EmailAttachment:
		fmt.Fprintf(&b, "email attachment%s (%d bytes)",
			attachmentFlags(v), len(v.Content))
	case *mailitem.Related:
		fmt.Fprintf(&b, "%s (%d parts)", v.Kind(), v.Len())
		if v.Start != "" {
			fmt.Fprintf(&b, " start=%s", v.Start)
		}
	case mailitem.Multipart:
		fmt.Fprintf(&b, "%s (%d parts)", v.Kind(), v.Len())
	}

	if cid := item.GetContentID(); cid != "" {
		fmt.Fprintf(&b, " cid=%s", cid)
	}

	return b.String()
}

func attachmentFlags(a mailitem.Attachment) string {
	var flags string
	if fn := a.GetFilename(); fn != "" {
		flags += fmt.Sprintf(" filename=%q", fn)
	}
	if a.IsInline() {
		flags += " inline"
	}
	return flags
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > maxPreview {
		return fmt.Sprintf("%q...", string(r[:maxPreview]))
	}
	return fmt.Sprintf("%q", s)
}
