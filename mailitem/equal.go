package mailitem

import (
	"bytes"
	"reflect"
)

// Equal reports whether two trees hold the same content. Nodes must be of the
// same type and agree on every field, including Content-ID. Content types are
// compared parsed, so parameter order does not matter. Containers compare
// their children in order. A nil node only equals a nil node of the same
// type.
func Equal(a, b Item) bool {
	if an, bn := isNil(a), isNil(b); an || bn {
		return an && bn && reflect.TypeOf(a) == reflect.TypeOf(b)
	}

	switch x := a.(type) {
	case *TextBody:
		y, ok := b.(*TextBody)
		return ok && *x == *y
	case *HTMLBody:
		y, ok := b.(*HTMLBody)
		return ok && *x == *y
	case *TextAttachment:
		y, ok := b.(*TextAttachment)
		return ok &&
			x.Content == y.Content &&
			x.Filename == y.Filename &&
			x.Inline == y.Inline &&
			x.ContentID == y.ContentID &&
			x.ParsedContentType().Equal(y.ParsedContentType())
	case *BytesAttachment:
		y, ok := b.(*BytesAttachment)
		return ok &&
			bytes.Equal(x.Content, y.Content) &&
			x.Filename == y.Filename &&
			x.Inline == y.Inline &&
			x.ContentID == y.ContentID &&
			x.ParsedContentType().Equal(y.ParsedContentType())
	case *EmailAttachment:
		y, ok := b.(*EmailAttachment)
		return ok &&
			bytes.Equal(x.Content, y.Content) &&
			x.Filename == y.Filename &&
			x.Inline == y.Inline &&
			x.ContentID == y.ContentID
	case *Mixed:
		y, ok := b.(*Mixed)
		return ok && x.ContentID == y.ContentID && equalParts(x.Content, y.Content)
	case *Alternative:
		y, ok := b.(*Alternative)
		return ok && x.ContentID == y.ContentID && equalParts(x.Content, y.Content)
	case *Related:
		y, ok := b.(*Related)
		return ok && x.ContentID == y.ContentID && x.Start == y.Start &&
			equalParts(x.Content, y.Content)
	}

	return false
}

func isNil(i Item) bool {
	switch x := i.(type) {
	case nil:
		return true
	case *TextBody:
		return x == nil
	case *HTMLBody:
		return x == nil
	case *TextAttachment:
		return x == nil
	case *BytesAttachment:
		return x == nil
	case *EmailAttachment:
		return x == nil
	case *Mixed:
		return x == nil
	case *Alternative:
		return x == nil
	case *Related:
		return x == nil
	}
	return false
}

func equalParts(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
