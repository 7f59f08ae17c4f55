package walk

import (
	"errors"
	"fmt"

	"github.com/zostay/eletter/mailitem"
)

var (
	// ErrSkip may be returned by a Transformer callback to signal that the item
	// should be left out of the transformed tree.
	ErrSkip = errors.New("skip item")

	// ErrNilNil is returned by AndTransform when a Transformer callback returns
	// no item and provides no error.
	ErrNilNil = errors.New("no item and no error")
)

// BadTransformationError is used when transformation needs to fail with an
// error.
type BadTransformationError struct {
	Cause   error
	Message string
}

// Error returns the error message describing the bad transformation.
func (b *BadTransformationError) Error() string {
	return fmt.Sprintf("%s: %v", b.Message, b.Cause)
}

// Unwrap returns the error that caused the bad transformation.
func (b *BadTransformationError) Unwrap() error {
	return b.Cause
}

// Transformer is a callback that can be passed to the AndTransform() function
// to rewrite an item tree into a new one.
//
// The Transformer is given the item to transform and the ancestry of the item
// in the original tree. When the item is a container, it is a fresh container
// of the same kind, with the same Content-ID and Start, holding the already
// transformed children. The Transformer may return it or anything else.
//
// Returning ErrSkip drops the item from its parent.
type Transformer func(item mailitem.Item, parents []mailitem.Multipart) (mailitem.Item, error)

// AndTransform rewrites the item tree bottom-up: the children of a container
// are transformed before the container itself. The original tree is not
// modified.
//
// If the top-level item is skipped, AndTransform returns nil and ErrSkip.
func AndTransform(
	transformer Transformer,
	item mailitem.Item,
) (mailitem.Item, error) {
	parents := make([]mailitem.Multipart, 0, 10)
	return andTransform(transformer, item, parents)
}

func andTransform(
	transformer Transformer,
	item mailitem.Item,
	parents []mailitem.Multipart,
) (mailitem.Item, error) {
	if mp, isMultipart := item.(mailitem.Multipart); isMultipart {
		children := make([]mailitem.Item, 0, mp.Len())
		childParents := append(parents, mp)
		for _, child := range mp.Parts() {
			tchild, err := andTransform(transformer, child, childParents)
			if errors.Is(err, ErrSkip) {
				continue
			} else if err != nil {
				return nil, err
			}
			children = append(children, tchild)
		}

		item = CopyContainer(mp, children...)
	}

	titem, err := transformer(item, parents)
	if err != nil {
		return nil, err
	}

	if titem == nil {
		return nil, &BadTransformationError{ErrNilNil, "transformer error"}
	}

	return titem, nil
}

// CopyContainer returns a new container of the same kind as mp with the same
// Content-ID and Start, holding the given children.
func CopyContainer(mp mailitem.Multipart, children ...mailitem.Item) mailitem.Multipart {
	nmp := mailitem.New(mp.Kind(), children...)
	switch c := nmp.(type) {
	case *mailitem.Mixed:
		c.ContentID = mp.GetContentID()
	case *mailitem.Alternative:
		c.ContentID = mp.GetContentID()
	case *mailitem.Related:
		c.ContentID = mp.GetContentID()
		c.Start = mp.(*mailitem.Related).Start
	}
	return nmp
}
