package decompose

import (
	"github.com/zostay/eletter/mailitem"
	"github.com/zostay/eletter/walk"
)

// Smooth removes redundant nesting from a tree. Working from the leaves up, in
// each container:
//
//   - A child container of the same kind is replaced by its children, except
//     that a Related is never merged into a Related. The Content-ID of the
//     replaced child is lost.
//   - A child container that is empty is dropped.
//   - If a single child remains, the container is replaced by that child.
//     Otherwise it is replaced by a new container of the same kind holding
//     the remaining children. Either way, the Content-ID and Start of the
//     container are lost.
//
// Leaves and an empty top-level container are returned as they are. The tree
// passed in is not modified.
func Smooth(item mailitem.Item) mailitem.Item {
	smoothed, err := walk.AndTransform(smoothItem, item)
	if err != nil {
		// smoothItem never fails or skips
		panic(err)
	}
	return smoothed
}

func smoothItem(item mailitem.Item, _ []mailitem.Multipart) (mailitem.Item, error) {
	mp, isMultipart := item.(mailitem.Multipart)
	if !isMultipart {
		return item, nil
	}

	out := make([]mailitem.Item, 0, mp.Len())
	for _, child := range mp.Parts() {
		cmp, childIsMultipart := child.(mailitem.Multipart)
		switch {
		case childIsMultipart && cmp.Kind() == mp.Kind() && mp.Kind() != mailitem.KindRelated:
			out = append(out, cmp.Parts()...)
		case childIsMultipart && cmp.Len() == 0:
			continue
		default:
			out = append(out, child)
		}
	}

	if len(out) == 1 {
		return out[0], nil
	}

	return mailitem.New(mp.Kind(), out...), nil
}
