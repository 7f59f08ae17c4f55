// Package walk provides depth-first traversal of mail item trees.
package walk

import "github.com/zostay/eletter/mailitem"

// Processor is a callback that can be passed to the AndProcess() function to
// do any kind of generic processing of an item tree.
//
// The Processor is given an item and the ancestry of the item. If len(parents)
// is zero, then this is the item that AndProcess() was called upon.
//
// The Processor may return an error to cause AndProcess() to terminate
// immediately and return that error.
type Processor func(item mailitem.Item, parents []mailitem.Multipart) error

// AndProcess will walk the item tree and call the given Processor for each
// item found, parents before their children. It returns nil once every item has
// been processed. If the Processor returns an error, it terminates early and
// returns that error.
func AndProcess(
	processor Processor,
	item mailitem.Item,
) error {
	parents := make([]mailitem.Multipart, 0, 10)
	return andProcess(processor, item, parents)
}

func andProcess(
	processor Processor,
	item mailitem.Item,
	parents []mailitem.Multipart,
) error {
	err := processor(item, parents)
	if err != nil {
		return err
	}

	if mp, isMultipart := item.(mailitem.Multipart); isMultipart {
		parents = append(parents, mp)
		for _, child := range mp.Parts() {
			err := andProcess(processor, child, parents)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
