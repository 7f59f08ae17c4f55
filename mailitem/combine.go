package mailitem

// Alternate returns a new Alternative holding a followed by b. An operand that
// is itself an *Alternative contributes its children rather than itself. The
// result has no Content-ID.
//
//	Alternate(Alternate(a, b), Alternate(c, d)) // Alternative{a, b, c, d}
func Alternate(a, b Item) *Alternative {
	return &Alternative{Sequence: combine(KindAlternative, a, b)}
}

// Mix returns a new Mixed holding a followed by b, flattening operands that
// are already *Mixed the same way Alternate does.
func Mix(a, b Item) *Mixed {
	return &Mixed{Sequence: combine(KindMixed, a, b)}
}

// Relate returns a new Related holding a followed by b, flattening operands
// that are already *Related the same way Alternate does. The result has no
// Start.
func Relate(a, b Item) *Related {
	return &Related{Sequence: combine(KindRelated, a, b)}
}

// AlternateInPlace adds b to a.
//
// Be careful: if a is an *Alternative, it is modified and returned. If it is
// anything else, a is left alone and a new *Alternative holding a and b is
// returned. In either case, b is flattened if it is an *Alternative.
func AlternateInPlace(a, b Item) *Alternative {
	if alt, ok := a.(*Alternative); ok {
		alt.Sequence.Extend(flatten(KindAlternative, b)...)
		return alt
	}
	return Alternate(a, b)
}

// MixInPlace adds b to a. It modifies and returns a when a is a *Mixed and
// returns a new *Mixed otherwise. See AlternateInPlace.
func MixInPlace(a, b Item) *Mixed {
	if m, ok := a.(*Mixed); ok {
		m.Sequence.Extend(flatten(KindMixed, b)...)
		return m
	}
	return Mix(a, b)
}

// RelateInPlace adds b to a. It modifies and returns a when a is a *Related
// and returns a new *Related otherwise. See AlternateInPlace.
func RelateInPlace(a, b Item) *Related {
	if r, ok := a.(*Related); ok {
		r.Sequence.Extend(flatten(KindRelated, b)...)
		return r
	}
	return Relate(a, b)
}

// flatten returns the children of item if it is a container of the given kind
// and the item alone otherwise.
func flatten(kind string, item Item) []Item {
	if mp, ok := item.(Multipart); ok && mp.Kind() == kind {
		return mp.Parts()
	}
	return []Item{item}
}

func combine(kind string, a, b Item) Sequence {
	var s Sequence
	s.Extend(flatten(kind, a)...)
	s.Extend(flatten(kind, b)...)
	return s
}
