package mailitem

import "fmt"

// Container kinds, as used in error messages and by Kind.
const (
	KindMixed       = "Mixed"
	KindAlternative = "Alternative"
	KindRelated     = "Related"
)

// Multipart is implemented by *Mixed, *Alternative, and *Related.
type Multipart interface {
	Item

	// Kind returns one of KindMixed, KindAlternative, or KindRelated.
	Kind() string

	// Subtype returns the subtype of the multipart content type this container
	// renders as, e.g. "mixed".
	Subtype() string

	// Parts returns the children of the container. The returned slice is
	// the container's own storage.
	Parts() []Item

	// Len returns the number of children.
	Len() int

	isMultipart()
}

// Sequence is the ordered list of children shared by all the containers.
// Index arguments may be negative, in which case they count back from the
// end, so -1 is the last child.
type Sequence struct {
	Content []Item
}

// Mixed is a multipart/mixed container.
type Mixed struct {
	Sequence
	ContentID string
}

// Alternative is a multipart/alternative container.
type Alternative struct {
	Sequence
	ContentID string
}

// Related is a multipart/related container. Start, if set, names the
// Content-ID of the root part of the relation.
type Related struct {
	Sequence
	ContentID string
	Start     string
}

var (
	_ Multipart = (*Mixed)(nil)
	_ Multipart = (*Alternative)(nil)
	_ Multipart = (*Related)(nil)
)

// NewMixed returns a multipart/mixed container holding the given items.
func NewMixed(items ...Item) *Mixed {
	return &Mixed{Sequence: newSequence(items)}
}

// NewAlternative returns a multipart/alternative container holding the given
// items.
func NewAlternative(items ...Item) *Alternative {
	return &Alternative{Sequence: newSequence(items)}
}

// NewRelated returns a multipart/related container holding the given items.
func NewRelated(items ...Item) *Related {
	return &Related{Sequence: newSequence(items)}
}

// New returns an empty container of the given kind or nil if the kind is
// unknown.
func New(kind string, items ...Item) Multipart {
	switch kind {
	case KindMixed:
		return NewMixed(items...)
	case KindAlternative:
		return NewAlternative(items...)
	case KindRelated:
		return NewRelated(items...)
	}
	return nil
}

func newSequence(items []Item) Sequence {
	return Sequence{Content: append(make([]Item, 0, len(items)), items...)}
}

func (*Mixed) isItem()       {}
func (*Alternative) isItem() {}
func (*Related) isItem()     {}

func (*Mixed) isMultipart()       {}
func (*Alternative) isMultipart() {}
func (*Related) isMultipart()     {}

// GetContentID returns the Content-ID.
func (m *Mixed) GetContentID() string { return m.ContentID }

// GetContentID returns the Content-ID.
func (m *Alternative) GetContentID() string { return m.ContentID }

// GetContentID returns the Content-ID.
func (m *Related) GetContentID() string { return m.ContentID }

// Kind returns KindMixed.
func (*Mixed) Kind() string { return KindMixed }

// Kind returns KindAlternative.
func (*Alternative) Kind() string { return KindAlternative }

// Kind returns KindRelated.
func (*Related) Kind() string { return KindRelated }

// Subtype returns "mixed".
func (*Mixed) Subtype() string { return "mixed" }

// Subtype returns "alternative".
func (*Alternative) Subtype() string { return "alternative" }

// Subtype returns "related".
func (*Related) Subtype() string { return "related" }

// Slice returns a new Mixed holding the children from start up to end. The
// new container has no Content-ID.
func (m *Mixed) Slice(start, end int) *Mixed {
	return &Mixed{Sequence: m.slice(start, end)}
}

// Slice returns a new Alternative holding the children from start up to end.
// The new container has no Content-ID.
func (m *Alternative) Slice(start, end int) *Alternative {
	return &Alternative{Sequence: m.slice(start, end)}
}

// Slice returns a new Related holding the children from start up to end. The
// new container has no Content-ID or Start.
func (m *Related) Slice(start, end int) *Related {
	return &Related{Sequence: m.slice(start, end)}
}

// Parts returns the children.
func (s *Sequence) Parts() []Item {
	return s.Content
}

// Len returns the number of children.
func (s *Sequence) Len() int {
	return len(s.Content)
}

// index resolves a possibly negative index to a position in the list.
func (s *Sequence) index(i int) (int, error) {
	n := len(s.Content)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
	return i, nil
}

// bounds resolves a pair of slice indexes, clamping them to the list.
func (s *Sequence) bounds(start, end int) (int, int) {
	n := len(s.Content)
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		if i < 0 {
			return 0
		}
		if i > n {
			return n
		}
		return i
	}

	start, end = clamp(start), clamp(end)
	if end < start {
		end = start
	}
	return start, end
}

func (s *Sequence) slice(start, end int) Sequence {
	start, end = s.bounds(start, end)
	return newSequence(s.Content[start:end])
}

// Get returns the child at index i.
func (s *Sequence) Get(i int) (Item, error) {
	i, err := s.index(i)
	if err != nil {
		return nil, err
	}
	return s.Content[i], nil
}

// Set replaces the child at index i.
func (s *Sequence) Set(i int, item Item) error {
	i, err := s.index(i)
	if err != nil {
		return err
	}
	s.Content[i] = item
	return nil
}

// Delete removes the child at index i.
func (s *Sequence) Delete(i int) error {
	i, err := s.index(i)
	if err != nil {
		return err
	}
	s.Content = append(s.Content[:i], s.Content[i+1:]...)
	return nil
}

// SetSlice replaces the children from start up to end with the given items.
// The number of items need not match the length of the replaced range.
func (s *Sequence) SetSlice(start, end int, items ...Item) {
	start, end = s.bounds(start, end)
	nc := make([]Item, 0, len(s.Content)-(end-start)+len(items))
	nc = append(nc, s.Content[:start]...)
	nc = append(nc, items...)
	nc = append(nc, s.Content[end:]...)
	s.Content = nc
}

// DeleteSlice removes the children from start up to end.
func (s *Sequence) DeleteSlice(start, end int) {
	s.SetSlice(start, end)
}

// Append adds an item to the end.
func (s *Sequence) Append(item Item) {
	s.Content = append(s.Content, item)
}

// Insert puts the item before index i. An index past either end inserts at
// that end.
func (s *Sequence) Insert(i int, item Item) {
	i, _ = s.bounds(i, i)
	s.SetSlice(i, i, item)
}

// Extend adds the items to the end in order.
func (s *Sequence) Extend(items ...Item) {
	s.Content = append(s.Content, items...)
}

// Concat adds the children of the other container to the end in order.
func (s *Sequence) Concat(other Multipart) {
	s.Extend(other.Parts()...)
}

// Reverse reverses the children in place.
func (s *Sequence) Reverse() {
	for i, j := 0, len(s.Content)-1; i < j; i, j = i+1, j-1 {
		s.Content[i], s.Content[j] = s.Content[j], s.Content[i]
	}
}

// Pop removes and returns the child at index i. Use -1 for the last child.
func (s *Sequence) Pop(i int) (Item, error) {
	i, err := s.index(i)
	if err != nil {
		return nil, err
	}
	item := s.Content[i]
	s.Content = append(s.Content[:i], s.Content[i+1:]...)
	return item, nil
}

// Remove removes the first child that is Equal to item. It returns
// ErrNotFound if there is none.
func (s *Sequence) Remove(item Item) error {
	for i, c := range s.Content {
		if Equal(c, item) {
			s.Content = append(s.Content[:i], s.Content[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
