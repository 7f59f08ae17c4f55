package mailitem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/eletter/mailitem"
)

func TestCombineFlattening(t *testing.T) {
	t.Parallel()

	a, b, c, d := mailitem.NewTextBody("a"), mailitem.NewTextBody("b"),
		mailitem.NewTextBody("c"), mailitem.NewTextBody("d")

	alt := mailitem.Alternate(mailitem.Alternate(a, b), mailitem.Alternate(c, d))
	assert.True(t, mailitem.Equal(mailitem.NewAlternative(a, b, c, d), alt))

	mix := mailitem.Mix(mailitem.Mix(a, b), mailitem.Mix(c, d))
	assert.True(t, mailitem.Equal(mailitem.NewMixed(a, b, c, d), mix))

	rel := mailitem.Relate(mailitem.Relate(a, b), mailitem.Relate(c, d))
	assert.True(t, mailitem.Equal(mailitem.NewRelated(a, b, c, d), rel))
}

func TestCombineKindScoped(t *testing.T) {
	t.Parallel()

	text, html := mailitem.NewTextBody("t"), mailitem.NewHTMLBody("h")
	att := &mailitem.BytesAttachment{Content: []byte("x"), Filename: "x.bin"}

	alt := mailitem.Alternate(text, html)
	mix := mailitem.Mix(alt, att)
	assert.Equal(t, 2, mix.Len())
	assert.Same(t, alt, mix.Content[0])

	mix2 := mailitem.Mix(mailitem.NewAlternative(text), mailitem.NewRelated(html))
	assert.Equal(t, 2, mix2.Len())
	assert.IsType(t, &mailitem.Alternative{}, mix2.Content[0])
	assert.IsType(t, &mailitem.Related{}, mix2.Content[1])
}

func TestCombineDropsContainerIDs(t *testing.T) {
	t.Parallel()

	r := mailitem.NewRelated(mailitem.NewHTMLBody("h"))
	r.ContentID = "<r@example.com>"
	r.Start = "<h@example.com>"

	out := mailitem.Relate(r, mailitem.NewTextBody("t"))
	assert.NotSame(t, r, out)
	assert.Equal(t, "", out.ContentID)
	assert.Equal(t, "", out.Start)
	assert.Equal(t, 2, out.Len())
}

func TestCombineInPlace(t *testing.T) {
	t.Parallel()

	a, b, c := mailitem.NewTextBody("a"), mailitem.NewTextBody("b"), mailitem.NewTextBody("c")

	t.Run("same kind mutates", func(t *testing.T) {
		t.Parallel()

		alt := mailitem.NewAlternative(a)
		alt.ContentID = "<keep@example.com>"
		got := mailitem.AlternateInPlace(alt, mailitem.NewAlternative(b, c))
		assert.Same(t, alt, got)
		assert.Equal(t, 3, alt.Len())
		assert.Equal(t, "<keep@example.com>", got.ContentID)

		got = mailitem.AlternateInPlace(alt, mailitem.NewMixed(a))
		assert.Same(t, alt, got)
		assert.Equal(t, 4, alt.Len())
		assert.IsType(t, &mailitem.Mixed{}, alt.Content[3])
	})

	t.Run("other kind builds new", func(t *testing.T) {
		t.Parallel()

		mix := mailitem.NewMixed(a, b)
		got := mailitem.AlternateInPlace(mix, c)
		assert.Equal(t, 2, mix.Len())
		assert.Equal(t, 2, got.Len())
		assert.Same(t, mix, got.Content[0])

		leaf := mailitem.NewTextBody("x")
		gotMix := mailitem.MixInPlace(leaf, mailitem.NewMixed(a, b))
		assert.Equal(t, 3, gotMix.Len())
		assert.Same(t, leaf, gotMix.Content[0])
	})

	t.Run("related", func(t *testing.T) {
		t.Parallel()

		rel := mailitem.NewRelated(a)
		assert.Same(t, rel, mailitem.RelateInPlace(rel, mailitem.NewRelated(b)))
		assert.Equal(t, 2, rel.Len())

		got := mailitem.RelateInPlace(mailitem.NewMixed(a), b)
		assert.Equal(t, 2, got.Len())
	})

	t.Run("mixed", func(t *testing.T) {
		t.Parallel()

		mix := mailitem.NewMixed()
		assert.Same(t, mix, mailitem.MixInPlace(mix, a))
		assert.Same(t, mix, mailitem.MixInPlace(mix, mailitem.NewMixed(b, c)))
		assert.Equal(t, 3, mix.Len())
	})
}
