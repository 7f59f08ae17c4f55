package decompose

// DefaultMaxDepth is the default limit on how deeply multipart parts may be
// nested.
const DefaultMaxDepth = 10

type decomposer struct {
	maxDepth       int
	maxHeaderBytes int64
}

// Option modifies how Decompose and Parse work.
type Option func(d *decomposer)

// WithMaxDepth sets how many levels of multipart nesting will be decomposed
// before failing with ErrTooDeep. A value of 0 refuses every multipart
// message. The default is DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(d *decomposer) { d.maxDepth = n }
}

// WithUnlimitedDepth removes the limit on multipart nesting.
func WithUnlimitedDepth() Option {
	return func(d *decomposer) { d.maxDepth = -1 }
}

// WithMaxHeaderBytes limits the size of the top-level header read by Parse.
// Set it to -1 for no limit. The default is the parser's own limit of 1MB.
func WithMaxHeaderBytes(n int64) Option {
	return func(d *decomposer) { d.maxHeaderBytes = n }
}

func newDecomposer(opts []Option) *decomposer {
	d := &decomposer{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
