package decompose

import "errors"

// Errors returned while decomposing a message.
var (
	// ErrMalformedPart is returned when a part of a multipart message cannot
	// be read as a message part at all. The parser error is wrapped with it.
	ErrMalformedPart = errors.New("malformed message part")

	// ErrTooDeep is returned when multipart parts are nested deeper than the
	// limit set by WithMaxDepth.
	ErrTooDeep = errors.New("multipart parts nested too deeply")
)

// DecompositionError is returned when a message contains a part whose content
// type has no mail item to represent it, such as multipart/signed.
type DecompositionError struct {
	// ContentType is the unsupported "maintype/subtype".
	ContentType string
}

// Error returns a message naming the unsupported content type.
func (e *DecompositionError) Error() string {
	return "unsupported content type: " + e.ContentType
}

// SimplificationError is returned when a message does not have a shape that
// can be simplified. The Reason says which part of the shape is wrong.
type SimplificationError struct {
	Reason string
}

// Error returns the Reason.
func (e *SimplificationError) Error() string {
	return e.Reason
}

// MixedContentError is the SimplificationError returned when a multipart/mixed
// has attachments before a body. Simplifying again with unmix set will
// succeed where this is the only problem.
type MixedContentError struct {
	SimplificationError
}

// Unwrap returns the embedded SimplificationError so that errors.As finds it.
func (e *MixedContentError) Unwrap() error {
	return &e.SimplificationError
}

func simplificationError(reason string) error {
	return &SimplificationError{Reason: reason}
}
