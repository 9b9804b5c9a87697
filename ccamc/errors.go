package ccamc

import (
	"errors"
	"fmt"
)

// errorType is a plain string implementing error, in the style of the
// teacher pack's store/types sentinel errors: comparable with errors.Is
// and cheap to construct.
type errorType string

func (e errorType) Error() string { return string(e) }

// ErrorKind classifies a failure per the six error policies: corrupt
// input is skip-and-continue, corrupt store is fatal, not-found yields an
// absent result, integrity failures are reported without mutating the
// store, I/O errors propagate, and usage errors are a CLI concern.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindCorruptInput
	KindCorruptStore
	KindNotFound
	KindIntegrity
	KindIO
	KindUsage
)

func (k ErrorKind) String() string {
	switch k {
	case KindCorruptInput:
		return "corrupt-input"
	case KindCorruptStore:
		return "corrupt-store"
	case KindNotFound:
		return "not-found"
	case KindIntegrity:
		return "integrity"
	case KindIO:
		return "io"
	case KindUsage:
		return "usage"
	default:
		return "unknown"
	}
}

// KindedError pairs an ErrorKind with the underlying cause so that callers
// at the CLI boundary can map errors.As(err, &KindedError{}) to an exit code
// without parsing error strings.
type KindedError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *KindedError) Unwrap() error { return e.Err }

func wrapErr(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &KindedError{Kind: kind, Err: err}
}

// Kind reports the ErrorKind of err, or KindUnknown if err does not carry one.
func Kind(err error) ErrorKind {
	var ke *KindedError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindUnknown
}

const (
	// ErrNotFound indicates a missing game, source label, or blob.
	ErrNotFound = errorType("ccamc: not found")
	// ErrCorruptStore indicates a structurally invalid on-disk record.
	ErrCorruptStore = errorType("ccamc: corrupt store")
	// ErrCorruptInput indicates a malformed PGN game or ECO catalog line.
	ErrCorruptInput = errorType("ccamc: corrupt input")
	// ErrBrokenChain indicates a blob's parent_hash is not present in the pack.
	ErrBrokenChain = errorType("ccamc: broken blob chain")
	// ErrVariationDepthExceeded indicates nested variations beyond MaxVariationDepth.
	ErrVariationDepthExceeded = errorType("ccamc: variation nesting too deep")
)
