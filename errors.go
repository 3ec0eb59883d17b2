// Package quire is the storage core of a replicated document engine. Values
// that recur throughout a change log (actor identifiers, map keys) are
// interned into dense integer tables, and every operation refers to them by
// index. A document is persisted as a single file: a fixed-size header
// carrying a checksum of the body, followed by the compressed change log.
//
// Bytes arriving from disk or from a peer are untrusted. Load checks them
// under a caller-chosen Policy: Verify rejects anything inconsistent, while
// Skip decodes best-effort and degrades unresolvable indices to an unknown
// identity instead of failing. Documents are written back with a
// temp-file, fsync and rename sequence so a crash never leaves a partial file.
package quire

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling. Every failure returned by Load
// is a *DecodeError wrapping one of the decode sentinels, so errors.Is works
// through it.
var (
	ErrBadMagic         = errors.New("not a quire document")
	ErrTruncated        = errors.New("truncated document")
	ErrCorruptHeader    = errors.New("corrupt header")
	ErrUnsupported      = errors.New("unsupported format")
	ErrChecksum         = errors.New("checksum mismatch")
	ErrDecompress       = errors.New("decompression failed")
	ErrTooLarge         = errors.New("document exceeds maximum size")
	ErrCorruptBody      = errors.New("corrupt body")
	ErrCorruptTable     = errors.New("corrupt interning table")
	ErrCorruptOp        = errors.New("corrupt operation")
	ErrInvalidPolicy    = errors.New("invalid verification policy")
	ErrInvalidActor     = errors.New("invalid actor id")
	ErrUnknownObject    = errors.New("unknown object")
	ErrNotFound         = errors.New("key not found")
	ErrUnsupportedValue = errors.New("unsupported value")
)

// DecodeError reports where in the byte stream a load failed.
type DecodeError struct {
	Section string // "header", "body", "table" or "op"
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("quire: decode %s: %v", e.Section, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Corrupt reports whether the input looked like a quire document but failed
// validation. It is false when the bytes are not a quire document at all or
// use a format this build does not understand.
func (e *DecodeError) Corrupt() bool {
	return !errors.Is(e.Err, ErrBadMagic) && !errors.Is(e.Err, ErrUnsupported)
}

func decodeErr(section string, err error) error {
	return &DecodeError{Section: section, Err: err}
}
