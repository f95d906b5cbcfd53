package wasm

import "errors"

// Sentinel errors returned by the builder and its supporting registries.
// Call sites wrap these with fmt.Errorf("...: %w", ..., ErrX) so callers
// can still match with errors.Is.
var (
	ErrBufferFull              = errors.New("buffer full")
	ErrByteOutOfRange          = errors.New("byte out of range")
	ErrDuplicateName           = errors.New("duplicate name")
	ErrInvalidPermanentOrder   = errors.New("permanent type defined after non-permanent type")
	ErrUnknownType             = errors.New("unknown function type")
	ErrUnknownLocal            = errors.New("unknown local")
	ErrUnknownImport           = errors.New("unknown import")
	ErrStackEmpty              = errors.New("buffer stack empty")
	ErrUnclosedBlocks          = errors.New("function ended with unclosed blocks")
	ErrEncoderFailure          = errors.New("leb128 encoder failure")
	ErrNullFunction            = errors.New("null function pointer")
	ErrInvalidMagicNumber      = errors.New("invalid magic number")
	ErrInvalidVersion          = errors.New("invalid version header")
)
