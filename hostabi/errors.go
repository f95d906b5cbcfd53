package hostabi

import "errors"

var (
	ErrUnknownMember = errors.New("unknown member offset")
	ErrEncoderFailure = errors.New("leb128 encoder: dest too small for the encoding")
)
