package ipv4

import "errors"

// Sentinel errors returned (wrapped) by Parse. Use errors.Is to check for them.
var (
	// ErrEmpty indicates the input string was empty.
	ErrEmpty = errors.New("empty address")

	// ErrOctet indicates a missing, non-numeric or out of range octet.
	ErrOctet = errors.New("invalid octet")

	// ErrDelimiter indicates a delimiter other than '.' between octets or '/' before the mask.
	ErrDelimiter = errors.New("invalid delimiter")

	// ErrMask indicates a missing mask after '/' or a mask outside 1..32.
	ErrMask = errors.New("invalid mask")

	// ErrTrailing indicates content after a fully consumed mask.
	ErrTrailing = errors.New("trailing characters")
)
