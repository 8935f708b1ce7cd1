package fixture

import "errors"

var (
	ErrUnsupportedSyntax = errors.New("unsupported fixture syntax")
	ErrInvalidFixture    = errors.New("invalid fixture")
	ErrUnknownType       = errors.New("unknown type key")
)
