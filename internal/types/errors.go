package types

import "errors"

var (
	// ErrInvalidHandle is returned when a handle is absent or owned by another registry.
	ErrInvalidHandle = errors.New("invalid type handle")
	// ErrNotAggregate is returned when a field operation targets a non-aggregate.
	ErrNotAggregate = errors.New("type is not an aggregate")
	// ErrNotEnum is returned for discriminant operations on a non-enum.
	ErrNotEnum = errors.New("type is not a tagged enum")
	// ErrSealed is returned when a sealed aggregate is mutated or sealed twice.
	ErrSealed = errors.New("aggregate already sealed")
	// ErrNotSealed is returned when an enum is resolved before it is sealed.
	ErrNotSealed = errors.New("enum not sealed")
	// ErrNoVariant is returned when a discriminant is recorded before any field.
	ErrNoVariant = errors.New("no variant to attribute discriminant to")
)
