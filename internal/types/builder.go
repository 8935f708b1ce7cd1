package types

import "errors"

// AggregateBuilder wraps an aggregate shell through its construction phase.
// Every mutation after Finish fails with ErrSealed; the first error is sticky
// and returned again by Finish.
type AggregateBuilder struct {
	reg  *Registry
	id   TypeID
	err  error
	done bool
}

// BeginStruct creates a struct shell and returns its builder.
func (r *Registry) BeginStruct(name string, byteSize uint64, hasDiscriminant bool) *AggregateBuilder {
	return &AggregateBuilder{reg: r, id: r.CreateStruct(name, byteSize, hasDiscriminant)}
}

// BeginTuple creates a tuple shell classified by name.
func (r *Registry) BeginTuple(name string, byteSize uint64, hasDiscriminant bool) *AggregateBuilder {
	return &AggregateBuilder{reg: r, id: r.CreateTuple(name, byteSize, hasDiscriminant)}
}

// BeginUnion creates a union shell.
func (r *Registry) BeginUnion(name string, byteSize uint64) *AggregateBuilder {
	return &AggregateBuilder{reg: r, id: r.CreateUnion(name, byteSize)}
}

// BeginEnum creates a tagged enum shell.
func (r *Registry) BeginEnum(name string, byteSize uint64, discrOffset, discrByteSize uint32) *AggregateBuilder {
	return &AggregateBuilder{reg: r, id: r.CreateEnum(name, byteSize, discrOffset, discrByteSize)}
}

// ID is usable before Finish so that self-referential pointers can be built.
func (b *AggregateBuilder) ID() TypeID { return b.id }

// Err reports the first failure.
func (b *AggregateBuilder) Err() error { return b.err }

func (b *AggregateBuilder) apply(fn func() error) *AggregateBuilder {
	if b.err != nil {
		return b
	}
	if b.done {
		b.err = ErrSealed
		return b
	}
	b.err = fn()
	return b
}

// Field appends a named (or, with "", unnamed) field.
func (b *AggregateBuilder) Field(name string, t TypeID, offset uint64) *AggregateBuilder {
	return b.apply(func() error { return b.reg.AddField(b.id, name, t, offset) })
}

// Variant appends an enum variant selected by value.
func (b *AggregateBuilder) Variant(name string, t TypeID, offset uint64, value uint64) *AggregateBuilder {
	return b.apply(func() error {
		return b.reg.AddEnumVariant(b.id, name, t, offset, Discriminant{Value: value})
	})
}

// DefaultVariant appends the enum variant used when no value matches.
func (b *AggregateBuilder) DefaultVariant(name string, t TypeID, offset uint64) *AggregateBuilder {
	return b.apply(func() error {
		return b.reg.AddEnumVariant(b.id, name, t, offset, Discriminant{Default: true})
	})
}

// TemplateArg records a generic argument.
func (b *AggregateBuilder) TemplateArg(t TypeID) *AggregateBuilder {
	return b.apply(func() error { return b.reg.AddTemplateArgument(b.id, t) })
}

// Finish seals the aggregate and returns its handle.
func (b *AggregateBuilder) Finish() (TypeID, error) {
	if b.err != nil {
		return b.id, b.err
	}
	if b.done {
		return b.id, ErrSealed
	}
	b.done = true
	if err := b.reg.FinishAggregateInitialization(b.id); err != nil {
		b.err = err
		return b.id, err
	}
	return b.id, nil
}

// MustFinish panics on failure. It is meant for hand-built fixtures.
func (b *AggregateBuilder) MustFinish() TypeID {
	id, err := b.Finish()
	if err != nil {
		panic(errors.Join(errors.New("types: finishing aggregate"), err))
	}
	return id
}
