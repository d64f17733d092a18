package parser

// FieldState distinguishes an absent frontmatter key from one that is
// present but unusable. Validation reads the state instead of guessing from
// zero values.
type FieldState int

const (
	FieldAbsent FieldState = iota
	FieldPresent
	FieldInvalid
)

// Field is one frontmatter field with an explicit present/absent/invalid
// state. Reason is set only for invalid fields.
type Field[T any] struct {
	State  FieldState
	Value  T
	Reason string
}

// Present reports whether the field was given a usable value.
func (f Field[T]) Present() bool { return f.State == FieldPresent }

// Invalid reports whether the field was given but could not be interpreted.
func (f Field[T]) Invalid() bool { return f.State == FieldInvalid }

func absent[T any]() Field[T] {
	return Field[T]{State: FieldAbsent}
}

func present[T any](v T) Field[T] {
	return Field[T]{State: FieldPresent, Value: v}
}

func invalid[T any](reason string) Field[T] {
	return Field[T]{State: FieldInvalid, Reason: reason}
}
