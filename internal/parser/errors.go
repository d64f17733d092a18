package parser

import "fmt"

// ErrKind classifies frontmatter failures. MissingFrontmatter and
// MalformedFrontmatter are distinct on purpose: the first means the file has
// no metadata block at all, the second that a block exists but cannot be
// used, and the fix differs for the user.
type ErrKind int

const (
	KindMissingFrontmatter ErrKind = iota
	KindMalformedFrontmatter
	KindMissingField
	KindInvalidField
)

// String returns the stable identifier used in reports.
func (k ErrKind) String() string {
	switch k {
	case KindMissingFrontmatter:
		return "missing_frontmatter"
	case KindMalformedFrontmatter:
		return "malformed_frontmatter"
	case KindMissingField:
		return "missing_field"
	case KindInvalidField:
		return "invalid_field"
	}
	return "unknown"
}

// Error is a structured frontmatter failure. It is a value, not just a
// message, so health reporting can keep the kind.
type Error struct {
	Kind   ErrKind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func errMissingFrontmatter() *Error {
	return &Error{Kind: KindMissingFrontmatter, Detail: "no frontmatter block"}
}

func errMalformed(detail string) *Error {
	return &Error{Kind: KindMalformedFrontmatter, Detail: detail}
}

func errMissingField(field string) *Error {
	return &Error{Kind: KindMissingField, Detail: fmt.Sprintf("required field %q is missing", field)}
}

func errInvalidField(field string, reason string) *Error {
	return &Error{Kind: KindInvalidField, Detail: fmt.Sprintf("field %q: %s", field, reason)}
}
