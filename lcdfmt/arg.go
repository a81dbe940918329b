package lcdfmt

import (
	"errors"
	"fmt"
)

// Kind identifies the type carried by an Arg.
type Kind uint8

const (
	KindInt    Kind = iota // 16-bit signed integer
	KindUint               // 16-bit unsigned integer
	KindLong               // 32-bit signed integer
	KindString             // byte string, ends at the first NUL
	KindFloat              // floating point
	KindChar               // single byte
)

var kindNames = [...]string{
	KindInt:    "int",
	KindUint:   "uint",
	KindLong:   "long",
	KindString: "string",
	KindFloat:  "float",
	KindChar:   "char",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Arg is one formatting argument. The zero value is an Int holding 0.
//
// Args are built with Int, Uint, Long, Str, Float and Char; the set of kinds
// is closed.
type Arg struct {
	kind Kind
	n    int64
	s    string
	f    float64
}

// Int returns a 16-bit signed integer argument.
func Int(v int16) Arg { return Arg{kind: KindInt, n: int64(v)} }

// Uint returns a 16-bit unsigned integer argument.
func Uint(v uint16) Arg { return Arg{kind: KindUint, n: int64(v)} }

// Long returns a 32-bit signed integer argument, for use with the l or j
// length modifier.
func Long(v int32) Arg { return Arg{kind: KindLong, n: int64(v)} }

// Str returns a string argument for %s and %S. Only the bytes before the
// first NUL are rendered.
func Str(v string) Arg { return Arg{kind: KindString, s: v} }

// Float returns a floating point argument for %f.
func Float(v float64) Arg { return Arg{kind: KindFloat, f: v} }

// Char returns a single byte argument for %c.
func Char(v byte) Arg { return Arg{kind: KindChar, n: int64(v)} }

// Kind returns the kind of a.
func (a Arg) Kind() Kind { return a.kind }

// integer reports whether a can feed an integer conversion.
func (a Arg) integer() bool {
	switch a.kind {
	case KindInt, KindUint, KindLong, KindChar:
		return true
	}
	return false
}

func (a Arg) String() string {
	switch a.kind {
	case KindString:
		return fmt.Sprintf("%s(%q)", a.kind, a.s)
	case KindFloat:
		return fmt.Sprintf("%s(%g)", a.kind, a.f)
	}
	return fmt.Sprintf("%s(%d)", a.kind, a.n)
}

// ErrMissingArg is returned when a conversion needs more arguments than were
// supplied.
var ErrMissingArg = errors.New("lcdfmt: missing argument")

// ErrNonFinite is returned when %f is given an infinity or NaN.
var ErrNonFinite = errors.New("lcdfmt: non-finite float")

// ArgError reports an argument whose kind does not fit its conversion.
type ArgError struct {
	Index int  // position in the argument list
	Verb  byte // conversion character, or '*' for a width or precision
	Got   Kind
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("lcdfmt: %%%c cannot use %s argument #%d", e.Verb, e.Got, e.Index)
}
