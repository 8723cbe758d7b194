package store

import (
	"strconv"

	"github.com/jmgilman/go/errors"
)

// Kind is the type of a stored value.
type Kind int

const (
	KindText Kind = iota
	KindBytes
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return "unknown"
}

// Value is one of text, raw bytes, integer or float. Numbers are written in
// decimal text the same way Redis stores them, so the store holds the bytes
// and callers choose how to decode them.
type Value struct {
	kind Kind
	raw  []byte
}

func Text(s string) Value { return Value{kind: KindText, raw: []byte(s)} }

func Bytes(b []byte) Value { return Value{kind: KindBytes, raw: append([]byte(nil), b...)} }

func Int(i int64) Value { return Value{kind: KindInt, raw: strconv.AppendInt(nil, i, 10)} }

func Float(f float64) Value {
	return Value{kind: KindFloat, raw: strconv.AppendFloat(nil, f, 'g', -1, 64)}
}

func (v Value) Kind() Kind { return v.kind }

// Encode returns the bytes written to the store.
func (v Value) Encode() []byte { return v.raw }

// Args renders the value as the single positional argument of a Store call.
func (v Value) Args() []string {
	switch v.kind {
	case KindText:
		return []string{strconv.Quote(string(v.raw))}
	case KindBytes:
		return []string{"b" + strconv.Quote(string(v.raw))}
	}
	return []string{string(v.raw)}
}

// ParseValue builds a Value of the named kind from its text form.
func ParseValue(kind, s string) (Value, error) {
	switch kind {
	case "", "text":
		return Text(s), nil
	case "bytes":
		return Bytes([]byte(s)), nil
	case "int":
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, errors.CodeInvalidInput, "parse %q as int", s)
		}
		return Int(i), nil
	case "float":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, errors.CodeInvalidInput, "parse %q as float", s)
		}
		return Float(f), nil
	}
	return Value{}, errors.Newf(errors.CodeInvalidInput, "unknown value kind %q", kind)
}
