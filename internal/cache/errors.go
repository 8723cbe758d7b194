package cache

import (
	stderrors "errors"

	"github.com/jmgilman/go/errors"
)

var (
	ErrNotFound   = stderrors.New("cache: not found")
	ErrExpired    = stderrors.New("cache: expired")
	ErrWrongType  = stderrors.New("cache: wrong kind of value")
	ErrNotInteger = stderrors.New("cache: value is not an integer")
)

// IsMiss reports whether err means the key holds no live value.
func IsMiss(err error) bool {
	return stderrors.Is(err, ErrNotFound) || stderrors.Is(err, ErrExpired)
}

// IsUnavailable reports whether err came from a store that could not be reached.
func IsUnavailable(err error) bool {
	return errors.GetCode(err) == errors.CodeUnavailable
}

func unavailable(err error, op string) error {
	return errors.Wrapf(err, errors.CodeUnavailable, "store unavailable during %s", op)
}

// sentinels lets errors cross the daemon socket and come back as the same value.
var sentinels = []error{ErrNotFound, ErrExpired, ErrWrongType, ErrNotInteger}

func sentinelFor(msg string) error {
	for _, s := range sentinels {
		if s.Error() == msg {
			return s
		}
	}
	return nil
}
