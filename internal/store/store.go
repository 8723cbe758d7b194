// Package store keeps arbitrary scalar values in a KV store under random keys.
package store

import (
	"context"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
	"github.com/paxxchal/alx-backend-storage/internal/instrument"
)

// StoreOp names the instrumented Store operation in counts and history.
const StoreOp = "Cache.Store"

// Cache stores values under fresh random keys.
type Cache struct {
	kv cache.KV
}

// New returns a Cache on kv. The store is flushed first.
func New(ctx context.Context, kv cache.KV) (*Cache, error) {
	if err := kv.FlushDB(ctx); err != nil {
		return nil, err
	}
	return Attach(kv), nil
}

// Attach returns a Cache on kv without flushing it, for processes joining a
// store another process already initialized.
func Attach(kv cache.KV) *Cache {
	return &Cache{kv: kv}
}

// KV exposes the underlying store, e.g. for reading counts or replaying history.
func (c *Cache) KV() cache.KV { return c.kv }

// Store writes v under a new random key and returns the key.
func (c *Cache) Store(ctx context.Context, v Value) (string, error) {
	key := uuid.NewString()
	if err := c.kv.Set(ctx, key, v.Encode()); err != nil {
		return "", err
	}
	return key, nil
}

// Retrieve returns the raw bytes at key. ok is false when nothing is stored.
func (c *Cache) Retrieve(ctx context.Context, key string) (data []byte, ok bool, err error) {
	data, err = c.kv.Get(ctx, key)
	if cache.IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// RetrieveAs reads key and applies decode to the bytes. decode is not called
// when the key is absent. A decode failure is returned as an invalid input
// error wrapping the decoder's error.
func RetrieveAs[T any](ctx context.Context, c *Cache, key string, decode func([]byte) (T, error)) (T, bool, error) {
	var zero T
	data, ok, err := c.Retrieve(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := decode(data)
	if err != nil {
		return zero, true, errors.Wrapf(err, errors.CodeInvalidInput, "decode value at %s", key)
	}
	return v, true, nil
}

// RetrieveString decodes the value at key as UTF-8 text.
func (c *Cache) RetrieveString(ctx context.Context, key string) (string, bool, error) {
	return RetrieveAs(ctx, c, key, DecodeString)
}

// RetrieveInt decodes the value at key as a base 10 integer.
func (c *Cache) RetrieveInt(ctx context.Context, key string) (int64, bool, error) {
	return RetrieveAs(ctx, c, key, DecodeInt)
}

// RetrieveFloat decodes the value at key as a float.
func (c *Cache) RetrieveFloat(ctx context.Context, key string) (float64, bool, error) {
	return RetrieveAs(ctx, c, key, DecodeFloat)
}

func DecodeString(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.New(errors.CodeInvalidInput, "value is not valid UTF-8")
	}
	return string(b), nil
}

func DecodeInt(b []byte) (int64, error) {
	return strconv.ParseInt(string(b), 10, 64)
}

func DecodeFloat(b []byte) (float64, error) {
	return strconv.ParseFloat(string(b), 64)
}

// Instrumented is a Cache whose Store is counted and recorded under StoreOp.
type Instrumented struct {
	*Cache
	store instrument.Func[Value, string]
}

// NewInstrumented returns a flushed Cache with counting and history on Store.
// Recording wraps counting, so the history sees already counted calls.
func NewInstrumented(ctx context.Context, kv cache.KV) (*Instrumented, error) {
	c, err := New(ctx, kv)
	if err != nil {
		return nil, err
	}
	return Instrument(c), nil
}

// Instrument adds counting and history to c's Store.
func Instrument(c *Cache) *Instrumented {
	op := instrument.CallHistory(c.kv, StoreOp, instrument.CountCalls[Value, string](c.kv, StoreOp, c.Store))
	return &Instrumented{Cache: c, store: op}
}

// Store writes v under a new random key, counting and recording the call.
func (i *Instrumented) Store(ctx context.Context, v Value) (string, error) {
	return i.store(ctx, v)
}

// Calls returns how many times Store has been called.
func (i *Instrumented) Calls(ctx context.Context) (int64, error) {
	n, _, err := RetrieveAs(ctx, i.Cache, StoreOp, DecodeInt)
	return n, err
}

// RetrieveKind reads key with the decoder for kind ("text", "bytes", "int"
// or "float") and renders the result as text.
func (c *Cache) RetrieveKind(ctx context.Context, key, kind string) (string, bool, error) {
	switch kind {
	case "int":
		n, ok, err := c.RetrieveInt(ctx, key)
		return strconv.FormatInt(n, 10), ok, err
	case "float":
		f, ok, err := c.RetrieveFloat(ctx, key)
		return strconv.FormatFloat(f, 'g', -1, 64), ok, err
	case "bytes":
		b, ok, err := c.Retrieve(ctx, key)
		return strconv.Quote(string(b)), ok, err
	case "", "text":
		return c.RetrieveString(ctx, key)
	}
	return "", false, errors.Newf(errors.CodeInvalidInput, "unknown value kind %q", kind)
}
