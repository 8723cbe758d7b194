// Package instrument wraps store operations with call counting and call
// history, and replays the recorded history.
//
// Wrappers take and return the same Func signature, so they compose like
// middleware:
//
//	op := instrument.CallHistory(kv, "Cache.Store", instrument.CountCalls(kv, "Cache.Store", store))
//
// Counts live at the key "<name>", history at "<name>:inputs" and
// "<name>:outputs".
package instrument

import (
	"context"
	"fmt"
	"strings"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
)

// Func is an operation that can be instrumented.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Arguments is implemented by inputs that know their positional arguments.
type Arguments interface {
	Args() []string
}

// InputsKey is the list holding input snapshots for name.
func InputsKey(name string) string { return name + ":inputs" }

// OutputsKey is the list holding output snapshots for name.
func OutputsKey(name string) string { return name + ":outputs" }

// CountCalls increments the counter at key name once per call, then runs next.
// If the counter cannot be incremented, next is not run.
func CountCalls[In, Out any](kv cache.KV, name string, next Func[In, Out]) Func[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		if _, err := kv.Incr(ctx, name); err != nil {
			var zero Out
			return zero, err
		}
		return next(ctx, in)
	}
}

// CallHistory appends a snapshot of the input before running next and a
// snapshot of the result after it. The result of next is returned untouched.
// A failed call records "error: <msg>" so both lists keep the same length.
func CallHistory[In, Out any](kv cache.KV, name string, next Func[In, Out]) Func[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		if _, err := kv.RPush(ctx, InputsKey(name), Snapshot(in)); err != nil {
			var zero Out
			return zero, err
		}
		out, callErr := next(ctx, in)
		snap := Snapshot(out)
		if callErr != nil {
			snap = "error: " + callErr.Error()
		}
		// The caller already has a result; a failed write here is reported only
		// when the call itself succeeded.
		if _, err := kv.RPush(ctx, OutputsKey(name), snap); err != nil && callErr == nil {
			return out, err
		}
		return out, callErr
	}
}

// Snapshot renders v for the call history. Arguments render as a
// parenthesized, comma separated list.
func Snapshot(v any) string {
	if a, ok := v.(Arguments); ok {
		return "(" + strings.Join(a.Args(), ", ") + ")"
	}
	return fmt.Sprint(v)
}
