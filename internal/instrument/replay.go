package instrument

import (
	"context"
	"fmt"
	"io"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
)

// Call is one recorded invocation.
type Call struct {
	Input  string
	Output string
}

// History returns the recorded calls of name in call order and the number of
// recorded inputs. The count can exceed len(calls) only while a call is in
// flight.
func History(ctx context.Context, kv cache.KV, name string) ([]Call, int, error) {
	inputs, err := kv.LRange(ctx, InputsKey(name), 0, -1)
	if err != nil {
		return nil, 0, err
	}
	outputs, err := kv.LRange(ctx, OutputsKey(name), 0, -1)
	if err != nil {
		return nil, 0, err
	}
	n := min(len(inputs), len(outputs))
	calls := make([]Call, n)
	for i := range n {
		calls[i] = Call{Input: inputs[i], Output: outputs[i]}
	}
	return calls, len(inputs), nil
}

// Replay writes a human readable trace of the calls recorded for name.
func Replay(ctx context.Context, kv cache.KV, w io.Writer, name string) error {
	calls, count, err := History(ctx, kv, name)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s was called %d times:\n", name, count); err != nil {
		return err
	}
	for _, c := range calls {
		if _, err := fmt.Fprintf(w, "%s(*%s) -> %s\n", name, c.Input, c.Output); err != nil {
			return err
		}
	}
	return nil
}
