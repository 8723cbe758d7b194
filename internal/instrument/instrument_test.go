package instrument

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
	"github.com/paxxchal/alx-backend-storage/internal/cache/cachetest"
)

type pair struct{ a, b string }

func (p pair) Args() []string { return []string{p.a, p.b} }

func join(_ context.Context, p pair) (string, error) { return p.a + p.b, nil }

func TestCountCalls(t *testing.T) {
	ctx := context.Background()
	kv, _ := cachetest.NewStore(t)
	op := CountCalls(kv, "join", Func[pair, string](join))

	for i := 0; i < 5; i++ {
		out, err := op(ctx, pair{"x", fmt.Sprint(i)})
		require.NoError(t, err)
		assert.Equal(t, "x"+fmt.Sprint(i), out)
	}

	got, err := kv.Get(ctx, "join")
	require.NoError(t, err)
	assert.Equal(t, "5", string(got))
}

func TestCountCallsSkipsCallWhenStoreFails(t *testing.T) {
	kv, _ := cachetest.NewStore(t)
	require.NoError(t, kv.Set(context.Background(), "join", []byte("not a number")))

	called := false
	op := CountCalls(kv, "join", Func[pair, string](func(context.Context, pair) (string, error) {
		called = true
		return "", nil
	}))
	_, err := op(context.Background(), pair{})
	assert.ErrorIs(t, err, cache.ErrNotInteger)
	assert.False(t, called)
}

func TestCallHistory(t *testing.T) {
	ctx := context.Background()
	kv, _ := cachetest.NewStore(t)
	op := CallHistory(kv, "join", Func[pair, string](join))

	_, err := op(ctx, pair{"a", "b"})
	require.NoError(t, err)
	_, err = op(ctx, pair{"c", "d"})
	require.NoError(t, err)

	inputs, err := kv.LRange(ctx, InputsKey("join"), 0, -1)
	require.NoError(t, err)
	outputs, err := kv.LRange(ctx, OutputsKey("join"), 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"(a, b)", "(c, d)"}, inputs)
	assert.Equal(t, []string{"ab", "cd"}, outputs)
}

func TestCallHistoryRecordsFailures(t *testing.T) {
	ctx := context.Background()
	kv, _ := cachetest.NewStore(t)
	boom := errors.New("boom")
	op := CallHistory(kv, "fail", Func[int, int](func(context.Context, int) (int, error) {
		return 0, boom
	}))

	_, err := op(ctx, 7)
	assert.ErrorIs(t, err, boom)

	calls, count, err := History(ctx, kv, "fail")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []Call{{Input: "7", Output: "error: boom"}}, calls)
}

func TestComposedWrappers(t *testing.T) {
	ctx := context.Background()
	kv, _ := cachetest.NewStore(t)
	op := CallHistory(kv, "join", CountCalls(kv, "join", Func[pair, string](join)))

	const n = 4
	for i := 0; i < n; i++ {
		_, err := op(ctx, pair{"k", fmt.Sprint(i)})
		require.NoError(t, err)
	}

	count, err := kv.Get(ctx, "join")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(n), string(count))

	calls, recorded, err := History(ctx, kv, "join")
	require.NoError(t, err)
	assert.Equal(t, n, recorded)
	require.Len(t, calls, n)
	for i, c := range calls {
		assert.Equal(t, fmt.Sprintf("(k, %d)", i), c.Input)
		assert.Equal(t, fmt.Sprintf("k%d", i), c.Output)
	}
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	kv, _ := cachetest.NewStore(t)
	op := CallHistory(kv, "join", CountCalls(kv, "join", Func[pair, string](join)))

	_, err := op(ctx, pair{"a", "b"})
	require.NoError(t, err)
	_, err = op(ctx, pair{"c", "d"})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, Replay(ctx, kv, &sb, "join"))
	assert.Equal(t, "join was called 2 times:\njoin(*(a, b)) -> ab\njoin(*(c, d)) -> cd\n", sb.String())
}

func TestReplayNoCalls(t *testing.T) {
	kv, _ := cachetest.NewStore(t)

	var sb strings.Builder
	require.NoError(t, Replay(context.Background(), kv, &sb, "never"))
	assert.Equal(t, "never was called 0 times:\n", sb.String())
}

func TestSnapshot(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "arguments", in: pair{"1", "2"}, want: "(1, 2)"},
		{name: "string", in: "key", want: "key"},
		{name: "int", in: 42, want: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snapshot(tt.in))
		})
	}
}
