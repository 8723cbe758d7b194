package cache

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/jmgilman/go/errors"
)

const dialTimeout = 500 * time.Millisecond

// Client implements KV over the store daemon's Unix socket.
// Each call dials a fresh connection, so a Client is safe for concurrent use.
type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Ping checks that the daemon is accepting requests.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, Request{Op: OpPing})
	return err
}

// do sends one request and decodes one response. Transport failures are
// reported as StoreUnavailable; errors returned by the daemon come back as
// the matching sentinel where one exists.
func (c *Client) do(ctx context.Context, req Request) (Response, error) {
	var resp Response
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return resp, unavailable(err, req.Op)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(&req); err != nil {
		return resp, unavailable(err, req.Op)
	}
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return resp, unavailable(err, req.Op)
	}
	if !resp.OK {
		if s := sentinelFor(resp.Error); s != nil {
			return resp, s
		}
		return resp, errors.New(errors.CodeDatabase, resp.Error)
	}
	return resp, nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.do(ctx, Request{Op: OpGet, Key: key})
	if err != nil {
		return nil, err
	}
	// JSON drops empty byte slices; a hit on an empty value is still a hit.
	if resp.Value == nil {
		return []byte{}, nil
	}
	return resp.Value, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.do(ctx, Request{Op: OpSet, Key: key, Value: value})
	return err
}

func (c *Client) SetEX(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	_, err := c.do(ctx, Request{Op: OpSetEX, Key: key, Value: value, TTLMilli: ttl.Milliseconds()})
	return err
}

func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	resp, err := c.do(ctx, Request{Op: OpIncr, Key: key})
	return resp.Int, err
}

func (c *Client) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	resp, err := c.do(ctx, Request{Op: OpRPush, Key: key, Values: values})
	return resp.Int, err
}

func (c *Client) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	resp, err := c.do(ctx, Request{Op: OpLRange, Key: key, Start: start, Stop: stop})
	if err != nil {
		return nil, err
	}
	if resp.Values == nil {
		return []string{}, nil
	}
	return resp.Values, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.do(ctx, Request{Op: OpDelete, Key: key})
	return err
}

func (c *Client) FlushDB(ctx context.Context) error {
	_, err := c.do(ctx, Request{Op: OpFlushDB})
	return err
}

// Close is a no-op; connections are per call.
func (c *Client) Close() error { return nil }
