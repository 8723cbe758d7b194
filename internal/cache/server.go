package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/paxxchal/alx-backend-storage/internal/logger"
)

// Serve accepts connections on l and answers requests against kv until ctx
// is cancelled or the listener is closed.
func Serve(ctx context.Context, l net.Listener, kv KV) error {
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Warnf("accept failed: %v", err)
			continue
		}
		go handleConn(ctx, conn, kv)
	}
}

func handleConn(ctx context.Context, conn net.Conn, kv KV) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}
		resp := dispatch(ctx, kv, req)
		if !resp.OK {
			logger.Debugf("%s %q: %s", req.Op, req.Key, resp.Error)
		}
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, kv KV, req Request) Response {
	var (
		resp Response
		err  error
	)
	switch req.Op {
	case OpPing:
	case OpGet:
		resp.Value, err = kv.Get(ctx, req.Key)
	case OpSet:
		err = kv.Set(ctx, req.Key, req.Value)
	case OpSetEX:
		err = kv.SetEX(ctx, req.Key, time.Duration(req.TTLMilli)*time.Millisecond, req.Value)
	case OpIncr:
		resp.Int, err = kv.Incr(ctx, req.Key)
	case OpRPush:
		resp.Int, err = kv.RPush(ctx, req.Key, req.Values...)
	case OpLRange:
		resp.Values, err = kv.LRange(ctx, req.Key, req.Start, req.Stop)
	case OpDelete:
		err = kv.Delete(ctx, req.Key)
	case OpFlushDB:
		err = kv.FlushDB(ctx)
	default:
		return Response{OK: false, Error: "unknown op"}
	}
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	resp.OK = true
	return resp
}
