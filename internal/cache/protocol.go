package cache

// Simple JSON protocol for the store daemon over a Unix domain socket.
// Requests and responses alternate on one connection using json.Encoder/Decoder.

const (
	OpGet     = "get"
	OpSet     = "set"
	OpSetEX   = "setex"
	OpIncr    = "incr"
	OpRPush   = "rpush"
	OpLRange  = "lrange"
	OpDelete  = "delete"
	OpFlushDB = "flushdb"
	OpPing    = "ping"
)

type Request struct {
	Op       string   `json:"op"`
	Key      string   `json:"key,omitempty"`
	Value    []byte   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
	TTLMilli int64    `json:"ttl_ms,omitempty"`
	Start    int64    `json:"start,omitempty"`
	Stop     int64    `json:"stop,omitempty"`
}

type Response struct {
	OK     bool     `json:"ok"`
	Value  []byte   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
	Int    int64    `json:"int,omitempty"`
	Error  string   `json:"error,omitempty"`
}
