package resp

import "errors"

// ErrProtocol indicates buf begins a frame that can never become valid:
// a non-integer where a decimal length is required, a length outside
// the sentinel/limit range, a missing trailing CRLF, or a negative array
// count. Decode wraps ErrProtocol with details via fmt.Errorf; callers
// should use errors.Is(err, resp.ErrProtocol) to classify it.
var ErrProtocol = errors.New("resp: protocol error")

// Implementation limits: unbounded lengths would let a malicious or buggy
// peer force arbitrarily large allocations before the frame is even known
// to be well-formed.
const (
	// MaxBulkLength is the largest declared length this core accepts for
	// a BulkString payload.
	MaxBulkLength = 512 * 1024 * 1024 // 512 MiB

	// MaxArrayLength is the largest declared element count this core
	// accepts for an Array.
	MaxArrayLength = 1 << 20 // ~1M elements
)
