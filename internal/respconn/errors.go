package respconn

import "errors"

// ErrClosed is returned by ReadFrame/WriteFrame once Close has been called.
var ErrClosed = errors.New("respconn: connection closed")

// ErrConnectionReset is returned by ReadFrame when the peer closes the TCP
// connection mid-frame: bytes were buffered but EOF arrived before a full
// frame could be decoded from them, distinct from a clean close on an
// empty buffer.
var ErrConnectionReset = errors.New("respconn: connection reset by peer")

// ErrFrameTooLarge is returned when the read buffer grows past maxBufferSize
// without yielding a complete frame — guards against a peer that never sends
// a valid leading byte (resp.Decode treats an unrecognized byte as "not yet
// a frame", which would otherwise let the buffer grow without bound).
var ErrFrameTooLarge = errors.New("respconn: frame exceeds maximum buffer size")
