// Package respconn wraps a net.Conn with the buffering loop needed to turn
// resp's pure decode/encode functions into a frame-at-a-time stream: grow a
// read buffer until resp.Decode stops asking for more, hand back one frame,
// and keep whatever bytes follow it for the next call (pipelining).
package respconn

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/SaadKaleem/redust/internal/resp"
)

// defaultBufferSize is the initial capacity of the read buffer, matching
// conventional RESP server sizing.
const defaultBufferSize = 4096

// maxBufferSize bounds how large the read buffer may grow while waiting for
// one frame to complete. Past this, ReadFrame gives up with
// ErrFrameTooLarge rather than letting a hostile or buggy peer force
// unbounded memory growth.
const maxBufferSize = 512 * 1024 * 1024 // 512 MiB, matches resp.MaxBulkLength

// Conn is one client connection: the raw socket, a buffered reader to read
// from it in chunks, and the leftover decode buffer carried between
// ReadFrame calls.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader

	buf []byte // bytes read but not yet consumed by a decoded frame

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    bool
	closeMu   sync.RWMutex
}

// New wraps netConn for frame-level reads and writes.
func New(netConn net.Conn) *Conn {
	return &Conn{
		conn:   netConn,
		reader: bufio.NewReader(netConn),
		buf:    make([]byte, 0, defaultBufferSize),
	}
}

// ReadFrame returns the next complete frame from the connection.
//
// If the peer closes the connection with nothing left buffered, ReadFrame
// returns (nil, nil) — a clean end of stream. If the peer closes with a
// partial frame buffered, ReadFrame returns ErrConnectionReset.
func (c *Conn) ReadFrame() (*resp.Frame, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	for {
		frame, n, err := resp.Decode(c.buf)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			c.buf = c.buf[n:]
			return frame, nil
		}

		if len(c.buf) >= maxBufferSize {
			return nil, ErrFrameTooLarge
		}

		chunk := make([]byte, defaultBufferSize)
		read, rerr := c.reader.Read(chunk)
		if read > 0 {
			c.buf = append(c.buf, chunk[:read]...)
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				if len(c.buf) == 0 {
					return nil, nil
				}
				return nil, ErrConnectionReset
			}
			return nil, rerr
		}
	}
}

// WriteFrame encodes f and writes it to the connection. Safe for
// concurrent use (serialized by writeMu).
func (c *Conn) WriteFrame(f *resp.Frame) error {
	if c.isClosed() {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err := c.conn.Write(resp.Encode(f))
	return err
}

// Close closes the underlying connection. Idempotent.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closeMu.Lock()
		c.closed = true
		c.closeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// isClosed reports whether Close has already been called.
func (c *Conn) isClosed() bool {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()
	return c.closed
}

// RemoteAddr returns the peer address, used for connection-scoped logging.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
