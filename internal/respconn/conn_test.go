package respconn

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/SaadKaleem/redust/internal/resp"
)

func TestConn_ReadFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := New(server)

	go func() {
		client.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	}()

	f, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if f.Kind != resp.KindArray || len(f.Array) != 1 || *f.Array[0].Bulk != "PING" {
		t.Errorf("got %+v", f)
	}
}

// TestConn_ReadFrame_Pipelined verifies a second frame arriving in the same
// packet is served by a subsequent ReadFrame call without waiting on the
// network again.
func TestConn_ReadFrame_Pipelined(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := New(server)

	go func() {
		client.Write([]byte("+OK\r\n+ALSO\r\n"))
	}()

	f1, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame #1 failed: %v", err)
	}
	if f1.Str != "OK" {
		t.Errorf("got %+v", f1)
	}

	f2, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame #2 failed: %v", err)
	}
	if f2.Str != "ALSO" {
		t.Errorf("got %+v", f2)
	}
}

// TestConn_ReadFrame_CleanClose verifies EOF on an empty buffer yields
// (nil, nil) rather than an error.
func TestConn_ReadFrame_CleanClose(t *testing.T) {
	client, server := net.Pipe()
	c := New(server)

	client.Close()

	f, err := c.ReadFrame()
	if f != nil || err != nil {
		t.Errorf("ReadFrame() = (%v, %v), want (nil, nil)", f, err)
	}
}

// TestConn_ReadFrame_Reset verifies EOF with a partial frame buffered
// surfaces ErrConnectionReset.
func TestConn_ReadFrame_Reset(t *testing.T) {
	client, server := net.Pipe()
	c := New(server)

	done := make(chan struct{})
	go func() {
		client.Write([]byte("$5\r\nhel"))
		client.Close()
		close(done)
	}()

	_, err := c.ReadFrame()
	<-done
	if !errors.Is(err, ErrConnectionReset) {
		t.Fatalf("ReadFrame() err = %v, want ErrConnectionReset", err)
	}
}

func TestConn_WriteFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := New(server)

	go func() {
		c.WriteFrame(resp.NewSimpleString("PONG"))
	}()

	buf := make([]byte, 64)
	client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "+PONG\r\n" {
		t.Errorf("got %q, want %q", buf[:n], "+PONG\r\n")
	}
}

func TestConn_Close(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	c := New(server)
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Idempotent.
	if err := c.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if err := c.WriteFrame(resp.NewSimpleString("PONG")); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteFrame after Close: err = %v, want ErrClosed", err)
	}
	if _, err := c.ReadFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadFrame after Close: err = %v, want ErrClosed", err)
	}
}
