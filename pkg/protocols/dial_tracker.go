package protocols

import (
	"context"
	"net"
)

// ByteTracker receives the number of bytes moved over every pooled connection.
// Implementations must be safe for concurrent use.
type ByteTracker interface {
	AddBytesRead(n int64)
	AddBytesWritten(n int64)
}

type trackingConn struct {
	net.Conn
	tracker ByteTracker
}

func (c *trackingConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if n > 0 {
		c.tracker.AddBytesRead(int64(n))
	}
	return n, err
}

func (c *trackingConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	if n > 0 {
		c.tracker.AddBytesWritten(int64(n))
	}
	return n, err
}

// dialContextWithBytesTracked returns a DialContext func for http.Transport.
// A nil tracker gives a plain dialer.
func dialContextWithBytesTracked(dialer *net.Dialer, tracker ByteTracker) func(ctx context.Context, network, address string) (net.Conn, error) {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if tracker == nil {
			return conn, nil
		}
		return &trackingConn{Conn: conn, tracker: tracker}, nil
	}
}
