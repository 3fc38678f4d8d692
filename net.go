package main

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

// readSize is how much we ask for in a single read.
const readSize = 512

// Conn is a connection to a client.
type Conn struct {
	conn   net.Conn
	ioWait time.Duration
	buf    []byte
	IP     net.IP
}

// NewConn initializes a Conn. If ioWait is zero, writes have no deadline.
// Reads never do.
func NewConn(conn net.Conn, ioWait time.Duration) *Conn {
	c := &Conn{
		conn:   conn,
		ioWait: ioWait,
		buf:    make([]byte, readSize),
	}

	if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		c.IP = tcpAddr.IP
	}

	return c
}

// Close closes the underlying connection
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// PeerAddress is the address we show the client as connecting from. This is
// its IP if we know it.
func (c *Conn) PeerAddress() string {
	if c.IP != nil {
		return c.IP.String()
	}

	host, _, err := net.SplitHostPort(c.conn.RemoteAddr().String())
	if err != nil {
		return c.conn.RemoteAddr().String()
	}
	return host
}

// Read waits for data from the connection and returns what arrived. The slice
// is only valid until the next Read.
//
// At end of stream the error is io.EOF.
func (c *Conn) Read() ([]byte, error) {
	n, err := c.conn.Read(c.buf)
	if n > 0 {
		// Hand back what we got. If there was an error too, the next read will
		// report it.
		return c.buf[:n], nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "error reading")
	}

	return nil, nil
}

// Write writes a string to the connection
func (c *Conn) Write(s string) error {
	if c.ioWait > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.ioWait)); err != nil {
			return errors.Wrap(err, "error setting write deadline")
		}
	}

	sz, err := c.conn.Write([]byte(s))
	if err != nil {
		return errors.Wrap(err, "error writing")
	}

	if sz != len(s) {
		return errors.New("short write")
	}

	return nil
}
