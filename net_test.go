package main

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnReadWrite(t *testing.T) {
	server, client := net.Pipe()
	conn := NewConn(server, time.Second)

	go func() {
		_, _ = client.Write([]byte("NICK alice\r\n"))
	}()

	data, err := conn.Read()
	require.NoError(t, err)
	assert.Equal(t, "NICK alice\r\n", string(data))

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := client.Read(buf)
		got <- string(buf[:n])
	}()

	require.NoError(t, conn.Write(":blablaserver 001 alice :Welcome\r\n"))
	assert.Equal(t, ":blablaserver 001 alice :Welcome\r\n", <-got)

	require.NoError(t, client.Close())

	_, err = conn.Read()
	require.Error(t, err)
	assert.Equal(t, io.EOF, errors.Cause(err))

	_ = conn.Close()
}

func TestConnWriteTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer func() { _ = client.Close() }()

	conn := NewConn(server, 10*time.Millisecond)
	defer func() { _ = conn.Close() }()

	// Nobody reads the other end.
	assert.Error(t, conn.Write("NICK alice\r\n"))
}

func TestConnPeerAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	go func() {
		c, err := net.Dial("tcp", ln.Addr().String())
		if err == nil {
			_ = c.Close()
		}
	}()

	netConn, err := ln.Accept()
	require.NoError(t, err)

	conn := NewConn(netConn, 0)
	assert.Equal(t, "127.0.0.1", conn.PeerAddress())
	_ = conn.Close()
}
