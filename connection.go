package main

import (
	"io"
	"unicode/utf8"

	"github.com/horgh/irc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// maxPendingLength is the most we hold of a line we have not seen the end of.
// Anything longer can never be a valid line, so we discard it.
const maxPendingLength = 8192

// errInvalidEncoding means the client sent bytes that are not UTF-8. We can't
// safely reply to that, so the connection ends.
var errInvalidEncoding = errors.New("received invalid UTF-8 sequence")

// Transport is what a Connection reads from and writes to.
type Transport interface {
	// Read blocks until there is data. It returns io.EOF (possibly wrapped) or
	// no data when the stream ends.
	Read() ([]byte, error)

	// Write sends one fully framed line.
	Write(string) error
}

// Connection drives a single client: it reads input, frames and interprets
// it, and writes the replies.
type Connection struct {
	transport  Transport
	session    *Session
	serverName string
	log        zerolog.Logger

	// Bytes at the end of the last read that might begin a multi-byte
	// character.
	undecoded []byte

	// Decoded input that we have not yet parsed a full line out of.
	buffer string
}

// NewConnection creates a Connection for a client at the given address.
func NewConnection(t Transport, peerAddress, serverName string,
	logger zerolog.Logger) *Connection {
	return &Connection{
		transport:  t,
		session:    NewSession(peerAddress),
		serverName: serverName,
		log:        logger,
	}
}

// run processes the connection until the client goes away or something fatal
// happens.
//
// A clean close by the client gives a nil error.
func (c *Connection) run() error {
	for {
		data, err := c.transport.Read()
		if err != nil {
			if errors.Cause(err) == io.EOF {
				return nil
			}
			return err
		}

		if len(data) == 0 {
			return nil
		}

		c.log.Debug().Str("data", string(data)).Msg("<")

		if err := c.appendInput(data); err != nil {
			return err
		}

		if err := c.drain(); err != nil {
			return err
		}
	}
}

// appendInput decodes data and adds it to what we're buffering.
//
// The read may have ended partway through a multi-byte character. If so we
// hold those bytes back until the next read completes it.
func (c *Connection) appendInput(data []byte) error {
	input := data
	if len(c.undecoded) > 0 {
		input = append(c.undecoded, data...)
		c.undecoded = nil
	}

	valid, rest, err := splitUTF8(input)
	if err != nil {
		return err
	}

	c.buffer += string(valid)
	if len(rest) > 0 {
		c.undecoded = append([]byte(nil), rest...)
	}

	return nil
}

// splitUTF8 splits b into the part that is valid UTF-8 and an incomplete
// character at its end.
func splitUTF8(b []byte) ([]byte, []byte, error) {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(b[i:]) {
				return b[:i], b[i:], nil
			}
			return nil, nil, errInvalidEncoding
		}
		i += size
	}

	return b, nil, nil
}

// drain handles every complete line in the buffer.
//
// Replies to a line are all written before we look at the next line.
func (c *Connection) drain() error {
	for len(c.buffer) > 0 {
		message, n, err := parseMessage(c.buffer)
		if err != nil {
			if err == errIncomplete {
				if len(c.buffer) > maxPendingLength {
					c.log.Debug().Int("length", len(c.buffer)).
						Msg("Discarding overlong line")
					c.buffer = ""
				}
				return nil
			}

			c.log.Debug().Err(err).Str("buffer", c.buffer).
				Msg("Discarding malformed input")
			c.buffer = ""
			return nil
		}

		c.buffer = c.buffer[n:]

		for _, reply := range c.handleMessage(message) {
			if err := c.send(reply); err != nil {
				return err
			}
		}
	}

	return nil
}

// handleMessage interprets a message and updates the session.
func (c *Connection) handleMessage(m irc.Message) []Response {
	cmd, err := newCommand(m)
	if err != nil {
		if replyErr, ok := err.(*ReplyError); ok {
			return []Response{replyErr.Reply}
		}
		c.log.Error().Err(err).Str("message", m.String()).
			Msg("Unable to interpret message")
		return nil
	}

	c.log.Debug().Str("command", cmd.commandName()).Msg("Handling command")

	return c.session.handle(cmd)
}

func (c *Connection) send(r Response) error {
	line := r.encode(c.serverName)

	if len(line) > irc.MaxLineLength {
		c.log.Warn().Int("length", len(line)).Str("reply", r.String()).
			Msg("Reply exceeds maximum line length")
	}

	c.log.Debug().Str("line", line).Msg(">")

	return c.transport.Write(line)
}
