package main

import (
	"strconv"
	"strings"

	"github.com/horgh/irc"
)

// Command is a client command we understand. The set is closed: the only
// implementations are the types below. When adding one, update newCommand and
// Session.handle.
type Command interface {
	commandName() string
}

// CapLs is CAP LS [version].
type CapLs struct {
	// Version is only meaningful if HasVersion is set.
	Version    uint16
	HasVersion bool
}

// Nick is NICK <nickname>.
type Nick struct {
	Nickname string
}

// User is USER <user> <mode> <unused> <realname>.
type User struct {
	UserName string

	// From the mode bit field. Bit 3 is +i, bit 2 is +w. See RFC 2812 3.1.3.
	Invisible bool
	Wallops   bool

	RealName string
}

func (CapLs) commandName() string { return "CAP" }
func (Nick) commandName() string { return "NICK" }
func (User) commandName() string { return "USER" }

// ReplyError is a problem with a client's message that we tell the client
// about. Reply is ready to send as is.
type ReplyError struct {
	Reply Response
}

func (e *ReplyError) Error() string {
	return e.Reply.String()
}

func replyError(code ResponseCode, args ...string) *ReplyError {
	return &ReplyError{Reply: newNumericReply(code, args...)}
}

// newCommand turns a raw message into a Command.
//
// If the message is not a command we support, or its parameters are not
// valid, the error is a *ReplyError.
//
// Commands are matched exactly. We don't fold case.
func newCommand(m irc.Message) (Command, error) {
	switch m.Command {
	case "CAP":
		return newCapCommand(m.Params)
	case "NICK":
		return newNickCommand(m.Params)
	case "USER":
		return newUserCommand(m.Params)
	default:
		return nil, replyError(ErrUnknownCommand, m.Command, "Unknown command")
	}
}

func newCapCommand(params []string) (Command, error) {
	if len(params) == 0 {
		return nil, replyError(ErrUnknownCommand, "Must specify subcommand to CAP")
	}

	if params[0] != "LS" {
		return nil, replyError(ErrInvalidCapCmd, "*", params[0],
			"Invalid CAP command")
	}

	if len(params) == 1 {
		return CapLs{}, nil
	}

	version, err := strconv.ParseUint(params[1], 10, 16)
	if err != nil {
		return nil, replyError(ErrGeneric,
			"CAP LS version argument should be a numeric string")
	}

	return CapLs{Version: uint16(version), HasVersion: true}, nil
}

func newNickCommand(params []string) (Command, error) {
	// Further parameters are ignored.
	if len(params) == 0 {
		return nil, replyError(ErrNoNicknameGiven, "No nickname given")
	}

	return Nick{Nickname: params[0]}, nil
}

func newUserCommand(params []string) (Command, error) {
	if len(params) < 4 {
		return nil, replyError(ErrNeedMoreParams, "USER", "Not enough parameters")
	}

	mode, err := strconv.ParseUint(params[1], 10, 8)
	if err != nil {
		return nil, replyError(ErrGeneric,
			"USER mode argument should be a numeric string")
	}

	// Clients should send the real name as trailing. If they didn't and it has
	// spaces then it arrives as several parameters. Put it back together.
	return User{
		UserName:  params[0],
		Invisible: mode&0x08 != 0,
		Wallops:   mode&0x04 != 0,
		RealName:  strings.Join(params[3:], " "),
	}, nil
}
