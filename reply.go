package main

import (
	"fmt"
	"strings"
)

// ResponseCode is a numeric reply.
type ResponseCode int

// The numeric replies we send. Names follow RFC 2812 where there is one.
const (
	// 001 RPL_WELCOME
	ReplyWelcome ResponseCode = 1

	// 410 ERR_INVALIDCAPCMD
	ErrInvalidCapCmd ResponseCode = 410

	// 421 ERR_UNKNOWNCOMMAND
	ErrUnknownCommand ResponseCode = 421

	// 431 ERR_NONICKNAMEGIVEN
	ErrNoNicknameGiven ResponseCode = 431

	// 461 ERR_NEEDMOREPARAMS
	ErrNeedMoreParams ResponseCode = 461

	// 462 ERR_ALREADYREGISTRED
	ErrAlreadyRegistred ResponseCode = 462

	// ErrGeneric is for protocol misuse that has no RFC numeric. Not standard.
	ErrGeneric ResponseCode = 999
)

// String gives the code as it appears on the wire: three digits, zero padded.
func (c ResponseCode) String() string {
	return fmt.Sprintf("%03d", int(c))
}

// Response is a message to send to a client.
//
// It is either a numeric reply (Code) or a command such as CAP (Verb). Exactly
// one of the two is set. Build one with newNumericReply or newCommandReply.
type Response struct {
	Code ResponseCode
	Verb string

	// The last argument always goes out as the trailing parameter.
	Arguments []string
}

func newNumericReply(code ResponseCode, args ...string) Response {
	return Response{Code: code, Arguments: args}
}

func newCommandReply(verb string, args ...string) Response {
	return Response{Verb: verb, Arguments: args}
}

// kind is what goes in the command position on the wire.
func (r Response) kind() string {
	if r.Verb != "" {
		return r.Verb
	}
	return r.Code.String()
}

// encode builds the wire line for the response, CRLF included.
//
// source is the server name. It becomes the ":source" tag.
//
// The final argument is always prefixed with ':', even when it has no space
// in it. We decide by position, not content. Other arguments are written as
// is, so they must not contain spaces or start with ':'.
func (r Response) encode(source string) string {
	var sb strings.Builder

	sb.WriteString(":")
	sb.WriteString(source)
	sb.WriteString(" ")
	sb.WriteString(r.kind())

	for i, arg := range r.Arguments {
		sb.WriteString(" ")
		if i == len(r.Arguments)-1 {
			sb.WriteString(":")
		}
		sb.WriteString(arg)
	}

	sb.WriteString("\r\n")

	return sb.String()
}

func (r Response) String() string {
	return fmt.Sprintf("Kind [%s] Arguments%q", r.kind(), r.Arguments)
}
