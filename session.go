package main

import "fmt"

// Session holds the registration state of one client connection.
//
// Only the connection's own goroutine touches it.
type Session struct {
	// Set once we see NICK/USER. They may change again afterwards.
	Nickname string
	Username string

	// From USER. Not used for anything yet.
	Invisible bool
	Wallops   bool
	RealName  string

	// The client's IP. Doesn't change.
	PeerAddress string

	// Once set this stays set.
	Registered bool

	gotNick bool
	gotUser bool
}

// NewSession creates a Session for a client connecting from the given address.
func NewSession(peerAddress string) *Session {
	return &Session{PeerAddress: peerAddress}
}

// handle applies a command to the session. We return what to send back, in
// order. It may be nothing.
func (s *Session) handle(cmd Command) []Response {
	switch cmd := cmd.(type) {
	case CapLs:
		// We don't support any capabilities, so there is nothing to negotiate.
		return nil
	case Nick:
		return s.nickCommand(cmd)
	case User:
		return s.userCommand(cmd)
	default:
		panic(fmt.Sprintf("unhandled command type %T", cmd))
	}
}

// The nickname changes even when we're already registered. We still tell the
// client it can't do that.
func (s *Session) nickCommand(cmd Nick) []Response {
	s.Nickname = cmd.Nickname
	s.gotNick = true

	return s.maybeCompleteRegistration()
}

// Like NICK, this updates the fields even after registration.
func (s *Session) userCommand(cmd User) []Response {
	s.Username = cmd.UserName
	s.Invisible = cmd.Invisible
	s.Wallops = cmd.Wallops
	s.RealName = cmd.RealName
	s.gotUser = true

	return s.maybeCompleteRegistration()
}

// maybeCompleteRegistration registers the client if we have both NICK and
// USER.
func (s *Session) maybeCompleteRegistration() []Response {
	if s.Registered {
		return []Response{newNumericReply(ErrAlreadyRegistred,
			"Unauthorized command (already registered)")}
	}

	if !s.gotNick || !s.gotUser {
		return nil
	}

	s.Registered = true

	return []Response{newNumericReply(ReplyWelcome, s.Nickname,
		fmt.Sprintf("Welcome to the internet relay network %s", s.nickUhost()))}
}

func (s *Session) nickUhost() string {
	return fmt.Sprintf("%s!%s@%s", s.Nickname, s.Username, s.PeerAddress)
}
