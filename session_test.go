package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var welcomeAlice = newNumericReply(ReplyWelcome, "alice",
	"Welcome to the internet relay network alice!al@10.0.0.1")

var alreadyRegistered = newNumericReply(ErrAlreadyRegistred,
	"Unauthorized command (already registered)")

func TestSessionRegistration(t *testing.T) {
	tests := []struct {
		name     string
		commands []Command
		// Replies to the final command.
		replies    []Response
		registered bool
	}{
		{
			"nick alone",
			[]Command{Nick{Nickname: "alice"}},
			nil,
			false,
		},
		{
			"user alone",
			[]Command{User{UserName: "al", RealName: "Alice"}},
			nil,
			false,
		},
		{
			"cap ls",
			[]Command{CapLs{Version: 302, HasVersion: true}},
			nil,
			false,
		},
		{
			"nick then user",
			[]Command{Nick{Nickname: "alice"}, User{UserName: "al"}},
			[]Response{welcomeAlice},
			true,
		},
		{
			"user then nick",
			[]Command{User{UserName: "al"}, Nick{Nickname: "alice"}},
			[]Response{welcomeAlice},
			true,
		},
		{
			"nick changed before user",
			[]Command{Nick{Nickname: "bob"}, Nick{Nickname: "alice"},
				User{UserName: "al"}},
			[]Response{welcomeAlice},
			true,
		},
		{
			"cap does not interfere",
			[]Command{CapLs{}, Nick{Nickname: "alice"}, CapLs{},
				User{UserName: "al"}},
			[]Response{welcomeAlice},
			true,
		},
		{
			"nick after registration",
			[]Command{Nick{Nickname: "alice"}, User{UserName: "al"},
				Nick{Nickname: "bob"}},
			[]Response{alreadyRegistered},
			true,
		},
		{
			"user after registration",
			[]Command{Nick{Nickname: "alice"}, User{UserName: "al"},
				User{UserName: "bo"}},
			[]Response{alreadyRegistered},
			true,
		},
		{
			"cap after registration",
			[]Command{Nick{Nickname: "alice"}, User{UserName: "al"}, CapLs{}},
			nil,
			true,
		},
	}

	for _, test := range tests {
		s := NewSession("10.0.0.1")

		var replies []Response
		for _, cmd := range test.commands {
			replies = s.handle(cmd)
			assert.True(t, len(replies) <= 1, test.name)
		}

		assert.Equal(t, test.replies, replies, test.name)
		assert.Equal(t, test.registered, s.Registered, test.name)
	}
}

// A NICK after registration is refused, but the nickname changes anyway.
func TestSessionNickAfterRegistrationStillUpdates(t *testing.T) {
	s := NewSession("10.0.0.1")
	s.handle(Nick{Nickname: "alice"})
	s.handle(User{UserName: "al"})

	replies := s.handle(Nick{Nickname: "bob"})

	assert.Equal(t, []Response{alreadyRegistered}, replies)
	assert.Equal(t, "bob", s.Nickname)
	assert.True(t, s.Registered)
}

func TestSessionUserAfterRegistrationStillUpdates(t *testing.T) {
	s := NewSession("10.0.0.1")
	s.handle(Nick{Nickname: "alice"})
	s.handle(User{UserName: "al"})

	replies := s.handle(User{UserName: "bo", Invisible: true, RealName: "Bo"})

	assert.Equal(t, []Response{alreadyRegistered}, replies)
	assert.Equal(t, "bo", s.Username)
	assert.True(t, s.Invisible)
	assert.Equal(t, "Bo", s.RealName)
}

// An empty nickname still counts as having sent NICK.
func TestSessionEmptyNickname(t *testing.T) {
	s := NewSession("10.0.0.1")
	s.handle(Nick{Nickname: ""})

	replies := s.handle(User{UserName: "al"})

	assert.Equal(t, []Response{newNumericReply(ReplyWelcome, "",
		"Welcome to the internet relay network !al@10.0.0.1")}, replies)
}
