package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	tests := []struct {
		input   string
		command Command
		reply   *Response
	}{
		{"CAP LS\r\n", CapLs{}, nil},
		{"CAP LS 302\r\n", CapLs{Version: 302, HasVersion: true}, nil},
		{"CAP LS 302 extra\r\n", CapLs{Version: 302, HasVersion: true}, nil},
		{
			"CAP LS notanumber\r\n",
			nil,
			&Response{Code: ErrGeneric,
				Arguments: []string{"CAP LS version argument should be a numeric string"}},
		},
		{
			"CAP LS 65536\r\n",
			nil,
			&Response{Code: ErrGeneric,
				Arguments: []string{"CAP LS version argument should be a numeric string"}},
		},
		{
			"CAP FOO\r\n",
			nil,
			&Response{Code: ErrInvalidCapCmd,
				Arguments: []string{"*", "FOO", "Invalid CAP command"}},
		},
		{
			"CAP \r\n",
			nil,
			&Response{Code: ErrUnknownCommand,
				Arguments: []string{"Must specify subcommand to CAP"}},
		},

		{"NICK alice\r\n", Nick{Nickname: "alice"}, nil},
		{"NICK alice bob\r\n", Nick{Nickname: "alice"}, nil},
		{
			"NICK \r\n",
			nil,
			&Response{Code: ErrNoNicknameGiven, Arguments: []string{"No nickname given"}},
		},

		{
			"USER alice 8 * Real Name\r\n",
			User{UserName: "alice", Invisible: true, RealName: "Real Name"},
			nil,
		},
		{
			"USER alice 0 * :Real Name\r\n",
			User{UserName: "alice", RealName: "Real Name"},
			nil,
		},
		{
			"USER alice 4 * :Real\r\n",
			User{UserName: "alice", Wallops: true, RealName: "Real"},
			nil,
		},
		{
			"USER alice 12 * :Real\r\n",
			User{UserName: "alice", Invisible: true, Wallops: true, RealName: "Real"},
			nil,
		},
		{
			"USER alice\r\n",
			nil,
			&Response{Code: ErrNeedMoreParams,
				Arguments: []string{"USER", "Not enough parameters"}},
		},
		{
			"USER alice 0 *\r\n",
			nil,
			&Response{Code: ErrNeedMoreParams,
				Arguments: []string{"USER", "Not enough parameters"}},
		},
		{
			"USER alice notanumber * Real\r\n",
			nil,
			&Response{Code: ErrGeneric,
				Arguments: []string{"USER mode argument should be a numeric string"}},
		},
		{
			"USER alice 256 * Real\r\n",
			nil,
			&Response{Code: ErrGeneric,
				Arguments: []string{"USER mode argument should be a numeric string"}},
		},

		{
			"FOO bar\r\n",
			nil,
			&Response{Code: ErrUnknownCommand, Arguments: []string{"FOO", "Unknown command"}},
		},

		// We match commands exactly.
		{
			"nick alice\r\n",
			nil,
			&Response{Code: ErrUnknownCommand, Arguments: []string{"nick", "Unknown command"}},
		},
	}

	for _, test := range tests {
		m, _, err := parseMessage(test.input)
		require.NoError(t, err, test.input)

		command, err := newCommand(m)

		if test.reply == nil {
			if assert.NoError(t, err, test.input) {
				assert.Equal(t, test.command, command, test.input)
			}
			continue
		}

		assert.Nil(t, command, test.input)
		replyErr, ok := err.(*ReplyError)
		if !assert.True(t, ok, "newCommand(%q) error = %v, wanted *ReplyError",
			test.input, err) {
			continue
		}
		assert.Equal(t, *test.reply, replyErr.Reply, test.input)
	}
}
